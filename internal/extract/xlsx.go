package extract

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/tender-cli/internal/fetcher"
)

const (
	sharedStringsPart = "xl/sharedStrings.xml"
	worksheetPrefix   = "xl/worksheets/"
)

// spreadsheet emits the value cells (local tag "v") of the first worksheet,
// one per line. A purely numeric value that indexes the shared-string table
// is replaced by that string.
func spreadsheet(ctx context.Context, path string) (string, error) {
	names, err := fetcher.ZIPEntryNames(path)
	if err != nil {
		return "", eris.Wrapf(ErrCorruptContainer, "xlsx: %v", err)
	}

	var shared []string
	sheet := ""
	for _, name := range names {
		switch {
		case name == sharedStringsPart:
			shared, err = readPartText(ctx, path, name, "t")
			if err != nil {
				return "", err
			}
		case sheet == "" && isWorksheetPart(name):
			sheet = name
		}
	}
	if sheet == "" {
		return "", eris.Wrap(ErrCorruptContainer, "xlsx: no worksheet part")
	}

	cells, err := readPartText(ctx, path, sheet, "v")
	if err != nil {
		return "", err
	}

	values := make([]string, 0, len(cells))
	for _, v := range cells {
		if v == "" {
			continue
		}
		values = append(values, resolveShared(v, shared))
	}
	return strings.Join(values, "\n"), nil
}

func isWorksheetPart(name string) bool {
	if !strings.HasPrefix(name, worksheetPrefix) || !strings.HasSuffix(name, ".xml") {
		return false
	}
	return !strings.Contains(strings.TrimPrefix(name, worksheetPrefix), "/")
}

func readPartText(ctx context.Context, path, part, tag string) ([]string, error) {
	data, err := fetcher.ReadZIPFile(path, part)
	if err != nil {
		return nil, eris.Wrapf(ErrCorruptContainer, "xlsx: %v", err)
	}
	texts, err := fetcher.CollectXMLText(ctx, bytes.NewReader(data), tag)
	if err != nil {
		return nil, eris.Wrapf(ErrCorruptContainer, "xlsx: %s: %v", part, err)
	}
	return texts, nil
}

func resolveShared(v string, shared []string) string {
	if !isDigits(v) {
		return v
	}
	idx, err := strconv.Atoi(v)
	if err != nil || idx >= len(shared) {
		return v
	}
	return shared[idx]
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
