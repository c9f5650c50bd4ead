package fetcher

import (
	"errors"
	"io"
	"os"

	"github.com/nwaples/rardecode/v2"
	"github.com/rotisserie/eris"
)

// ExtractRAR extracts all files from a RAR archive to the destination directory.
// Returns the list of extracted file paths in archive order.
func ExtractRAR(rarPath, destDir string, budget *Budget) ([]string, error) {
	r, err := rardecode.OpenReader(rarPath)
	if err != nil {
		return nil, eris.Wrap(err, "rar: open archive")
	}
	defer r.Close() //nolint:errcheck

	var extracted []string
	for {
		hdr, err := r.Next()
		if errors.Is(err, io.EOF) {
			return extracted, nil
		}
		if err != nil {
			return extracted, eris.Wrap(err, "rar: read header")
		}

		destPath, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return extracted, err
		}

		if hdr.IsDir {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return extracted, eris.Wrap(err, "rar: create directory")
			}
			continue
		}

		if err := budget.TakeEntry(); err != nil {
			return extracted, err
		}
		if err := writeEntry(destPath, r, budget); err != nil {
			return extracted, eris.Wrapf(err, "rar: extract %q", hdr.Name)
		}
		extracted = append(extracted, destPath)
	}
}
