// Package testutil builds upload fixtures (archives, word documents,
// workbooks) for tests.
package testutil

import (
	"archive/zip"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

// Entry is an ordered archive member.
type Entry struct {
	Name    string
	Content []byte
}

// TextEntry builds an Entry from a string.
func TextEntry(name, content string) Entry {
	return Entry{Name: name, Content: []byte(content)}
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// WriteZIP writes a zip archive with the given entries to dir/name.
func WriteZIP(t *testing.T, dir, name string, entries ...Entry) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	w := zip.NewWriter(f)
	for _, e := range entries {
		fw, err := w.Create(e.Name)
		require.NoError(t, err)
		_, err = fw.Write(e.Content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

// ReadFile returns the bytes of path.
func ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// DocumentXML renders a minimal WordprocessingML body with one paragraph
// per element of paragraphs and one text run per element of a paragraph.
func DocumentXML(paragraphs ...[]string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, runs := range paragraphs {
		sb.WriteString("<w:p>")
		for _, r := range runs {
			fmt.Fprintf(&sb, `<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r>`, html.EscapeString(r))
		}
		sb.WriteString("</w:p>")
	}
	sb.WriteString(`<w:sectPr/></w:body></w:document>`)
	return sb.String()
}

// WriteDocx writes a word-processor document whose body holds the given
// paragraphs of text runs.
func WriteDocx(t *testing.T, dir, name string, paragraphs ...[]string) string {
	t.Helper()
	return WriteZIP(t, dir, name,
		TextEntry("[Content_Types].xml", `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`),
		TextEntry("word/document.xml", DocumentXML(paragraphs...)),
	)
}

// WriteXLSX writes a single-sheet workbook. String cells go through the
// shared-string table; ints are stored as numeric cells.
func WriteXLSX(t *testing.T, dir, name string, rows ...[]any) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Лист1")
	require.NoError(t, err)

	for _, values := range rows {
		row := sheet.AddRow()
		for _, v := range values {
			cell := row.AddCell()
			switch val := v.(type) {
			case int:
				cell.SetInt(val)
			case float64:
				cell.SetFloat(val)
			default:
				cell.SetString(fmt.Sprint(val))
			}
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.Save(path))
	return path
}

// ReadXLSX returns the formatted cell values of the named sheet of a
// workbook, or of its first sheet when sheet is empty.
func ReadXLSX(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	s := f.Sheets[0]
	if sheet != "" {
		var ok bool
		s, ok = f.Sheet[sheet]
		require.True(t, ok, "sheet %q not found", sheet)
	}

	rows := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows
}

// RARArchive is a stored (uncompressed) RAR 4 archive holding
//
//	notice.txt    "ИНН заказчика: 5012345678\nартикул: RR10 цена 700\n"
//	docs/         directory
//	docs/lot.txt  "артикул: RR20 цена 900\n"
const RARArchive = "UmFyIRoHAM+QcwAADQAAAAAAAABiBXQAgCoASAAAAEgAAAADQZuwhAAAbloUMAoApIEAAG5vdGljZS50eHTQmNCd0J0g0LfQsNC60LDQt9GH0LjQutCwOiA1MDEyMzQ1Njc4CtCw0YDRgtC40LrRg9C7OiBSUjEwINGG0LXQvdCwIDcwMApiI3TggCQAAAAAAAAAAAADAAAAAAAAbloUMAQA7UEAAGRvY3MWXnQAgCwAIgAAACIAAAADWE/ynQAAbloUMAwApIEAAGRvY3MvbG90LnR4dNCw0YDRgtC40LrRg9C7OiBSUjIwINGG0LXQvdCwIDkwMArEPXsAQAcA"

// RARSlipArchive is a RAR 4 archive with a single entry named "../evil.txt".
const RARSlipArchive = "UmFyIRoHAM+QcwAADQAAAAAAAACyjXQAgCsAAQAAAAEAAAADgxbcjAAAbloUMAsApIEAAC4uL2V2aWwudHh0eMQ9ewBABwA="

// WriteRAR decodes a base64 RAR fixture into dir/name.
func WriteRAR(t *testing.T, dir, name, encoded string) string {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
