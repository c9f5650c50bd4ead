// Package fetcher unpacks archives and reads rows and elements out of
// CSV and XML sources.
package fetcher

import (
	"context"
	"encoding/csv"
	"errors"
	"io"

	"github.com/rotisserie/eris"
)

// CSVOptions configures ReadCSV.
type CSVOptions struct {
	Delimiter  rune // default ','
	LazyQuotes bool
}

// ReadCSV reads all records of r. Records may have a variable number of
// fields. Rows read before a parse error are returned together with the
// error, so callers can keep partial tables.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([][]string, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return rows, eris.Wrap(err, "csv: read cancelled")
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, eris.Wrapf(err, "csv: row %d", len(rows)+1)
		}
		rows = append(rows, record)
	}
}
