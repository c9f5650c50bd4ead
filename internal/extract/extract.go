// Package extract turns individual uploaded files into raw text, one
// extractor per file family.
package extract

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"

	"github.com/sells-group/tender-cli/internal/fetcher"
	"github.com/sells-group/tender-cli/internal/ocr"
)

var (
	// ErrUnsupportedFormat marks files whose family has no decoder.
	ErrUnsupportedFormat = errors.New("extract: unsupported format")
	// ErrCorruptContainer marks malformed zip containers or XML parts.
	ErrCorruptContainer = errors.New("extract: corrupt container")
)

// Extractors dispatches leaf files to their family extractor.
type Extractors struct {
	pdf     ocr.Extractor
	images  ocr.ImageRecognizer
	charset encoding.Encoding
}

// New creates Extractors. charset is the fallback for plain text and CSV
// files that are not valid UTF-8 (empty = drop invalid bytes).
func New(pdf ocr.Extractor, images ocr.ImageRecognizer, charset string) (*Extractors, error) {
	enc, err := lookupCharset(charset)
	if err != nil {
		return nil, err
	}
	if pdf == nil {
		pdf = ocr.Disabled{}
	}
	if images == nil {
		images = ocr.Placeholder{}
	}
	return &Extractors{pdf: pdf, images: images, charset: enc}, nil
}

// Extract returns the text of a leaf file. A non-nil error describes an
// anomaly the caller may record next to whatever text could be recovered.
// Unknown, archive and blocked kinds yield empty text.
func (e *Extractors) Extract(ctx context.Context, kind Kind, path string) (string, error) {
	switch kind {
	case KindPlainText:
		return e.plainText(path)
	case KindWordDocument:
		return wordDocument(ctx, path)
	case KindPDF:
		return e.pdfText(ctx, path)
	case KindSpreadsheet:
		return spreadsheet(ctx, path)
	case KindLegacySpreadsheet:
		return "", eris.Wrap(ErrUnsupportedFormat, "xls: legacy binary workbooks have no decoder")
	case KindDelimitedTable:
		return e.delimitedTable(ctx, path)
	case KindImage:
		return e.image(ctx, path)
	default:
		return "", nil
	}
}

func (e *Extractors) plainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrap(err, "text: read file")
	}
	return decodeText(data, e.charset), nil
}

// wordDocument concatenates the text runs (local tag "t") of
// word/document.xml, one run per line, in document order.
func wordDocument(ctx context.Context, path string) (string, error) {
	data, err := fetcher.ReadZIPFile(path, "word/document.xml")
	if err != nil {
		return "", eris.Wrapf(ErrCorruptContainer, "docx: %v", err)
	}

	runs, err := fetcher.CollectXMLText(ctx, bytes.NewReader(data), "t")
	if err != nil {
		return "", eris.Wrapf(ErrCorruptContainer, "docx: %v", err)
	}

	return joinNonEmpty(runs), nil
}

func (e *Extractors) pdfText(ctx context.Context, path string) (string, error) {
	text, err := e.pdf.ExtractText(ctx, path)
	if err != nil {
		return "", eris.Wrapf(ErrUnsupportedFormat, "pdf: %v", err)
	}
	return text, nil
}

// delimitedTable joins each row's fields with a single space, one line per row.
func (e *Extractors) delimitedTable(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrap(err, "csv: read file")
	}

	rows, err := fetcher.ReadCSV(ctx, strings.NewReader(decodeText(data, e.charset)), fetcher.CSVOptions{LazyQuotes: true})
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, " "))
	}
	return strings.Join(lines, "\n"), err
}

func (e *Extractors) image(ctx context.Context, path string) (string, error) {
	text, err := e.images.Recognize(ctx, path)
	if err != nil {
		return "", eris.Wrap(err, "image: recognize")
	}
	return text, nil
}

func joinNonEmpty(parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
