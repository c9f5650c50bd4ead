// Package ocr holds the seams for pulling text out of rendered documents:
// PDF text extraction and image recognition.
package ocr

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/tender-cli/internal/config"
)

// ErrDisabled is returned by extractors switched off in configuration.
var ErrDisabled = errors.New("ocr: provider disabled")

// Extractor extracts text content from PDF files.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// ImageRecognizer extracts text from raster images.
type ImageRecognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	switch cfg.Provider {
	case "local", "":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "none":
		return Disabled{}, nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

// Disabled is an Extractor that always fails with ErrDisabled.
type Disabled struct{}

// ExtractText implements Extractor.
func (Disabled) ExtractText(_ context.Context, _ string) (string, error) {
	return "", ErrDisabled
}

// Placeholder is an ImageRecognizer that recognizes nothing. Images yield
// empty text until a recognition engine is plugged in here.
type Placeholder struct{}

// Recognize implements ImageRecognizer.
func (Placeholder) Recognize(_ context.Context, _ string) (string, error) {
	return "", nil
}
