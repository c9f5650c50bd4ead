package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tender-cli/internal/config"
	"github.com/sells-group/tender-cli/internal/extract"
	"github.com/sells-group/tender-cli/internal/ingest"
	"github.com/sells-group/tender-cli/internal/monitor"
	"github.com/sells-group/tender-cli/internal/ocr"
	"github.com/sells-group/tender-cli/internal/registry"
	"github.com/sells-group/tender-cli/internal/search"
	"github.com/sells-group/tender-cli/internal/store"
)

// appEnv holds the components shared by the commands.
type appEnv struct {
	Layout   *store.Layout
	Registry registry.Registry
	Params   *search.Store
	Pipeline *ingest.Pipeline
	Monitor  *monitor.Monitor
}

// Close releases the registry backend.
func (e *appEnv) Close() {
	if e.Registry != nil {
		if err := e.Registry.Close(); err != nil {
			zap.L().Warn("close registry", zap.Error(err))
		}
	}
}

// initEnv opens the registry and wires the ingestion and monitoring
// components for c. Callers should defer env.Close().
func initEnv(ctx context.Context, c *config.Config) (*appEnv, error) {
	layout := store.NewLayout(c.Storage)

	pdf, err := ocr.NewExtractor(c.OCR)
	if err != nil {
		return nil, eris.Wrap(err, "init pdf extractor")
	}
	extractors, err := extract.New(pdf, nil, c.Ingest.TextCharset)
	if err != nil {
		return nil, eris.Wrap(err, "init extractors")
	}

	reg, err := registry.Open(ctx, c.Registry, layout)
	if err != nil {
		return nil, eris.Wrap(err, "open registry")
	}

	params := search.NewStore(layout)
	zap.L().Debug("environment ready",
		zap.String("storage", layout.Root()),
		zap.String("registry", c.Registry.Driver),
	)

	return &appEnv{
		Layout:   layout,
		Registry: reg,
		Params:   params,
		Pipeline: ingest.New(c.Ingest, layout, reg, extractors),
		Monitor:  monitor.New(layout, params, reg),
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode output")
	}
	return nil
}
