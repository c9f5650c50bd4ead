// Package ingest turns uploaded files into a manual tender: archives are
// walked recursively inside a per-call workspace, leaf files are extracted
// to text, fields and product candidates are scanned from the text and the
// resulting record is appended to the organization registry.
package ingest

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tender-cli/internal/config"
	"github.com/sells-group/tender-cli/internal/extract"
	"github.com/sells-group/tender-cli/internal/fetcher"
	"github.com/sells-group/tender-cli/internal/fields"
	"github.com/sells-group/tender-cli/internal/model"
	"github.com/sells-group/tender-cli/internal/registry"
	"github.com/sells-group/tender-cli/internal/store"
	"github.com/sells-group/tender-cli/internal/tender"
)

// ErrMissingOrganization is returned when neither the caller nor the
// launcher state names an organization.
var ErrMissingOrganization = errors.New("ingest: no organization specified")

// Pipeline runs ingestion calls. It is safe for concurrent use; each call
// owns its workspace and the registry serializes writes per organization.
type Pipeline struct {
	cfg        config.IngestConfig
	layout     *store.Layout
	registry   registry.Registry
	extractors *extract.Extractors
	now        func() time.Time
}

// New creates a Pipeline.
func New(cfg config.IngestConfig, layout *store.Layout, reg registry.Registry, extractors *extract.Extractors) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		layout:     layout,
		registry:   reg,
		extractors: extractors,
		now:        time.Now,
	}
}

// Ingest processes paths for the organization inn (or the active
// organization when inn is empty), stores the tender artifacts and appends
// the tender to the registry. Format and content anomalies never fail the
// call; they are reported in the per-file metadata.
func (p *Pipeline) Ingest(ctx context.Context, inn string, paths []string) (*model.IngestionResult, error) {
	inn, err := p.resolveOrganization(inn)
	if err != nil {
		return nil, err
	}

	workspace, err := os.MkdirTemp(p.cfg.TempDir, "tender-ingest-*")
	if err != nil {
		return nil, eris.Wrap(err, "ingest: create workspace")
	}
	defer func() {
		if err := os.RemoveAll(workspace); err != nil {
			zap.L().Warn("ingest: remove workspace", zap.String("dir", workspace), zap.Error(err))
		}
	}()

	w := &walk{
		extractors: p.extractors,
		workspace:  workspace,
		budget:     fetcher.NewBudget(p.cfg.MaxTotalBytes, p.cfg.MaxEntries),
		maxDepth:   p.cfg.MaxDepth,
		strict:     p.cfg.Strict,
	}

	texts := make([]string, 0, len(paths))
	candidates := []model.ProductCandidate{}
	files := make([]model.FileMetadata, 0, len(paths))
	for _, path := range paths {
		res, err := w.process(ctx, path, 0)
		if err != nil {
			return nil, err
		}
		texts = append(texts, res.Text)
		candidates = append(candidates, res.Candidates...)
		files = append(files, res.Metadata)
	}

	text := joinNonEmpty(texts)
	rec := tender.Build(fields.Extract(text), p.now())
	id := uuid.NewString()

	err = p.layout.SaveArtifacts(inn, rec.Number, store.Artifacts{
		Metadata:   store.TenderMetadata{IngestionID: id, Files: files},
		Text:       text,
		Candidates: candidates,
	})
	if err != nil {
		return nil, eris.Wrap(err, "ingest: save artifacts")
	}

	added, err := p.registry.Append(ctx, inn, rec)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: append registry")
	}

	bytesUsed, entries := w.budget.Used()
	zap.L().Info("ingest: complete",
		zap.String("ingestion_id", id),
		zap.String("inn", inn),
		zap.String("number", rec.Number),
		zap.String("status", string(rec.Status)),
		zap.Bool("new_record", added > 0),
		zap.Int("files", len(files)),
		zap.Int("archive_entries", entries),
		zap.Int64("archive_bytes", bytesUsed),
		zap.Int("product_candidates", len(candidates)),
	)

	return &model.IngestionResult{
		IngestionID: id,
		Tender:      rec,
		Text:        text,
		Candidates:  candidates,
		Files:       files,
	}, nil
}

func (p *Pipeline) resolveOrganization(inn string) (string, error) {
	inn = strings.TrimSpace(inn)
	if inn == "" {
		active, err := p.layout.ActiveOrganization()
		if err != nil {
			return "", err
		}
		inn = active
	}
	if inn == "" {
		return "", ErrMissingOrganization
	}
	if _, err := p.layout.OrganizationDir(inn); err != nil {
		return "", err
	}
	return inn, nil
}
