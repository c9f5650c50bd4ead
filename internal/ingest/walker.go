package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tender-cli/internal/extract"
	"github.com/sells-group/tender-cli/internal/fetcher"
	"github.com/sells-group/tender-cli/internal/fields"
	"github.com/sells-group/tender-cli/internal/model"
)

// archiveExtractor unpacks an archive into destDir and returns the extracted
// file paths in archive order, including partial results on error.
type archiveExtractor func(path, destDir string, budget *fetcher.Budget) ([]string, error)

var archiveExtractors = map[string]archiveExtractor{
	".zip": fetcher.ExtractZIP,
	".rar": fetcher.ExtractRAR,
}

// walk is the state of one ingestion call: an exclusively owned workspace
// and the extraction budget shared by every archive in the call.
type walk struct {
	extractors *extract.Extractors
	workspace  string
	budget     *fetcher.Budget
	maxDepth   int
	strict     bool
}

// process dispatches one file by kind. Anomalies are recorded in the
// metadata error note; an error is returned only for cancellation or, in
// strict mode, for corrupt containers.
func (w *walk) process(ctx context.Context, path string, depth int) (model.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ExtractionResult{}, eris.Wrap(err, "ingest: cancelled")
	}

	ext := extract.Extension(path)
	res := model.ExtractionResult{
		Candidates: []model.ProductCandidate{},
		Metadata:   model.FileMetadata{Path: path, Extension: ext},
	}

	kind := extract.Classify(ext)
	switch kind {
	case extract.KindBlocked:
		res.Metadata.Blocked = true
		zap.L().Warn("ingest: blocked file skipped", zap.String("path", path))
		return res, nil
	case extract.KindArchive:
		return w.archive(ctx, path, depth, res)
	}

	text, err := w.extractors.Extract(ctx, kind, path)
	if err != nil {
		if hard := w.note(&res.Metadata, err, errors.Is(err, extract.ErrCorruptContainer)); hard != nil {
			return res, hard
		}
	}
	res.Text = text
	res.Candidates = append(res.Candidates, fields.ProductCandidates(text)...)
	return res, nil
}

// archive unpacks into a fresh subdirectory of the workspace and processes
// every extracted entry in archive order.
func (w *walk) archive(ctx context.Context, path string, depth int, res model.ExtractionResult) (model.ExtractionResult, error) {
	unpack, ok := archiveExtractors[res.Metadata.Extension]
	if !ok {
		res.Metadata.Error = fmt.Sprintf("unsupported archive format %s", res.Metadata.Extension)
		zap.L().Warn("ingest: unsupported archive", zap.String("path", path))
		return res, nil
	}
	if w.maxDepth > 0 && depth >= w.maxDepth {
		res.Metadata.Error = fmt.Sprintf("archive nesting deeper than %d levels", w.maxDepth)
		zap.L().Warn("ingest: archive nesting limit reached", zap.String("path", path), zap.Int("depth", depth))
		return res, nil
	}

	dest, err := os.MkdirTemp(w.workspace, "archive-*")
	if err != nil {
		return res, eris.Wrap(err, "ingest: create archive directory")
	}

	entries, err := unpack(path, dest, w.budget)
	if err != nil {
		if hard := w.note(&res.Metadata, err, !errors.Is(err, fetcher.ErrBudgetExceeded)); hard != nil {
			return res, hard
		}
	}

	var texts []string
	for _, entry := range entries {
		child, err := w.process(ctx, entry, depth+1)
		if err != nil {
			return res, err
		}
		texts = append(texts, child.Text)
		res.Candidates = append(res.Candidates, child.Candidates...)
	}

	n := len(entries)
	res.Metadata.NestedFiles = &n
	res.Text = joinNonEmpty(texts)
	return res, nil
}

// note records err on meta and logs it. In strict mode a corrupt container
// becomes a hard error.
func (w *walk) note(meta *model.FileMetadata, err error, corrupt bool) error {
	meta.Error = err.Error()
	zap.L().Warn("ingest: file anomaly",
		zap.String("path", meta.Path),
		zap.Error(err),
	)
	if w.strict && corrupt {
		return eris.Wrapf(err, "ingest: corrupt container %s", meta.Path)
	}
	return nil
}

func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
