// Package monitor runs the "find new tenders" flow: incoming candidates are
// filtered against an organization's effective search parameters and the
// survivors are appended to its registry.
package monitor

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/tender-cli/internal/matcher"
	"github.com/sells-group/tender-cli/internal/model"
	"github.com/sells-group/tender-cli/internal/registry"
	"github.com/sells-group/tender-cli/internal/search"
	"github.com/sells-group/tender-cli/internal/store"
)

// Result summarizes one monitoring run for an organization.
type Result struct {
	INN        string               `json:"inn"`
	Candidates int                  `json:"candidates"`
	Matched    int                  `json:"matched"`
	Added      int                  `json:"added"`
	Registry   []model.TenderRecord `json:"registry"`
}

// Monitor wires the search parameters, matcher and registry together.
type Monitor struct {
	layout   *store.Layout
	params   *search.Store
	registry registry.Registry
	now      func() time.Time
}

// New creates a Monitor.
func New(layout *store.Layout, params *search.Store, reg registry.Registry) *Monitor {
	return &Monitor{layout: layout, params: params, registry: reg, now: time.Now}
}

// FindNewTenders filters the organization's incoming candidates at the
// current instant, appends the matches to its registry and returns the full
// registry.
func (m *Monitor) FindNewTenders(ctx context.Context, inn string) (*Result, error) {
	params, err := m.params.Effective(inn)
	if err != nil {
		return nil, err
	}
	candidates, err := m.Incoming(inn)
	if err != nil {
		return nil, err
	}

	now := m.now()
	var records []model.TenderRecord
	for _, c := range candidates {
		if reason := matcher.Evaluate(c, params, now); reason != matcher.Accepted {
			zap.L().Debug("monitor: candidate rejected",
				zap.String("inn", inn),
				zap.String("number", c.Number),
				zap.String("reason", string(reason)),
			)
			continue
		}
		records = append(records, c.Record())
	}

	added, err := m.registry.Append(ctx, inn, records...)
	if err != nil {
		return nil, eris.Wrapf(err, "monitor: append %s", inn)
	}
	list, err := m.registry.List(ctx, inn)
	if err != nil {
		return nil, eris.Wrapf(err, "monitor: list %s", inn)
	}

	zap.L().Info("monitor: run complete",
		zap.String("inn", inn),
		zap.Int("candidates", len(candidates)),
		zap.Int("matched", len(records)),
		zap.Int("added", added),
	)
	return &Result{
		INN:        inn,
		Candidates: len(candidates),
		Matched:    len(records),
		Added:      added,
		Registry:   list,
	}, nil
}

// RunAll runs FindNewTenders for each organization with at most concurrency
// organizations in flight. Results keep the input order; the first error
// cancels the remaining runs.
func (m *Monitor) RunAll(ctx context.Context, inns []string, concurrency int) ([]*Result, error) {
	results := make([]*Result, len(inns))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, inn := range inns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := m.FindNewTenders(gctx, inn)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Incoming reads incoming_tenders.json. A missing file yields no candidates.
func (m *Monitor) Incoming(inn string) ([]model.CandidateTender, error) {
	path, err := m.layout.IncomingPath(inn)
	if err != nil {
		return nil, err
	}
	var candidates []model.CandidateTender
	if _, err := store.ReadJSON(path, &candidates); err != nil {
		return nil, eris.Wrap(err, "monitor: load incoming tenders")
	}
	return candidates, nil
}
