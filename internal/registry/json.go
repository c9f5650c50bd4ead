package registry

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tender-cli/internal/model"
	"github.com/sells-group/tender-cli/internal/store"
)

// JSONRegistry stores each organization's records as a JSON array in
// <root>/<inn>/lots/registry.json, rewriting the whole file on append.
type JSONRegistry struct {
	layout *store.Layout
	locks  orgLocks
}

// NewJSON creates a file-backed registry.
func NewJSON(layout *store.Layout) *JSONRegistry {
	return &JSONRegistry{layout: layout}
}

// Append implements Registry.
func (r *JSONRegistry) Append(_ context.Context, inn string, records ...model.TenderRecord) (int, error) {
	records = prepare(inn, records)
	if len(records) == 0 {
		return 0, nil
	}

	path, err := r.layout.RegistryPath(inn)
	if err != nil {
		return 0, err
	}

	unlock := r.locks.lock(inn)
	defer unlock()

	existing, err := r.read(path)
	if err != nil {
		return 0, err
	}

	present := make(map[string]bool, len(existing))
	for _, rec := range existing {
		present[rec.Number] = true
	}

	added := 0
	for _, rec := range records {
		if present[rec.Number] {
			zap.L().Debug("registry: number already present",
				zap.String("inn", inn),
				zap.String("number", rec.Number),
			)
			continue
		}
		present[rec.Number] = true
		existing = append(existing, rec)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	if err := store.WriteJSON(path, existing); err != nil {
		return 0, eris.Wrapf(err, "registry: write %s", inn)
	}
	return added, nil
}

// List implements Registry.
func (r *JSONRegistry) List(_ context.Context, inn string) ([]model.TenderRecord, error) {
	path, err := r.layout.RegistryPath(inn)
	if err != nil {
		return nil, err
	}

	unlock := r.locks.lock(inn)
	defer unlock()

	return r.read(path)
}

// Close implements Registry.
func (r *JSONRegistry) Close() error { return nil }

func (r *JSONRegistry) read(path string) ([]model.TenderRecord, error) {
	records := []model.TenderRecord{}
	if _, err := store.ReadJSON(path, &records); err != nil {
		return nil, eris.Wrap(err, "registry: load")
	}
	if records == nil {
		records = []model.TenderRecord{}
	}
	for i := range records {
		records[i].Status = model.NormalizeStatus(string(records[i].Status))
	}
	return records, nil
}
