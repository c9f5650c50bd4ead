// Package registry persists each organization's append-only list of tender
// records, deduplicated by tender number.
package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tender-cli/internal/config"
	"github.com/sells-group/tender-cli/internal/model"
	"github.com/sells-group/tender-cli/internal/store"
)

// ErrInvalidRecord marks records that cannot be stored, such as a record
// without a number.
var ErrInvalidRecord = errors.New("registry: invalid record")

// Registry is an append-only, number-keyed list of tender records per
// organization. Existing records are never overwritten.
type Registry interface {
	// Append adds the records whose numbers are not yet present, in order,
	// and returns how many were added. Invalid records are skipped.
	Append(ctx context.Context, inn string, records ...model.TenderRecord) (int, error)
	// List returns all records of an organization in insertion order.
	List(ctx context.Context, inn string) ([]model.TenderRecord, error)
	Close() error
}

// Open creates the Registry selected by cfg.Driver.
func Open(ctx context.Context, cfg config.RegistryConfig, layout *store.Layout) (Registry, error) {
	switch cfg.Driver {
	case "", "json":
		return NewJSON(layout), nil
	case "sqlite":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			if err := os.MkdirAll(layout.Root(), 0o755); err != nil {
				return nil, eris.Wrap(err, "registry: create storage root")
			}
			dsn = filepath.Join(layout.Root(), "registry.db")
		}
		r, err := NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		if err := r.Migrate(ctx); err != nil {
			r.Close() //nolint:errcheck
			return nil, err
		}
		return r, nil
	case "postgres":
		r, err := NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
		if err != nil {
			return nil, err
		}
		if err := r.Migrate(ctx); err != nil {
			r.Close() //nolint:errcheck
			return nil, err
		}
		return r, nil
	default:
		return nil, eris.Errorf("registry: unknown driver %q", cfg.Driver)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that a record can be stored.
func Validate(rec model.TenderRecord) error {
	if err := validate.Struct(rec); err != nil {
		return eris.Wrapf(ErrInvalidRecord, "number %q: %v", rec.Number, err)
	}
	return nil
}

// prepare normalizes statuses, drops invalid records and collapses duplicate
// numbers within one batch, keeping the first occurrence.
func prepare(inn string, records []model.TenderRecord) []model.TenderRecord {
	out := make([]model.TenderRecord, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		rec.Status = model.NormalizeStatus(string(rec.Status))
		if err := Validate(rec); err != nil {
			zap.L().Warn("registry: skipping invalid record",
				zap.String("inn", inn),
				zap.Error(err),
			)
			continue
		}
		if seen[rec.Number] {
			continue
		}
		seen[rec.Number] = true
		out = append(out, rec)
	}
	return out
}

// orgLocks serializes read-modify-write cycles per organization.
type orgLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *orgLocks) lock(inn string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[inn]
	if !ok {
		m = &sync.Mutex{}
		l.locks[inn] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
