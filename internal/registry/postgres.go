package registry

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/tender-cli/internal/model"
)

// Pool is the subset of *pgxpool.Pool used by PostgresRegistry.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// PostgresRegistry implements Registry using pgxpool.
type PostgresRegistry struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresRegistry with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresRegistry, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresRegistry{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS tender_registry (
	id         BIGSERIAL PRIMARY KEY,
	inn        TEXT NOT NULL,
	number     TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	price      DOUBLE PRECISION NOT NULL DEFAULT 0,
	deadline   TEXT NOT NULL DEFAULT '',
	url        TEXT NOT NULL DEFAULT '',
	platform   TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'new',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (inn, number)
);

CREATE INDEX IF NOT EXISTS idx_tender_registry_inn ON tender_registry(inn, id);
`

// Migrate creates the tender_registry table.
func (r *PostgresRegistry) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close implements Registry.
func (r *PostgresRegistry) Close() error {
	if r.closeFn != nil {
		r.closeFn()
	}
	return nil
}

// Append implements Registry. Conflicting numbers are left untouched.
func (r *PostgresRegistry) Append(ctx context.Context, inn string, records ...model.TenderRecord) (int, error) {
	records = prepare(inn, records)
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin append")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	added := 0
	for _, rec := range records {
		tag, err := tx.Exec(ctx,
			`INSERT INTO tender_registry (inn, number, title, price, deadline, url, platform, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (inn, number) DO NOTHING`,
			inn, rec.Number, rec.Title, float64(rec.Price), rec.Deadline, rec.URL, rec.Platform, string(rec.Status),
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: insert tender %s", rec.Number)
		}
		added += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit append")
	}
	return added, nil
}

// List implements Registry.
func (r *PostgresRegistry) List(ctx context.Context, inn string) ([]model.TenderRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT number, title, price, deadline, url, platform, status
		 FROM tender_registry WHERE inn = $1 ORDER BY id`,
		inn,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list tenders")
	}
	defer rows.Close()

	records := []model.TenderRecord{}
	for rows.Next() {
		var (
			rec    model.TenderRecord
			price  float64
			status string
		)
		if err := rows.Scan(&rec.Number, &rec.Title, &price, &rec.Deadline, &rec.URL, &rec.Platform, &status); err != nil {
			return nil, eris.Wrap(err, "postgres: scan tender")
		}
		rec.Price = model.Amount(price)
		rec.Status = model.NormalizeStatus(status)
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: iterate tenders")
}
