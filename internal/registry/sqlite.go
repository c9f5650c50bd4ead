package registry

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/tender-cli/internal/model"
)

// SQLiteRegistry implements Registry using modernc.org/sqlite.
type SQLiteRegistry struct {
	db    *sql.DB
	locks orgLocks
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteRegistry{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS tenders (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	inn        TEXT NOT NULL,
	number     TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	price      REAL NOT NULL DEFAULT 0,
	deadline   TEXT NOT NULL DEFAULT '',
	url        TEXT NOT NULL DEFAULT '',
	platform   TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'new',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (inn, number)
);

CREATE INDEX IF NOT EXISTS idx_tenders_inn ON tenders(inn, seq);
`

// Migrate creates the tenders table.
func (r *SQLiteRegistry) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close implements Registry.
func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}

// Append implements Registry.
func (r *SQLiteRegistry) Append(ctx context.Context, inn string, records ...model.TenderRecord) (int, error) {
	records = prepare(inn, records)
	if len(records) == 0 {
		return 0, nil
	}

	unlock := r.locks.lock(inn)
	defer unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin append")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	added := 0
	for _, rec := range records {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tenders (inn, number, title, price, deadline, url, platform, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (inn, number) DO NOTHING`,
			inn, rec.Number, rec.Title, float64(rec.Price), rec.Deadline, rec.URL, rec.Platform, string(rec.Status), now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert tender %s", rec.Number)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit append")
	}
	return added, nil
}

// List implements Registry.
func (r *SQLiteRegistry) List(ctx context.Context, inn string) ([]model.TenderRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT number, title, price, deadline, url, platform, status
		 FROM tenders WHERE inn = ? ORDER BY seq`,
		inn,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list tenders")
	}
	defer rows.Close() //nolint:errcheck

	records := []model.TenderRecord{}
	for rows.Next() {
		var (
			rec    model.TenderRecord
			price  float64
			status string
		)
		if err := rows.Scan(&rec.Number, &rec.Title, &price, &rec.Deadline, &rec.URL, &rec.Platform, &status); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan tender")
		}
		rec.Price = model.Amount(price)
		rec.Status = model.NormalizeStatus(status)
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: iterate tenders")
}
