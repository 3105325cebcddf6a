// Package catalog persists mosaic runs in a SQLite database.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jobrunner/skyline/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS mosaic_runs (
	id           TEXT PRIMARY KEY,
	created_at   INTEGER NOT NULL,
	tolerant     INTEGER NOT NULL,
	area         REAL    NOT NULL,
	member_count INTEGER NOT NULL,
	duration_ns  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS mosaic_run_members (
	run_id    TEXT    NOT NULL REFERENCES mosaic_runs(id) ON DELETE CASCADE,
	role      TEXT    NOT NULL CHECK (role IN ('included', 'excluded')),
	position  INTEGER NOT NULL,
	source_id TEXT    NOT NULL,
	PRIMARY KEY (run_id, role, position)
);
CREATE INDEX IF NOT EXISTS idx_run_members_run ON mosaic_run_members(run_id);
`

// Catalog implements the MosaicCatalog port on SQLite.
type Catalog struct {
	db *sql.DB
}

// New opens (and if necessary initializes) a mosaic catalog. Use the
// ":memory:" path for an ephemeral catalog.
func New(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, &domain.CatalogError{Operation: "open", Err: err}
	}
	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY on concurrent saves.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &domain.CatalogError{Operation: "migrate", Err: err}
	}
	return &Catalog{db: db}, nil
}

// Close implements output.MosaicCatalog.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// SaveRun implements output.MosaicCatalog.
func (c *Catalog) SaveRun(ctx context.Context, run *domain.MosaicRun) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.CatalogError{Operation: "save", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO mosaic_runs (id, created_at, tolerant, area, member_count, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.Tolerant, run.Area, run.MemberCount, run.Duration.Nanoseconds())
	if err != nil {
		return &domain.CatalogError{Operation: "save", Err: err}
	}

	insert := func(role string, ids []string) error {
		for i, id := range ids {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO mosaic_run_members (run_id, role, position, source_id) VALUES (?, ?, ?, ?)`,
				run.ID, role, i, id); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert("included", run.Included); err != nil {
		return &domain.CatalogError{Operation: "save", Err: err}
	}
	if err := insert("excluded", run.Excluded); err != nil {
		return &domain.CatalogError{Operation: "save", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &domain.CatalogError{Operation: "save", Err: err}
	}
	return nil
}

// ListRuns implements output.MosaicCatalog.
func (c *Catalog) ListRuns(ctx context.Context, limit int) ([]domain.MosaicRun, error) {
	query := `SELECT id, created_at, tolerant, area, member_count, duration_ns
	          FROM mosaic_runs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.CatalogError{Operation: "list", Err: err}
	}
	defer rows.Close()

	var runs []domain.MosaicRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, &domain.CatalogError{Operation: "list", Err: err}
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.CatalogError{Operation: "list", Err: err}
	}
	for i := range runs {
		if err := c.loadMembers(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// GetRun implements output.MosaicCatalog.
func (c *Catalog) GetRun(ctx context.Context, id string) (*domain.MosaicRun, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, created_at, tolerant, area, member_count, duration_ns
		 FROM mosaic_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %q: %w", id, domain.ErrMosaicRunNotFound)
	}
	if err != nil {
		return nil, &domain.CatalogError{Operation: "get", Err: err}
	}
	if err := c.loadMembers(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.MosaicRun, error) {
	var (
		run       domain.MosaicRun
		createdNs int64
		durNs     int64
	)
	if err := row.Scan(&run.ID, &createdNs, &run.Tolerant, &run.Area, &run.MemberCount, &durNs); err != nil {
		return nil, err
	}
	run.CreatedAt = time.Unix(0, createdNs).UTC()
	run.Duration = time.Duration(durNs)
	return &run, nil
}

func (c *Catalog) loadMembers(ctx context.Context, run *domain.MosaicRun) error {
	rows, err := c.db.QueryContext(ctx,
		`SELECT role, source_id FROM mosaic_run_members WHERE run_id = ? ORDER BY role, position`,
		run.ID)
	if err != nil {
		return &domain.CatalogError{Operation: "get", Err: err}
	}
	defer rows.Close()

	run.Included = []string{}
	run.Excluded = []string{}
	for rows.Next() {
		var role, sourceID string
		if err := rows.Scan(&role, &sourceID); err != nil {
			return &domain.CatalogError{Operation: "get", Err: err}
		}
		if role == "included" {
			run.Included = append(run.Included, sourceID)
		} else {
			run.Excluded = append(run.Excluded, sourceID)
		}
	}
	return rows.Err()
}
