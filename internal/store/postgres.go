package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id UUID PRIMARY KEY,
	scenario TEXT NOT NULL,
	tag TEXT NOT NULL,
	workbook TEXT NOT NULL,
	status TEXT NOT NULL,
	objective DOUBLE PRECISION NOT NULL DEFAULT 0,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS runs_scenario_started_idx ON runs (scenario, started_at DESC);
CREATE TABLE IF NOT EXISTS run_entries (
	run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INT NOT NULL,
	table_name TEXT NOT NULL,
	entry_key TEXT NOT NULL,
	value DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, position)
);`

// Postgres archives runs through the pgx database/sql driver.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects and creates the tables when missing.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	p := NewPostgres(db)
	if err := p.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Migrate(ctx context.Context) error {
	if p == nil || p.db == nil {
		return errors.New("run store: nil db")
	}
	if _, err := p.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func (p *Postgres) SaveRun(ctx context.Context, run Run) error {
	if p == nil || p.db == nil {
		return errors.New("run store: nil db")
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, scenario, tag, workbook, status, objective, started_at, finished_at, error)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	scenario = EXCLUDED.scenario,
	tag = EXCLUDED.tag,
	workbook = EXCLUDED.workbook,
	status = EXCLUDED.status,
	objective = EXCLUDED.objective,
	started_at = EXCLUDED.started_at,
	finished_at = EXCLUDED.finished_at,
	error = EXCLUDED.error`,
		run.ID, run.Scenario, run.Tag, run.Workbook, run.Status, run.Objective,
		run.StartedAt.UTC(), nullTime(run.FinishedAt), run.Error)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_entries WHERE run_id = $1`, run.ID); err != nil {
		_ = tx.Rollback()
		return err
	}

	if len(run.Entries) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_entries (run_id, position, table_name, entry_key, value)
VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		defer stmt.Close()
		for i, e := range run.Entries {
			if _, err := stmt.ExecContext(ctx, run.ID, i, e.Table, e.Key, e.Value); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
	}
	return tx.Commit()
}

func (p *Postgres) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	if p == nil || p.db == nil {
		return Run{}, errors.New("run store: nil db")
	}
	row := p.db.QueryRowContext(ctx, `
SELECT id, scenario, tag, workbook, status, objective, started_at, finished_at, error
FROM runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}

	rows, err := p.db.QueryContext(ctx, `
SELECT table_name, entry_key, value FROM run_entries
WHERE run_id = $1 ORDER BY position`, id)
	if err != nil {
		return Run{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Table, &e.Key, &e.Value); err != nil {
			return Run{}, err
		}
		run.Entries = append(run.Entries, e)
	}
	return run, rows.Err()
}

func (p *Postgres) ListRuns(ctx context.Context, scenario string, limit int) ([]Run, error) {
	if p == nil || p.db == nil {
		return nil, errors.New("run store: nil db")
	}
	query := `
SELECT id, scenario, tag, workbook, status, objective, started_at, finished_at, error
FROM runs WHERE ($1 = '' OR scenario = $1) ORDER BY started_at DESC`
	args := []any{scenario}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run      Run
		finished sql.NullTime
	)
	if err := s.Scan(&run.ID, &run.Scenario, &run.Tag, &run.Workbook, &run.Status,
		&run.Objective, &run.StartedAt, &finished, &run.Error); err != nil {
		return Run{}, err
	}
	run.StartedAt = run.StartedAt.UTC()
	if finished.Valid {
		run.FinishedAt = finished.Time.UTC()
	}
	return run, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
