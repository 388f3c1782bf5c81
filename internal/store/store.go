// Package store archives scenario runs and their summary tables so that
// batches can be compared and exported later.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"energy-expansion/internal/results"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("run not found")

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Entry is one summary value, addressed by table (sheet) and key.
type Entry struct {
	Table string
	Key   string
	Value float64
}

type Run struct {
	ID         uuid.UUID
	Scenario   string
	Tag        string
	Workbook   string
	Status     string
	Objective  float64
	StartedAt  time.Time
	FinishedAt time.Time
	Error      string
	Entries    []Entry
}

// NewRun starts a run record with a fresh id.
func NewRun(scenario, tag, workbook string, started time.Time) Run {
	return Run{
		ID:        uuid.New(),
		Scenario:  scenario,
		Tag:       tag,
		Workbook:  workbook,
		Status:    StatusRunning,
		StartedAt: started.UTC(),
	}
}

// Entries flattens a summary in sheet order.
func Entries(s *results.Summary) []Entry {
	var out []Entry
	for _, t := range s.Tables() {
		for _, e := range t.Entries {
			out = append(out, Entry{Table: t.Name, Key: e.Key, Value: e.Value})
		}
	}
	return out
}

// Summary rebuilds the summary tables of a succeeded run.
func (r Run) Summary() *results.Summary {
	s := results.NewSummary(r.Tag)
	s.Objective = r.Objective
	for _, e := range r.Entries {
		if t, ok := s.Table(e.Table); ok {
			t.Add(e.Key, e.Value)
		}
	}
	return s
}

// Store persists runs. SaveRun inserts or replaces a run with its entries.
// ListRuns returns the newest runs first without their entries; an empty
// scenario lists every scenario.
type Store interface {
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id uuid.UUID) (Run, error)
	ListRuns(ctx context.Context, scenario string, limit int) ([]Run, error)
	Close() error
}

// Drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects the named backend and prepares its schema.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(dsn)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
}
