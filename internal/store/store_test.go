package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"energy-expansion/internal/results"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleSummary() *results.Summary {
	s := results.NewSummary("50")
	s.Objective = 42
	s.Capacities.Add("wind_onshore_invest_MW", 120)
	s.Capacities.Add("pv_invest_MW", 80)
	s.InvCosts.Add("wind_onshore_mio", 7.5)
	s.InvCosts.Add("total", 7.5)
	return s
}

func TestSQLite_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	started := time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)
	run := NewRun("biomass_50", "50", "data/input_data.xlsx", started)
	require.NoError(t, s.SaveRun(ctx, run))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)
	assert.Empty(t, got.Entries)

	sum := sampleSummary()
	run.Status = StatusSucceeded
	run.Objective = sum.Objective
	run.FinishedAt = started.Add(time.Minute)
	run.Entries = Entries(sum)
	require.NoError(t, s.SaveRun(ctx, run))
	// saving twice replaces the entries
	require.NoError(t, s.SaveRun(ctx, run))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "biomass_50", got.Scenario)
	assert.Equal(t, StatusSucceeded, got.Status)
	assert.Equal(t, 42.0, got.Objective)
	assert.True(t, started.Equal(got.StartedAt))
	assert.True(t, run.FinishedAt.Equal(got.FinishedAt))
	assert.Equal(t, run.Entries, got.Entries)

	back := got.Summary()
	assert.Equal(t, "capacity_50", back.Capacities.Header)
	v, ok := back.Capacities.Get("pv_invest_MW")
	require.True(t, ok)
	assert.Equal(t, 80.0, v)
	v, ok = back.InvCosts.Get("total")
	require.True(t, ok)
	assert.Equal(t, 7.5, v)
}

func TestSQLite_GetMissing(t *testing.T) {
	s := openSQLite(t)
	_, err := s.GetRun(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_ListRuns(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"base", "biomass_50", "base"} {
		run := NewRun(name, name, "w.xlsx", base.Add(time.Duration(i)*time.Hour))
		run.Entries = Entries(sampleSummary())
		require.NoError(t, s.SaveRun(ctx, run))
	}

	all, err := s.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "base", all[0].Scenario)
	assert.True(t, all[0].StartedAt.After(all[1].StartedAt))
	assert.Empty(t, all[0].Entries)

	bases, err := s.ListRuns(ctx, "base", 1)
	require.NoError(t, err)
	require.Len(t, bases, 1)
	assert.True(t, base.Add(2*time.Hour).Equal(bases[0].StartedAt))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "nested", "a.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(ctx, "mongo", "")
	assert.Error(t, err)
}

func TestPostgres_NilDB(t *testing.T) {
	var p *Postgres
	ctx := context.Background()
	assert.Error(t, p.SaveRun(ctx, Run{}))
	_, err := p.GetRun(ctx, uuid.New())
	assert.Error(t, err)
	_, err = p.ListRuns(ctx, "", 0)
	assert.Error(t, err)
	assert.NoError(t, p.Close())
	assert.Error(t, NewPostgres(nil).Migrate(ctx))
}
