// Package pipeline runs scenarios end to end: workbook, energy system, LP,
// solve, summary, exports and the run archive.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"energy-expansion/internal/config"
	"energy-expansion/internal/data"
	"energy-expansion/internal/metrics"
	"energy-expansion/internal/optimize"
	"energy-expansion/internal/report"
	"energy-expansion/internal/results"
	"energy-expansion/internal/scenario"
	"energy-expansion/internal/solver"
	"energy-expansion/internal/store"

	"golang.org/x/exp/slog"
)

// ComparisonFileName is written by RunBatch when two or more scenarios
// succeed.
const ComparisonFileName = "results_comparison.xlsx"

// Runner executes scenarios. Store and Metrics are optional.
type Runner struct {
	Solver  solver.Solver
	Store   store.Store
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Output  report.Options

	now func() time.Time
}

func New(s solver.Solver, output report.Options, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		Solver: s,
		Output: output,
		Logger: logger.With("component", "pipeline"),
		now:    time.Now,
	}
}

// Outcome is what one successful scenario run produced.
type Outcome struct {
	// Run is the archived record, also when no store is configured.
	Run      store.Run
	Scenario config.Scenario
	Summary  *results.Summary
	Results  *results.Results
	Files    []string
	Columns  int
	Rows     int
	Duration time.Duration
}

// Prepared is a formulated scenario, ready to solve or to write as LP file.
type Prepared struct {
	Inputs    *data.Inputs
	Model     *optimize.Model
	Economics scenario.Economics
}

// Prepare loads the workbook, truncates it to the scenario hours and
// formulates the LP.
func Prepare(sc config.Scenario) (*Prepared, error) {
	in, err := data.LoadWorkbook(sc.Workbook)
	if err != nil {
		return nil, fmt.Errorf("load workbook: %w", err)
	}
	if sc.Hours > 0 {
		in.Truncate(sc.Hours)
	}
	return PrepareInputs(in)
}

// PrepareInputs builds and formulates already loaded inputs.
func PrepareInputs(in *data.Inputs) (*Prepared, error) {
	es, econ, err := scenario.Build(in)
	if err != nil {
		return nil, fmt.Errorf("build energy system: %w", err)
	}
	m, err := optimize.Formulate(es)
	if err != nil {
		return nil, err
	}
	return &Prepared{Inputs: in, Model: m, Economics: econ}, nil
}

// Run executes one scenario. Failures are archived as failed runs.
func (r *Runner) Run(ctx context.Context, sc config.Scenario) (*Outcome, error) {
	if r.Solver == nil {
		return nil, errors.New("pipeline: solver is nil")
	}
	tag := sc.Tag
	if tag == "" {
		tag = sc.Name
	}
	log := r.logger().With("scenario", sc.Name)
	started := r.clock()
	run := store.NewRun(sc.Name, tag, sc.Workbook, started)
	r.archive(ctx, log, run)

	out, err := r.execute(ctx, log, sc, tag)
	run.FinishedAt = r.clock().UTC()
	if err != nil {
		run.Status = store.StatusFailed
		run.Error = err.Error()
		r.archive(ctx, log, run)
		r.Metrics.ObserveRun(store.StatusFailed)
		log.Error("scenario failed", "error", err)
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	run.Status = store.StatusSucceeded
	run.Objective = out.Summary.Objective
	run.Entries = store.Entries(out.Summary)
	r.archive(ctx, log, run)
	r.Metrics.ObserveRun(store.StatusSucceeded)
	r.Metrics.ObserveObjective(sc.Name, out.Summary.Objective)

	out.Run = run
	out.Duration = run.FinishedAt.Sub(started)
	log.Info("scenario done",
		"objective", out.Summary.Objective,
		"files", len(out.Files),
		"duration", out.Duration.Round(time.Millisecond),
	)
	return out, nil
}

func (r *Runner) execute(ctx context.Context, log *slog.Logger, sc config.Scenario, tag string) (*Outcome, error) {
	log.Info("loading workbook", "path", sc.Workbook, "hours", sc.Hours)
	prep, err := Prepare(sc)
	if err != nil {
		return nil, err
	}
	cols, rows := prep.Model.Size()
	r.Metrics.ObserveModel(sc.Name, cols, rows)
	log.Info("model formulated", "columns", cols, "rows", rows, "timesteps", prep.Model.System.Steps())

	solveStart := r.clock()
	sol, err := r.Solver.Solve(ctx, prep.Model.Problem)
	r.Metrics.ObserveSolve(r.Solver.Name(), r.clock().Sub(solveStart))
	if err != nil {
		return nil, fmt.Errorf("solve with %s: %w", r.Solver.Name(), err)
	}
	res, err := prep.Model.Results(sol)
	if err != nil {
		return nil, err
	}
	summary, err := results.Summarize(tag, res, prep.Economics)
	if err != nil {
		return nil, err
	}

	files, err := report.Export(r.Output, summary, res)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return &Outcome{
		Scenario: sc,
		Summary:  summary,
		Results:  res,
		Files:    files,
		Columns:  cols,
		Rows:     rows,
	}, nil
}

// RunBatch runs scenarios one after another. A failing scenario does not
// stop the batch; the returned error joins every failure.
func (r *Runner) RunBatch(ctx context.Context, scenarios []config.Scenario) ([]*Outcome, error) {
	var (
		outcomes []*Outcome
		errs     []error
	)
	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		out, err := r.Run(ctx, sc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		outcomes = append(outcomes, out)
	}

	if len(outcomes) > 1 {
		summaries := make([]*results.Summary, len(outcomes))
		for i, o := range outcomes {
			summaries[i] = o.Summary
		}
		path := filepath.Join(r.Output.Dir, ComparisonFileName)
		if err := report.WriteComparisonXLSX(path, summaries); err != nil {
			errs = append(errs, fmt.Errorf("comparison: %w", err))
		} else {
			r.logger().Info("comparison written", "path", path, "scenarios", len(outcomes))
		}
	}
	return outcomes, errors.Join(errs...)
}

func (r *Runner) archive(ctx context.Context, log *slog.Logger, run store.Run) {
	if r.Store == nil {
		return
	}
	if err := r.Store.SaveRun(ctx, run); err != nil {
		log.Warn("archive run failed", "run", run.ID, "error", err)
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}
