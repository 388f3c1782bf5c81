package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"energy-expansion/internal/config"
	"energy-expansion/internal/data"
	"energy-expansion/internal/economics"
	"energy-expansion/internal/pipeline"
	"energy-expansion/internal/report"
	"energy-expansion/internal/solver"
	"energy-expansion/internal/store"

	"golang.org/x/exp/slog"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = cmdRun(os.Args[2:])
	case "batch":
		err = cmdBatch(os.Args[2:])
	case "lp":
		err = cmdLP(os.Args[2:])
	case "annuity":
		err = cmdAnnuity(os.Args[2:])
	case "template":
		err = cmdTemplate(os.Args[2:])
	case "runs":
		err = cmdRuns(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli run --config examples/config.yaml --scenario biomass_50 [--hours 24] [--solver simplex]")
	fmt.Println("  cli batch --config examples/config.yaml")
	fmt.Println("  cli lp --config examples/config.yaml --scenario biomass_50 --out results/biomass_50.lp")
	fmt.Println("  cli annuity --capex 1100000 --n 25 --wacc 0.07 [--fom 14000]")
	fmt.Println("  cli template --out data/sample.xlsx --hours 168")
	fmt.Println("  cli runs --config examples/config.yaml [--scenario biomass_50] [--limit 20]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - run/batch write results_overview_<tag>.xlsx and plots into output_dir")
	fmt.Println("  - the cbc solver needs the CBC binary on PATH")
	fmt.Println("  - simplex is dense and handles about a day of hourly steps; use cbc for longer horizons")
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// newRunner wires solver and archive from the config. Metrics are only
// exposed by the API server. The returned close func releases the archive.
func newRunner(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Runner, func(), error) {
	s, err := solver.New(cfg.SolverConfig(), logger)
	if err != nil {
		return nil, nil, err
	}
	r := pipeline.New(s, report.Options{
		Dir:   cfg.OutputDir,
		Plots: cfg.PlotsEnabled(),
		PDF:   cfg.PDF,
		CSV:   cfg.CSV,
	}, logger)

	closeFn := func() {}
	if cfg.Store.Driver != "" {
		st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open run store: %w", err)
		}
		r.Store = st
		closeFn = func() { _ = st.Close() }
	}
	return r, closeFn, nil
}

func loadConfig(path, solverName string) (*config.Config, error) {
	if path == "" {
		return nil, errors.New("--config is required")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if solverName != "" {
		cfg.Solver.Name = solverName
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	name := fs.String("scenario", "", "Scenario name from the config")
	hours := fs.Int("hours", 0, "Optional: limit to first N hours (0=config value)")
	solverName := fs.String("solver", "", "Optional: override solver.name (cbc|simplex)")
	verbose := fs.Bool("v", false, "Debug logging")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*cfgPath, *solverName)
	if err != nil {
		return err
	}
	sc, ok := cfg.Scenario(*name)
	if !ok {
		return fmt.Errorf("scenario %q not found in %s", *name, *cfgPath)
	}
	if *hours > 0 {
		sc.Hours = *hours
	}

	ctx, cancel := signalContext()
	defer cancel()
	runner, closeFn, err := newRunner(ctx, cfg, newLogger(*verbose))
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := runner.Run(ctx, sc)
	if err != nil {
		return err
	}
	printOutcome(out)
	return nil
}

func cmdBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	only := fs.String("scenarios", "", "Optional: comma-separated subset of scenario names")
	solverName := fs.String("solver", "", "Optional: override solver.name (cbc|simplex)")
	verbose := fs.Bool("v", false, "Debug logging")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*cfgPath, *solverName)
	if err != nil {
		return err
	}
	scenarios := cfg.Scenarios
	if names := splitNames(*only); len(names) > 0 {
		scenarios = scenarios[:0:0]
		for _, n := range names {
			sc, ok := cfg.Scenario(n)
			if !ok {
				return fmt.Errorf("scenario %q not found in %s", n, *cfgPath)
			}
			scenarios = append(scenarios, sc)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()
	runner, closeFn, err := newRunner(ctx, cfg, newLogger(*verbose))
	if err != nil {
		return err
	}
	defer closeFn()

	outcomes, err := runner.RunBatch(ctx, scenarios)
	for _, o := range outcomes {
		printOutcome(o)
	}
	fmt.Printf("%d of %d scenarios succeeded\n", len(outcomes), len(scenarios))
	return err
}

func cmdLP(args []string) error {
	fs := flag.NewFlagSet("lp", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	name := fs.String("scenario", "", "Scenario name from the config")
	hours := fs.Int("hours", 0, "Optional: limit to first N hours (0=config value)")
	outPath := fs.String("out", "", "Output LP path (default <output_dir>/<tag>.lp)")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*cfgPath, "")
	if err != nil {
		return err
	}
	sc, ok := cfg.Scenario(*name)
	if !ok {
		return fmt.Errorf("scenario %q not found in %s", *name, *cfgPath)
	}
	if *hours > 0 {
		sc.Hours = *hours
	}
	prep, err := pipeline.Prepare(sc)
	if err != nil {
		return err
	}

	path := *outPath
	if path == "" {
		path = filepath.Join(cfg.OutputDir, sc.Tag+".lp")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := prep.Model.Problem.WriteLP(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	cols, rows := prep.Model.Size()
	fmt.Printf("Wrote %s (%d columns, %d rows)\n", path, cols, rows)
	return nil
}

func cmdAnnuity(args []string) error {
	fs := flag.NewFlagSet("annuity", flag.ExitOnError)
	capex := fs.Float64("capex", 0, "Capital expenditure per unit")
	n := fs.Float64("n", 0, "Lifetime in years")
	wacc := fs.Float64("wacc", 0, "Weighted average cost of capital, e.g. 0.07")
	fom := fs.Float64("fom", 0, "Optional: fixed O&M per unit and year")
	u := fs.Float64("u", 0, "Optional: useful life in years (re-investment within n)")
	decrease := fs.Float64("cost-decrease", 0, "Optional: yearly cost decrease for re-investments")
	_ = fs.Parse(args)

	var (
		a   float64
		err error
	)
	if *u > 0 {
		a, err = economics.AnnuityWithReinvest(*capex, *n, *wacc, *u, *decrease)
	} else {
		a, err = economics.Annuity(*capex, *n, *wacc)
	}
	if err != nil {
		return err
	}
	fmt.Printf("annuity=%.4f\n", a)
	fmt.Printf("ep_costs=%.4f\n", economics.EPCosts(a, *fom))
	return nil
}

func cmdTemplate(args []string) error {
	fs := flag.NewFlagSet("template", flag.ExitOnError)
	outPath := fs.String("out", "data/sample.xlsx", "Output workbook path")
	hours := fs.Int("hours", 168, "Number of hourly timesteps")
	_ = fs.Parse(args)

	if *hours <= 0 {
		return errors.New("--hours must be > 0")
	}
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		return err
	}
	if err := data.WriteWorkbook(*outPath, data.SampleInputs(*hours)); err != nil {
		return err
	}
	fmt.Printf("Wrote %d hours to %s\n", *hours, *outPath)
	return nil
}

func cmdRuns(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	name := fs.String("scenario", "", "Optional: only runs of this scenario")
	limit := fs.Int("limit", 20, "Maximum number of runs")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*cfgPath, "")
	if err != nil {
		return err
	}
	if cfg.Store.Driver == "" {
		return errors.New("store.driver is not configured")
	}
	ctx, cancel := signalContext()
	defer cancel()
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, *name, *limit)
	if err != nil {
		return err
	}
	fmt.Printf("%-36s %-14s %-8s %-10s %-20s %-16s\n", "id", "scenario", "tag", "status", "started", "objective")
	for _, r := range runs {
		fmt.Printf(
			"%-36s %-14s %-8s %-10s %-20s %-16.2f\n",
			r.ID,
			r.Scenario,
			r.Tag,
			r.Status,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Objective,
		)
	}
	return nil
}

func printOutcome(o *pipeline.Outcome) {
	fmt.Printf("Scenario %s (tag %s): objective=%.2f columns=%d rows=%d in %s\n",
		o.Scenario.Name, o.Summary.Tag, o.Summary.Objective, o.Columns, o.Rows, o.Duration)
	if total, ok := o.Summary.InvCosts.Get("total"); ok {
		fmt.Printf("  investment costs: %.2f Mil$\n", total)
	}
	for _, f := range o.Files {
		fmt.Printf("  wrote %s\n", f)
	}
}

func splitNames(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
