package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"energy-expansion/internal/api"
	"energy-expansion/internal/config"
	"energy-expansion/internal/metrics"
	"energy-expansion/internal/pipeline"
	"energy-expansion/internal/report"
	"energy-expansion/internal/solver"
	"energy-expansion/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(logger); err != nil {
		logger.Error("api server stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// Get configuration from environment
	env := config.ServerFromEnv()
	if env.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Load(env.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", env.ConfigPath, err)
	}
	logger.Info("config loaded", "path", env.ConfigPath, "scenarios", len(cfg.Scenarios), "solver", cfg.Solver.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The API always archives runs; without a configured store it uses a
	// sqlite file next to the outputs.
	driver, dsn := cfg.Store.Driver, cfg.Store.DSN
	if driver == "" {
		driver, dsn = store.DriverSQLite, filepath.Join(cfg.OutputDir, "runs.db")
	}
	st, err := store.Open(ctx, driver, dsn)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer st.Close()

	s, err := solver.New(cfg.SolverConfig(), logger)
	if err != nil {
		return err
	}
	runner := pipeline.New(s, report.Options{
		Dir:   cfg.OutputDir,
		Plots: cfg.PlotsEnabled(),
		PDF:   cfg.PDF,
		CSV:   cfg.CSV,
	}, logger)
	runner.Store = st
	runner.Metrics = metrics.New(nil)

	if len(env.JWTSecret) == 0 {
		logger.Warn("API_JWT_SECRET not set, /api/v1 is unauthenticated")
	}
	router := api.NewRouter(api.Deps{
		Config:      cfg,
		Runner:      runner,
		Store:       st,
		JWTSecret:   []byte(env.JWTSecret),
		CORSOrigins: env.CORSOrigins,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + env.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting API server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
