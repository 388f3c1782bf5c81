// Package solver runs an lp.Problem through a backend: the external CBC
// binary, or gonum's simplex for small models.
package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"energy-expansion/internal/lp"

	"golang.org/x/exp/slog"
)

var (
	// ErrSolverUnavailable means the backend cannot run at all (binary missing).
	ErrSolverUnavailable = errors.New("solver unavailable")
	// ErrNotOptimal means the backend finished without an optimal solution.
	ErrNotOptimal = errors.New("solution not optimal")
	// ErrTooLarge means the problem exceeds what the backend accepts.
	ErrTooLarge = errors.New("problem too large for backend")
)

// Solver solves a problem. A non-optimal outcome returns the partial
// solution (status set) together with an error wrapping ErrNotOptimal.
type Solver interface {
	Name() string
	Solve(ctx context.Context, p *lp.Problem) (*lp.Solution, error)
}

// Config selects and tunes a backend.
type Config struct {
	Name      string
	Binary    string
	TimeLimit time.Duration
	KeepFiles bool
	WorkDir   string
	Tolerance float64
	MaxCells  int
}

const (
	NameCBC     = "cbc"
	NameSimplex = "simplex"
)

// New builds the backend named in cfg. An empty name selects CBC.
func New(cfg Config, logger *slog.Logger) (Solver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "solver")
	switch cfg.Name {
	case "", NameCBC:
		return NewCBC(cfg, logger), nil
	case NameSimplex:
		return NewSimplex(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported solver: %q", cfg.Name)
	}
}

func notOptimal(sol *lp.Solution) error {
	return fmt.Errorf("%w: status %s", ErrNotOptimal, sol.Status)
}
