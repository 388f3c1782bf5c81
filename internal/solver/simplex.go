package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"energy-expansion/internal/lp"

	"golang.org/x/exp/slog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	gonumlp "gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	defaultTolerance = 1e-7
	// Dense standard form: rows x columns of the constraint matrix. Every
	// simplex iteration factorises a rows x rows basis, so this keeps the
	// regional model to about a day of hourly steps.
	defaultMaxCells = 2_000_000
	// Relative tolerance when checking the solution against the rows.
	verifyTol = 1e-6
)

// Artificial column costs relative to the largest objective coefficient.
// The larger one is tried when an artificial column stays positive.
var penalties = []float64{1e3, 1e6}

// Simplex solves in process with gonum's dense simplex. It is meant for
// short horizons and tests; large models go to CBC.
type Simplex struct {
	cfg    Config
	logger *slog.Logger
}

func NewSimplex(cfg Config, logger *slog.Logger) *Simplex {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = defaultTolerance
	}
	if cfg.MaxCells <= 0 {
		cfg.MaxCells = defaultMaxCells
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Simplex{cfg: cfg, logger: logger}
}

func (s *Simplex) Name() string { return NameSimplex }

func (s *Simplex) Solve(ctx context.Context, p *lp.Problem) (*lp.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	std, err := standardForm(p, s.cfg.MaxCells)
	if err != nil {
		return nil, err
	}
	sol := &lp.Solution{Values: make([]float64, len(p.Columns))}
	if std.unbounded {
		sol.Status = lp.StatusUnbounded
		return sol, notOptimal(sol)
	}
	if std.infeasible {
		sol.Status = lp.StatusInfeasible
		return sol, notOptimal(sol)
	}
	s.logger.Debug("presolve finished",
		"rows", len(p.Rows),
		"std_rows", len(std.b),
		"std_columns", len(std.c),
		"dependent_rows", len(std.dropped),
	)

	start := time.Now()
	y := make([]float64, len(std.c))
	if len(std.b) > 0 {
		y, err = s.solveStd(std)
	}
	switch {
	case errors.Is(err, gonumlp.ErrInfeasible):
		sol.Status = lp.StatusInfeasible
		return sol, notOptimal(sol)
	case errors.Is(err, gonumlp.ErrUnbounded):
		sol.Status = lp.StatusUnbounded
		return sol, notOptimal(sol)
	case err != nil:
		return nil, fmt.Errorf("simplex: %w", err)
	}

	for j := range p.Columns {
		v := std.shift[j]
		if k := std.stdCol[j]; k >= 0 {
			v += math.Max(0, y[k])
		}
		sol.Values[j] = v
	}
	if row, viol, ok := violated(p, sol.Values); ok {
		// A dependent row that was dropped does not hold: the rows contradict.
		for _, i := range std.dropped {
			if i == row {
				sol.Status = lp.StatusInfeasible
				return sol, notOptimal(sol)
			}
		}
		return nil, fmt.Errorf("simplex: solution violates row %q by %g", p.Rows[row].Name, viol)
	}
	sol.Status = lp.StatusOptimal
	sol.Objective = p.Objective(sol.Values)
	s.logger.Info("simplex finished",
		"objective", sol.Objective,
		"std_rows", len(std.b),
		"std_columns", len(std.c),
		"duration", time.Since(start),
	)
	return sol, nil
}

// solveStd runs gonum's simplex from the identity basis of slack and
// artificial columns. Artificial columns carry a large cost; one that stays
// positive at the optimum makes the problem infeasible once the largest
// penalty has been tried.
func (s *Simplex) solveStd(std *stdForm) ([]float64, error) {
	scale := 1.0
	for _, v := range std.c[:std.artificial] {
		scale = math.Max(scale, math.Abs(v))
	}
	if std.artificial == len(std.c) {
		return runSimplex(std, s.cfg.Tolerance)
	}
	feasTol := s.cfg.Tolerance * (1 + floats.Max(std.b))
	for _, penalty := range penalties {
		for k := std.artificial; k < len(std.c); k++ {
			std.c[k] = penalty * scale
		}
		y, err := runSimplex(std, s.cfg.Tolerance)
		if err != nil {
			return nil, err
		}
		if floats.Sum(y[std.artificial:]) <= feasTol {
			return y, nil
		}
		s.logger.Debug("artificial columns positive", "penalty", penalty)
	}
	return nil, gonumlp.ErrInfeasible
}

// runSimplex turns gonum's shape panics into errors.
func runSimplex(std *stdForm, tol float64) (y []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gonum simplex: %v", r)
		}
	}()
	_, y, err = gonumlp.Simplex(std.c, std.a, std.b, tol, std.basis)
	return y, err
}

type stdForm struct {
	c []float64
	a *mat.Dense
	b []float64
	// basis holds the unit column of each row: its slack or an artificial.
	basis []int
	// artificial is the first artificial column; they run to len(c).
	artificial int

	// stdCol maps a problem column to its standard column, -1 when the
	// column is held at shift.
	stdCol []int
	shift  []float64
	// dropped are problem rows removed as linearly dependent.
	dropped []int

	infeasible bool
	unbounded  bool
}

// standardForm presolves p, shifts every remaining column to
// y = x - lower >= 0 and adds slacks:
//
//	min c'y  s.t.  A y = b, y >= 0, b >= 0
//
// Rows whose slack cannot start in the basis get an artificial column, so
// the initial basis is the identity. Columns no row references sit at the
// bound their cost prefers (or make the problem unbounded).
func standardForm(p *lp.Problem, maxCells int) (*stdForm, error) {
	for _, c := range p.Columns {
		if math.IsInf(c.Lower, 0) {
			return nil, fmt.Errorf("simplex: column %q needs a finite lower bound", c.Name)
		}
	}
	out := &stdForm{
		stdCol: make([]int, len(p.Columns)),
		shift:  make([]float64, len(p.Columns)),
	}
	red := presolve(p)
	if red.infeasible {
		out.infeasible = true
		return out, nil
	}
	red.dropDependent()
	out.dropped = red.dropped

	used := make([]bool, len(p.Columns))
	for _, r := range red.rows {
		for _, t := range r.terms {
			used[t.Col] = true
		}
	}
	n := 0
	var upper []int
	for j, c := range p.Columns {
		out.stdCol[j] = -1
		lo, up := red.lower[j], red.upper[j]
		out.shift[j] = lo
		switch {
		case lo == up:
		case !used[j]:
			if c.Cost < 0 {
				if math.IsInf(up, 1) {
					out.unbounded = true
					return out, nil
				}
				out.shift[j] = up
			}
		default:
			out.stdCol[j] = n
			n++
			if !math.IsInf(up, 1) {
				upper = append(upper, j)
			}
		}
	}

	type stdRow struct {
		terms []lp.Term
		rhs   float64
		slack float64
	}
	rows := make([]stdRow, 0, len(red.rows)+len(upper))
	for _, r := range red.rows {
		rhs := r.rhs
		terms := make([]lp.Term, 0, len(r.terms))
		for _, t := range r.terms {
			rhs -= t.Coef * out.shift[t.Col]
			terms = append(terms, lp.Term{Col: out.stdCol[t.Col], Coef: t.Coef})
		}
		slack := 0.0
		switch r.sense {
		case lp.LE:
			slack = 1
		case lp.GE:
			slack = -1
		}
		rows = append(rows, stdRow{terms: terms, rhs: rhs, slack: slack})
	}
	for _, j := range upper {
		rows = append(rows, stdRow{
			terms: []lp.Term{{Col: out.stdCol[j], Coef: 1}},
			rhs:   red.upper[j] - red.lower[j],
			slack: 1,
		})
	}

	signs := make([]float64, len(rows))
	slacks, artificials := 0, 0
	for i, r := range rows {
		signs[i] = 1
		if r.rhs < 0 || (r.rhs == 0 && r.slack < 0) {
			signs[i] = -1
		}
		if r.slack != 0 {
			slacks++
		}
		if signs[i]*r.slack != 1 {
			artificials++
		}
	}
	cols := n + slacks + artificials
	if len(rows)*cols > maxCells {
		return nil, fmt.Errorf("%w: %d x %d exceeds %d cells", ErrTooLarge, len(rows), cols, maxCells)
	}

	out.c = make([]float64, cols)
	for j, c := range p.Columns {
		if k := out.stdCol[j]; k >= 0 {
			out.c[k] = c.Cost
		}
	}
	out.artificial = n + slacks
	out.b = make([]float64, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	out.a = mat.NewDense(len(rows), cols, nil)
	out.basis = make([]int, len(rows))
	nextSlack, nextArtificial := n, n+slacks
	for i, r := range rows {
		sign := signs[i]
		for _, t := range r.terms {
			out.a.Set(i, t.Col, out.a.At(i, t.Col)+sign*t.Coef)
		}
		if r.slack != 0 {
			out.a.Set(i, nextSlack, sign*r.slack)
			if sign*r.slack == 1 {
				out.basis[i] = nextSlack
			}
			nextSlack++
		}
		if sign*r.slack != 1 {
			out.a.Set(i, nextArtificial, 1)
			out.basis[i] = nextArtificial
			nextArtificial++
		}
		out.b[i] = sign * r.rhs
	}
	return out, nil
}

// violated returns the row of p that x violates most, relative to the
// magnitude of its terms.
func violated(p *lp.Problem, x []float64) (row int, viol float64, ok bool) {
	worst := 0.0
	for i, r := range p.Rows {
		lhs, mag := 0.0, math.Abs(r.RHS)
		for _, t := range r.Terms {
			v := t.Coef * x[t.Col]
			lhs += v
			mag += math.Abs(v)
		}
		var d float64
		switch r.Sense {
		case lp.LE:
			d = lhs - r.RHS
		case lp.GE:
			d = r.RHS - lhs
		default:
			d = math.Abs(lhs - r.RHS)
		}
		if d > verifyTol*(1+mag) && d/(1+mag) > worst {
			worst, row, viol, ok = d/(1+mag), i, d, true
		}
	}
	return row, viol, ok
}
