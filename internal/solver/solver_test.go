package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"energy-expansion/internal/lp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallProblem: min x + y  s.t.  x + y >= 3, x - y = 0.5, -x <= -1.2,
// x >= 1, 0 <= y <= 1.5. Optimum x = 1.75, y = 1.25.
func smallProblem(t *testing.T) *lp.Problem {
	t.Helper()
	p := lp.NewProblem("small")
	x, err := p.AddColumn("x", 1, math.Inf(1), 1)
	require.NoError(t, err)
	y, err := p.AddColumn("y", 0, 1.5, 1)
	require.NoError(t, err)
	k, err := p.AddColumn("k", 2, 2, 5)
	require.NoError(t, err)
	_, err = p.AddColumn("unused", 0, math.Inf(1), 0)
	require.NoError(t, err)
	require.NoError(t, p.AddRow("demand", lp.GE, 3, lp.Term{Col: x, Coef: 1}, lp.Term{Col: y, Coef: 1}))
	require.NoError(t, p.AddRow("link", lp.EQ, 0.5, lp.Term{Col: x, Coef: 1}, lp.Term{Col: y, Coef: -1}))
	require.NoError(t, p.AddRow("floor", lp.LE, -1.2, lp.Term{Col: x, Coef: -1}))
	require.NoError(t, p.AddRow("const", lp.LE, 4, lp.Term{Col: k, Coef: 2}))
	return p
}

func TestSimplex_Solve(t *testing.T) {
	s := NewSimplex(Config{}, nil)
	sol, err := s.Solve(context.Background(), smallProblem(t))
	require.NoError(t, err)
	assert.Equal(t, lp.StatusOptimal, sol.Status)
	assert.InDelta(t, 1.75, sol.Value(0), 1e-6)
	assert.InDelta(t, 1.25, sol.Value(1), 1e-6)
	assert.Equal(t, 2.0, sol.Value(2))
	assert.Equal(t, 0.0, sol.Value(3))
	assert.InDelta(t, 13.0, sol.Objective, 1e-6)
}

func TestSimplex_NotOptimal(t *testing.T) {
	t.Run("infeasible", func(t *testing.T) {
		p := lp.NewProblem("inf")
		x, _ := p.AddColumn("x", 0, 1, 1)
		require.NoError(t, p.AddRow("r", lp.GE, 2, lp.Term{Col: x, Coef: 1}))
		sol, err := NewSimplex(Config{}, nil).Solve(context.Background(), p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotOptimal))
		assert.Equal(t, lp.StatusInfeasible, sol.Status)
	})

	t.Run("infeasible constant row", func(t *testing.T) {
		p := lp.NewProblem("inf")
		x, _ := p.AddColumn("x", 1, 1, 0)
		require.NoError(t, p.AddRow("r", lp.EQ, 2, lp.Term{Col: x, Coef: 1}))
		sol, err := NewSimplex(Config{}, nil).Solve(context.Background(), p)
		assert.True(t, errors.Is(err, ErrNotOptimal))
		assert.Equal(t, lp.StatusInfeasible, sol.Status)
	})

	t.Run("unbounded", func(t *testing.T) {
		p := lp.NewProblem("unb")
		x, _ := p.AddColumn("x", 0, math.Inf(1), -1)
		require.NoError(t, p.AddRow("r", lp.GE, 1, lp.Term{Col: x, Coef: 1}))
		sol, err := NewSimplex(Config{}, nil).Solve(context.Background(), p)
		assert.True(t, errors.Is(err, ErrNotOptimal))
		assert.Equal(t, lp.StatusUnbounded, sol.Status)
	})
}

func TestSimplex_TooLarge(t *testing.T) {
	_, err := NewSimplex(Config{MaxCells: 4}, nil).Solve(context.Background(), smallProblem(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestSimplex_RedundantRows(t *testing.T) {
	// min x + 2y + z  s.t.  x + y = 2, 2x + 2y = 4, x + y + z = 3
	p := lp.NewProblem("redundant")
	x, _ := p.AddColumn("x", 0, math.Inf(1), 1)
	y, _ := p.AddColumn("y", 0, math.Inf(1), 2)
	z, _ := p.AddColumn("z", 0, math.Inf(1), 1)
	require.NoError(t, p.AddRow("a", lp.EQ, 2, lp.Term{Col: x, Coef: 1}, lp.Term{Col: y, Coef: 1}))
	require.NoError(t, p.AddRow("b", lp.EQ, 4, lp.Term{Col: x, Coef: 2}, lp.Term{Col: y, Coef: 2}))
	require.NoError(t, p.AddRow("c", lp.EQ, 3, lp.Term{Col: x, Coef: 1}, lp.Term{Col: y, Coef: 1}, lp.Term{Col: z, Coef: 1}))

	sol, err := NewSimplex(Config{}, nil).Solve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, lp.StatusOptimal, sol.Status)
	assert.InDelta(t, 2.0, sol.Value(x), 1e-6)
	assert.InDelta(t, 0.0, sol.Value(y), 1e-6)
	assert.InDelta(t, 1.0, sol.Value(z), 1e-6)
	assert.InDelta(t, 3.0, sol.Objective, 1e-6)
}

func TestSimplex_InconsistentRows(t *testing.T) {
	p := lp.NewProblem("inconsistent")
	x, _ := p.AddColumn("x", 0, math.Inf(1), 1)
	y, _ := p.AddColumn("y", 0, math.Inf(1), 1)
	require.NoError(t, p.AddRow("a", lp.EQ, 2, lp.Term{Col: x, Coef: 1}, lp.Term{Col: y, Coef: 1}))
	require.NoError(t, p.AddRow("b", lp.EQ, 5, lp.Term{Col: x, Coef: 2}, lp.Term{Col: y, Coef: 2}))

	sol, err := NewSimplex(Config{}, nil).Solve(context.Background(), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotOptimal))
	assert.Equal(t, lp.StatusInfeasible, sol.Status)
}

func TestPresolve(t *testing.T) {
	t.Run("folds single-column rows", func(t *testing.T) {
		p := lp.NewProblem("fold")
		x, _ := p.AddColumn("x", 0, math.Inf(1), 0)
		y, _ := p.AddColumn("y", 0, math.Inf(1), 0)
		z, _ := p.AddColumn("z", 0, math.Inf(1), 0)
		require.NoError(t, p.AddRow("cap", lp.LE, 4, lp.Term{Col: x, Coef: 1}, lp.Term{Col: y, Coef: 1}))
		require.NoError(t, p.AddRow("fix", lp.EQ, 2, lp.Term{Col: x, Coef: 2}))
		require.NoError(t, p.AddRow("sum", lp.GE, 1, lp.Term{Col: x, Coef: 1}, lp.Term{Col: y, Coef: 1}, lp.Term{Col: z, Coef: 1}))
		require.NoError(t, p.AddRow("tiny", lp.GE, 0, lp.Term{Col: z, Coef: 1e-16}, lp.Term{Col: y, Coef: 1}))

		red := presolve(p)
		require.False(t, red.infeasible)
		assert.Equal(t, 1.0, red.lower[x])
		assert.True(t, red.fixed(x))
		assert.Equal(t, 3.0, red.upper[y])
		require.Len(t, red.rows, 1)
		assert.Equal(t, "sum", p.Rows[red.rows[0].orig].Name)
		assert.Equal(t, 0.0, red.rows[0].rhs)
		assert.Equal(t, []lp.Term{{Col: y, Coef: 1}, {Col: z, Coef: 1}}, red.rows[0].terms)
	})

	t.Run("crossing bounds", func(t *testing.T) {
		p := lp.NewProblem("cross")
		x, _ := p.AddColumn("x", 0, 1, 0)
		require.NoError(t, p.AddRow("floor", lp.LE, -2, lp.Term{Col: x, Coef: -1}))
		assert.True(t, presolve(p).infeasible)
	})

	t.Run("dependent equality rows", func(t *testing.T) {
		p := lp.NewProblem("dep")
		x, _ := p.AddColumn("x", 0, math.Inf(1), 0)
		y, _ := p.AddColumn("y", 0, math.Inf(1), 0)
		z, _ := p.AddColumn("z", 0, math.Inf(1), 0)
		require.NoError(t, p.AddRow("a", lp.EQ, 1, lp.Term{Col: x, Coef: 1}, lp.Term{Col: y, Coef: 1}))
		require.NoError(t, p.AddRow("b", lp.EQ, 1, lp.Term{Col: y, Coef: 1}, lp.Term{Col: z, Coef: -1}))
		require.NoError(t, p.AddRow("c", lp.EQ, 2, lp.Term{Col: x, Coef: 1}, lp.Term{Col: y, Coef: 2}, lp.Term{Col: z, Coef: -1}))
		require.NoError(t, p.AddRow("d", lp.LE, 5, lp.Term{Col: x, Coef: 1}, lp.Term{Col: z, Coef: 1}))

		red := presolve(p)
		red.dropDependent()
		assert.Equal(t, []int{2}, red.dropped)
		assert.Len(t, red.rows, 3)
	})
}

func TestStandardForm_IdentityBasis(t *testing.T) {
	std, err := standardForm(smallProblem(t), defaultMaxCells)
	require.NoError(t, err)
	require.False(t, std.infeasible)
	rows, cols := std.a.Dims()
	require.Len(t, std.basis, rows)
	assert.Len(t, std.c, cols)
	for i, k := range std.basis {
		assert.GreaterOrEqual(t, std.b[i], 0.0)
		for r := 0; r < rows; r++ {
			want := 0.0
			if r == i {
				want = 1
			}
			assert.Equal(t, want, std.a.At(r, k), "basis column %d row %d", k, r)
		}
	}
	// k is fixed and unused has no rows: neither reaches the matrix
	assert.Equal(t, -1, std.stdCol[2])
	assert.Equal(t, -1, std.stdCol[3])
	assert.Equal(t, 2.0, std.shift[2])
}

func TestParseCBCSolution(t *testing.T) {
	p := smallProblem(t)
	in := strings.Join([]string{
		"Optimal - objective value 13.00000000",
		"      0 x                    1.75                       0",
		"      1 y                    1.25                       0",
		"**    2 k                       2                       0",
	}, "\n")
	sol, err := ParseCBCSolution(strings.NewReader(in), p)
	require.NoError(t, err)
	assert.Equal(t, lp.StatusOptimal, sol.Status)
	assert.Equal(t, 13.0, sol.Objective)
	assert.Equal(t, []float64{1.75, 1.25, 2, 0}, sol.Values)

	for line, want := range map[string]lp.Status{
		"Infeasible - objective value 0.00000000":       lp.StatusInfeasible,
		"Integer infeasible - objective value 0":        lp.StatusInfeasible,
		"Unbounded - objective value 0":                 lp.StatusUnbounded,
		"Stopped on time - objective value 42.5":        lp.StatusTimeLimit,
		"Stopped on iterations - objective value 1.000": lp.StatusUnknown,
	} {
		sol, err := ParseCBCSolution(strings.NewReader(line), p)
		require.NoError(t, err, line)
		assert.Equal(t, want, sol.Status, line)
	}

	_, err = ParseCBCSolution(strings.NewReader("Optimal - objective value 1\n 0 nope 1 0"), p)
	assert.Error(t, err)
	_, err = ParseCBCSolution(strings.NewReader(""), p)
	assert.Error(t, err)
}

func TestCBC_Unavailable(t *testing.T) {
	c := NewCBC(Config{Binary: "definitely-not-an-installed-cbc"}, nil)
	_, err := c.Solve(context.Background(), smallProblem(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSolverUnavailable))
}

func TestCBC_FakeBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in")
	}
	dir := t.TempDir()
	copyPath := filepath.Join(dir, "seen.lp")
	script := fmt.Sprintf(`#!/bin/sh
cp "$1" %q
prev=""
for a in "$@"; do
  if [ "$prev" = "-solu" ]; then sol="$a"; fi
  prev="$a"
done
cat > "$sol" <<'EOS'
Optimal - objective value 13
      0 x   1.75   0
      1 y   1.25   0
      2 k   2      0
EOS
`, copyPath)
	bin := filepath.Join(dir, "cbc")
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	c := NewCBC(Config{Binary: bin, WorkDir: dir}, nil)
	sol, err := c.Solve(context.Background(), smallProblem(t))
	require.NoError(t, err)
	assert.InDelta(t, 1.75, sol.Value(0), 1e-9)
	assert.Equal(t, 13.0, sol.Objective)

	seen, err := os.ReadFile(copyPath)
	require.NoError(t, err)
	assert.Contains(t, string(seen), "demand: +1 x +1 y >= 3")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "cbc-"), "work dir is removed")
	}
}

func TestNew(t *testing.T) {
	s, err := New(Config{Name: "simplex"}, nil)
	require.NoError(t, err)
	assert.Equal(t, NameSimplex, s.Name())

	s, err = New(Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, NameCBC, s.Name())

	_, err = New(Config{Name: "gurobi"}, nil)
	assert.Error(t, err)
}
