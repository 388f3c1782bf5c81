package solver

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"energy-expansion/internal/lp"

	"golang.org/x/exp/slog"
)

// CBC writes the problem as an LP file and runs the external cbc binary.
type CBC struct {
	cfg    Config
	logger *slog.Logger
}

func NewCBC(cfg Config, logger *slog.Logger) *CBC {
	if cfg.Binary == "" {
		cfg.Binary = "cbc"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CBC{cfg: cfg, logger: logger}
}

func (c *CBC) Name() string { return NameCBC }

func (c *CBC) Solve(ctx context.Context, p *lp.Problem) (*lp.Solution, error) {
	bin, err := exec.LookPath(c.cfg.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSolverUnavailable, c.cfg.Binary, err)
	}

	dir, err := os.MkdirTemp(c.cfg.WorkDir, "cbc-")
	if err != nil {
		return nil, fmt.Errorf("cbc work dir: %w", err)
	}
	if c.cfg.KeepFiles {
		c.logger.Info("keeping solver files", "dir", dir)
	} else {
		defer os.RemoveAll(dir)
	}

	modelPath := filepath.Join(dir, "model.lp")
	solPath := filepath.Join(dir, "solution.txt")
	if err := writeModel(modelPath, p); err != nil {
		return nil, err
	}

	args := []string{modelPath}
	if c.cfg.TimeLimit > 0 {
		args = append(args, "-sec", strconv.Itoa(int(c.cfg.TimeLimit.Round(time.Second)/time.Second)))
	}
	args = append(args, "-solve", "-solu", solPath)

	c.logger.Debug("running cbc", "binary", bin, "columns", len(p.Columns), "rows", len(p.Rows))
	start := time.Now()
	cmd := exec.CommandContext(ctx, bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	runErr := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("cbc: %w", ctx.Err())
	}

	f, err := os.Open(solPath)
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("cbc failed: %v: %s", runErr, tail(out.String(), 400))
		}
		return nil, fmt.Errorf("cbc produced no solution file: %w", err)
	}
	defer f.Close()

	sol, err := ParseCBCSolution(f, p)
	if err != nil {
		return nil, err
	}
	c.logger.Info("cbc finished", "status", sol.Status, "objective", sol.Objective, "duration", time.Since(start))
	if sol.Status != lp.StatusOptimal {
		return sol, notOptimal(sol)
	}
	return sol, nil
}

func writeModel(path string, p *lp.Problem) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write lp file: %w", err)
	}
	if err := p.WriteLP(f); err != nil {
		f.Close()
		return fmt.Errorf("write lp file: %w", err)
	}
	return f.Close()
}

// ParseCBCSolution reads the file cbc writes with -solu. The first line
// carries the status and objective, every further line is
// "index name value reduced_cost", optionally prefixed with "**".
func ParseCBCSolution(r io.Reader, p *lp.Problem) (*lp.Solution, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read cbc solution: %w", err)
		}
		return nil, errors.New("cbc solution is empty")
	}
	status, obj := parseStatusLine(sc.Text())
	sol := &lp.Solution{Status: status, Objective: obj, Values: make([]float64, len(p.Columns))}

	byName := make(map[string]int, len(p.Columns))
	for i, c := range p.Columns {
		byName[lp.SanitizeName(c.Name)] = i
	}
	line := 1
	for sc.Scan() {
		line++
		fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(sc.Text()), "**"))
		if len(fields) < 3 {
			continue
		}
		idx, ok := byName[fields[1]]
		if !ok {
			return nil, fmt.Errorf("cbc solution line %d: unknown column %q", line, fields[1])
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("cbc solution line %d: %w", line, err)
		}
		sol.Values[idx] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cbc solution: %w", err)
	}
	return sol, nil
}

func parseStatusLine(s string) (lp.Status, float64) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	status := lp.StatusUnknown
	switch {
	case strings.HasPrefix(lower, "optimal"):
		status = lp.StatusOptimal
	case strings.Contains(lower, "infeasible"):
		status = lp.StatusInfeasible
	case strings.Contains(lower, "unbounded"):
		status = lp.StatusUnbounded
	case strings.HasPrefix(lower, "stopped on time"):
		status = lp.StatusTimeLimit
	}
	var obj float64
	if i := strings.LastIndex(lower, "objective value"); i >= 0 {
		fields := strings.Fields(s[i+len("objective value"):])
		if len(fields) > 0 {
			obj, _ = strconv.ParseFloat(fields[0], 64)
		}
	}
	return status, obj
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
