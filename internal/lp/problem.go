// Package lp is a solver-neutral linear program: named columns with bounds
// and objective coefficients, named sparse rows, and the solution a solver
// reports back.
package lp

import (
	"fmt"
	"math"
)

type Sense int

const (
	LE Sense = iota
	EQ
	GE
)

func (s Sense) String() string {
	switch s {
	case LE:
		return "<="
	case GE:
		return ">="
	default:
		return "="
	}
}

// Column is a decision variable. Upper may be +Inf.
type Column struct {
	Name  string
	Lower float64
	Upper float64
	Cost  float64
}

type Term struct {
	Col  int
	Coef float64
}

// Row is a linear constraint sum(Terms) <Sense> RHS.
type Row struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Problem is a minimisation problem.
type Problem struct {
	Name    string
	Columns []Column
	Rows    []Row

	colIndex map[string]int
}

func NewProblem(name string) *Problem {
	return &Problem{Name: name, colIndex: map[string]int{}}
}

// AddColumn registers a variable and returns its index. Names must be unique.
func (p *Problem) AddColumn(name string, lower, upper, cost float64) (int, error) {
	if _, dup := p.colIndex[name]; dup {
		return 0, fmt.Errorf("lp: duplicate column %q", name)
	}
	if math.IsNaN(lower) || math.IsNaN(upper) || math.IsNaN(cost) {
		return 0, fmt.Errorf("lp: column %q has NaN bound or cost", name)
	}
	if upper < lower {
		return 0, fmt.Errorf("lp: column %q has upper %v < lower %v", name, upper, lower)
	}
	p.Columns = append(p.Columns, Column{Name: name, Lower: lower, Upper: upper, Cost: cost})
	idx := len(p.Columns) - 1
	p.colIndex[name] = idx
	return idx, nil
}

// AddRow appends a constraint. Terms on the same column are merged and zero
// coefficients dropped.
func (p *Problem) AddRow(name string, sense Sense, rhs float64, terms ...Term) error {
	merged := make([]Term, 0, len(terms))
	pos := map[int]int{}
	for _, t := range terms {
		if t.Col < 0 || t.Col >= len(p.Columns) {
			return fmt.Errorf("lp: row %q references unknown column %d", name, t.Col)
		}
		if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
			return fmt.Errorf("lp: row %q has a non-finite coefficient", name)
		}
		if i, ok := pos[t.Col]; ok {
			merged[i].Coef += t.Coef
			continue
		}
		pos[t.Col] = len(merged)
		merged = append(merged, t)
	}
	out := merged[:0]
	for _, t := range merged {
		if t.Coef != 0 {
			out = append(out, t)
		}
	}
	if math.IsNaN(rhs) || math.IsInf(rhs, 0) {
		return fmt.Errorf("lp: row %q has a non-finite rhs", name)
	}
	p.Rows = append(p.Rows, Row{Name: name, Terms: out, Sense: sense, RHS: rhs})
	return nil
}

// Column returns the index of a named column.
func (p *Problem) Column(name string) (int, bool) {
	i, ok := p.colIndex[name]
	return i, ok
}

// Objective evaluates the objective at x.
func (p *Problem) Objective(x []float64) float64 {
	var obj float64
	for i, c := range p.Columns {
		if i < len(x) {
			obj += c.Cost * x[i]
		}
	}
	return obj
}

// Status is the outcome reported by a solver.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
	StatusTimeLimit  Status = "time_limit"
	StatusUnknown    Status = "unknown"
)

// Solution holds primal values indexed like Problem.Columns.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
}

func (s *Solution) Value(col int) float64 {
	if s == nil || col < 0 || col >= len(s.Values) {
		return 0
	}
	return s.Values[col]
}
