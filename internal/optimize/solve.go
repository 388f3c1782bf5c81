package optimize

import (
	"context"
	"errors"
	"fmt"

	"energy-expansion/internal/lp"
	"energy-expansion/internal/model"
	"energy-expansion/internal/results"
	"energy-expansion/internal/solver"
)

// Results maps a solution onto flows and storages. Invest values are the
// newly built capacity, without the existing part.
func (m *Model) Results(sol *lp.Solution) (*results.Results, error) {
	if sol == nil {
		return nil, errors.New("results: nil solution")
	}
	if len(sol.Values) != len(m.Problem.Columns) {
		return nil, fmt.Errorf("results: solution has %d values, model has %d columns", len(sol.Values), len(m.Problem.Columns))
	}
	r := results.New(m.System.Timeindex)
	r.Objective = sol.Objective
	for _, f := range m.System.Flows() {
		fr := results.FlowResult{Sequence: values(sol, m.flowCols[f])}
		if inv, ok := m.flowInvest[f]; ok {
			v := sol.Value(inv)
			fr.Invest = &v
		}
		r.AddFlow(results.FlowKey{From: f.From, To: f.To}, fr)
	}
	for _, s := range m.System.Storages() {
		sr := results.StorageResult{Content: values(sol, m.storageContent[s.Name])}
		if inv, ok := m.storageInvest[s.Name]; ok {
			sr.Invest = sol.Value(inv)
		}
		r.Storages[s.Name] = sr
	}
	return r, nil
}

func values(sol *lp.Solution, cols []int) []float64 {
	out := make([]float64, len(cols))
	for i, c := range cols {
		out[i] = sol.Value(c)
	}
	return out
}

// Size reports the LP dimensions.
func (m *Model) Size() (columns, rows int) {
	return len(m.Problem.Columns), len(m.Problem.Rows)
}

// Solve formulates, solves and extracts in one call.
func Solve(ctx context.Context, es *model.EnergySystem, s solver.Solver) (*results.Results, error) {
	m, err := Formulate(es)
	if err != nil {
		return nil, err
	}
	sol, err := s.Solve(ctx, m.Problem)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	return m.Results(sol)
}
