// Package optimize turns an energy-system graph into a linear program and
// maps the solver's answer back onto flows and storages.
package optimize

import (
	"fmt"
	"math"

	"energy-expansion/internal/lp"
	"energy-expansion/internal/model"
)

// Model is a formulated energy system: the LP plus the column bookkeeping
// needed to read a solution back.
type Model struct {
	System  *model.EnergySystem
	Problem *lp.Problem

	flowCols       map[*model.Flow][]int
	flowInvest     map[*model.Flow]int
	storageContent map[string][]int
	storageInvest  map[string]int
	storageInit    map[string]int

	// per timestep inflows/outflows of each bus
	busIn  map[string][]*model.Flow
	busOut map[string][]*model.Flow
}

// Formulate validates the system and builds the LP:
//
//   - bus balance: sum(inflows) == sum(outflows) per timestep
//   - fixed flows: flow == fix * capacity
//   - bounded flows: flow <= max * capacity, sum(flow) <= summed_max * capacity
//   - converters: flow_in * factor[out] == flow_out * factor[in]
//   - storages: content balance with hourly loss, content <= capacity,
//     initial/balanced content, invest relations to charge/discharge power
//
// capacity is the nominal value, or invest + existing for investment flows.
// The objective sums variable costs times flow and ep costs times invest.
func Formulate(es *model.EnergySystem) (*Model, error) {
	if err := es.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		System:         es,
		Problem:        lp.NewProblem("energy_system"),
		flowCols:       map[*model.Flow][]int{},
		flowInvest:     map[*model.Flow]int{},
		storageContent: map[string][]int{},
		storageInvest:  map[string]int{},
		storageInit:    map[string]int{},
		busIn:          map[string][]*model.Flow{},
		busOut:         map[string][]*model.Flow{},
	}
	for _, b := range es.Buses() {
		m.busIn[b.Name] = nil
		m.busOut[b.Name] = nil
	}

	steps := []func() error{m.addFlows, m.addBusBalances, m.addConverters, m.addStorages}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("formulate: %w", err)
		}
	}
	return m, nil
}

func (m *Model) steps() int { return m.System.Steps() }

func (m *Model) addFlows() error {
	p := m.Problem
	for _, f := range m.System.Flows() {
		if _, ok := m.busOut[f.From]; ok {
			m.busOut[f.From] = append(m.busOut[f.From], f)
		}
		if _, ok := m.busIn[f.To]; ok {
			m.busIn[f.To] = append(m.busIn[f.To], f)
		}

		inv := -1
		if f.Investment != nil {
			upper := math.Inf(1)
			if f.Investment.Maximum != nil {
				upper = *f.Investment.Maximum
			}
			var err error
			inv, err = p.AddColumn(fmt.Sprintf("invest(%s,%s)", f.From, f.To), f.Investment.Minimum, upper, f.Investment.EPCosts)
			if err != nil {
				return err
			}
			m.flowInvest[f] = inv
		}

		cols := make([]int, m.steps())
		for t := range cols {
			lower, upper := 0.0, math.Inf(1)
			if f.NominalValue != nil {
				if f.IsFixed() {
					lower = f.Fix[t] * *f.NominalValue
					upper = lower
				} else {
					upper = maxAt(f, t) * *f.NominalValue
				}
			}
			c, err := p.AddColumn(fmt.Sprintf("flow(%s,%s,%d)", f.From, f.To, t), lower, upper, f.VariableCosts)
			if err != nil {
				return err
			}
			cols[t] = c

			if inv < 0 {
				continue
			}
			existing := f.Investment.Existing
			if f.IsFixed() {
				err = p.AddRow(fmt.Sprintf("fixed(%s,%s,%d)", f.From, f.To, t), lp.EQ, f.Fix[t]*existing,
					lp.Term{Col: c, Coef: 1}, lp.Term{Col: inv, Coef: -f.Fix[t]})
			} else {
				mx := maxAt(f, t)
				err = p.AddRow(fmt.Sprintf("capacity(%s,%s,%d)", f.From, f.To, t), lp.LE, mx*existing,
					lp.Term{Col: c, Coef: 1}, lp.Term{Col: inv, Coef: -mx})
			}
			if err != nil {
				return err
			}
		}
		m.flowCols[f] = cols

		if f.SummedMax != nil {
			terms := make([]lp.Term, 0, len(cols)+1)
			for _, c := range cols {
				terms = append(terms, lp.Term{Col: c, Coef: 1})
			}
			sm := *f.SummedMax
			rhs := 0.0
			if inv >= 0 {
				terms = append(terms, lp.Term{Col: inv, Coef: -sm})
				rhs = sm * f.Investment.Existing
			} else {
				rhs = sm * *f.NominalValue
			}
			if err := p.AddRow(fmt.Sprintf("summed_max(%s,%s)", f.From, f.To), lp.LE, rhs, terms...); err != nil {
				return err
			}
		}
	}
	return nil
}

func maxAt(f *model.Flow, t int) float64 {
	if len(f.Max) == 0 {
		return 1
	}
	return f.Max[t]
}

func (m *Model) addBusBalances() error {
	for _, b := range m.System.Buses() {
		for t := 0; t < m.steps(); t++ {
			var terms []lp.Term
			for _, f := range m.busIn[b.Name] {
				terms = append(terms, lp.Term{Col: m.flowCols[f][t], Coef: 1})
			}
			for _, f := range m.busOut[b.Name] {
				terms = append(terms, lp.Term{Col: m.flowCols[f][t], Coef: -1})
			}
			if err := m.Problem.AddRow(fmt.Sprintf("balance(%s,%d)", b.Name, t), lp.EQ, 0, terms...); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Model) addConverters() error {
	for _, c := range m.System.Converters() {
		for _, in := range c.Inputs {
			for _, out := range c.Outputs {
				fin, fout := c.Factor(in.From), c.Factor(out.To)
				for t := 0; t < m.steps(); t++ {
					err := m.Problem.AddRow(fmt.Sprintf("conversion(%s,%s,%s,%d)", c.Name, in.From, out.To, t), lp.EQ, 0,
						lp.Term{Col: m.flowCols[in][t], Coef: fout},
						lp.Term{Col: m.flowCols[out][t], Coef: -fin},
					)
					if err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (m *Model) addStorages() error {
	p := m.Problem
	n := m.steps()
	for _, s := range m.System.Storages() {
		// capacity = capTerms + capConst
		var capTerms []lp.Term
		capConst := 0.0
		upper := math.Inf(1)
		if s.Investment != nil {
			maxInv := math.Inf(1)
			if s.Investment.Maximum != nil {
				maxInv = *s.Investment.Maximum
			}
			inv, err := p.AddColumn(fmt.Sprintf("invest(%s)", s.Name), s.Investment.Minimum, maxInv, s.Investment.EPCosts)
			if err != nil {
				return err
			}
			m.storageInvest[s.Name] = inv
			capTerms = []lp.Term{{Col: inv, Coef: 1}}
			capConst = s.Investment.Existing
		} else {
			capConst = *s.NominalCapacity
			upper = capConst
		}

		content := make([]int, n)
		for t := range content {
			c, err := p.AddColumn(fmt.Sprintf("content(%s,%d)", s.Name, t), 0, upper, 0)
			if err != nil {
				return err
			}
			content[t] = c
			if s.Investment != nil {
				if err := p.AddRow(fmt.Sprintf("content_cap(%s,%d)", s.Name, t), lp.LE, capConst,
					append([]lp.Term{{Col: c, Coef: 1}}, scale(capTerms, -1)...)...); err != nil {
					return err
				}
			}
		}
		m.storageContent[s.Name] = content

		// init content: fixed share of the capacity, or free up to it
		var initTerms []lp.Term
		initConst := 0.0
		if s.InitialLevel != nil {
			initTerms = scale(capTerms, *s.InitialLevel)
			initConst = *s.InitialLevel * capConst
		} else {
			c, err := p.AddColumn(fmt.Sprintf("init_content(%s)", s.Name), 0, upper, 0)
			if err != nil {
				return err
			}
			m.storageInit[s.Name] = c
			initTerms = []lp.Term{{Col: c, Coef: 1}}
			if s.Investment != nil {
				if err := p.AddRow(fmt.Sprintf("init_cap(%s)", s.Name), lp.LE, capConst,
					append([]lp.Term{{Col: c, Coef: 1}}, scale(capTerms, -1)...)...); err != nil {
					return err
				}
			}
		}

		keep := 1 - s.LossRate
		in, out := m.flowCols[s.Input], m.flowCols[s.Output]
		for t := 0; t < n; t++ {
			terms := []lp.Term{
				{Col: content[t], Coef: 1},
				{Col: in[t], Coef: -s.InflowConversion},
				{Col: out[t], Coef: 1 / s.OutflowConversion},
			}
			rhs := 0.0
			if t == 0 {
				terms = append(terms, scale(initTerms, -keep)...)
				rhs = keep * initConst
			} else {
				terms = append(terms, lp.Term{Col: content[t-1], Coef: -keep})
			}
			if err := p.AddRow(fmt.Sprintf("storage_balance(%s,%d)", s.Name, t), lp.EQ, rhs, terms...); err != nil {
				return err
			}
		}
		if s.Balanced {
			terms := append([]lp.Term{{Col: content[n-1], Coef: 1}}, scale(initTerms, -1)...)
			if err := p.AddRow(fmt.Sprintf("balanced(%s)", s.Name), lp.EQ, initConst, terms...); err != nil {
				return err
			}
		}

		for _, rel := range []struct {
			name  string
			ratio *float64
			flow  *model.Flow
		}{
			{"relation_in", s.InvestRelationInputCapacity, s.Input},
			{"relation_out", s.InvestRelationOutputCapacity, s.Output},
		} {
			if rel.ratio == nil || s.Investment == nil {
				continue
			}
			fi, ok := m.flowInvest[rel.flow]
			if !ok {
				return fmt.Errorf("storage %q: %s needs an investment flow", s.Name, rel.name)
			}
			// flow_invest + flow_existing == ratio * (invest + existing)
			terms := append([]lp.Term{{Col: fi, Coef: 1}}, scale(capTerms, -*rel.ratio)...)
			rhs := *rel.ratio*capConst - rel.flow.Investment.Existing
			if err := p.AddRow(fmt.Sprintf("%s(%s)", rel.name, s.Name), lp.EQ, rhs, terms...); err != nil {
				return err
			}
		}
	}
	return nil
}

func scale(terms []lp.Term, k float64) []lp.Term {
	out := make([]lp.Term, len(terms))
	for i, t := range terms {
		out[i] = lp.Term{Col: t.Col, Coef: t.Coef * k}
	}
	return out
}
