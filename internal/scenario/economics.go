package scenario

import (
	"fmt"

	"energy-expansion/internal/data"
	"energy-expansion/internal/economics"
)

// Technology columns of the costs sheet.
var (
	Generators = []string{"onshore", "offshore", "pv", "ror", "chp", "hp"}
	Storages   = []string{"battery", "hydrogen", "acaes", "tes"}
)

// Economics maps a technology column to its cost coefficients.
type Economics map[string]economics.TechEconomics

// Get returns the coefficients of tech, zero-valued when unknown.
func (e Economics) Get(tech string) economics.TechEconomics { return e[tech] }

// NewEconomics annualises every technology of the costs sheet. The power
// capex of a storage is optional (thermal storage only prices energy).
func NewEconomics(costs *data.Table) (Economics, error) {
	if costs == nil {
		return nil, fmt.Errorf("costs: %w %q", data.ErrMissingSheet, data.SheetCosts)
	}
	out := Economics{}
	for _, tech := range Generators {
		p, err := costParams(costs, tech, false)
		if err != nil {
			return nil, err
		}
		te, err := economics.NewTechEconomics(p, false)
		if err != nil {
			return nil, fmt.Errorf("costs[%s]: %w", tech, err)
		}
		out[tech] = te
	}
	for _, tech := range Storages {
		p, err := costParams(costs, tech, true)
		if err != nil {
			return nil, err
		}
		te, err := economics.NewTechEconomics(p, true)
		if err != nil {
			return nil, fmt.Errorf("costs[%s]: %w", tech, err)
		}
		out[tech] = te
	}
	return out, nil
}

func costParams(costs *data.Table, tech string, storage bool) (economics.CostParams, error) {
	required := []string{"lifetime", "wacc", "fom", "vom"}
	if storage {
		required = append(required, "capex_energy")
	} else {
		required = append(required, "capex")
	}
	vals := map[string]float64{}
	for _, row := range required {
		v, err := costs.Get(tech, row)
		if err != nil {
			return economics.CostParams{}, err
		}
		vals[row] = v
	}
	p := economics.CostParams{
		Capex:        vals["capex"],
		CapexEnergy:  vals["capex_energy"],
		Lifetime:     vals["lifetime"],
		WACC:         vals["wacc"],
		FOM:          vals["fom"],
		VOM:          vals["vom"],
		UsefulLife:   costs.Lookup(tech, "useful_life", 0),
		CostDecrease: costs.Lookup(tech, "cost_decrease", 0),
	}
	if storage {
		p.Capex = costs.Lookup(tech, "capex", 0)
	}
	return p, nil
}
