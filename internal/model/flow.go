package model

import (
	"errors"
	"fmt"
	"math"
)

// Flow is a directed edge between a bus and a component. Units:
// - Fix, Max: fractions of the nominal (or invested) capacity per timestep
// - NominalValue: MW
// - SummedMax: full-load hours over the horizon, multiplied by the capacity
// - VariableCosts: $/MWh
type Flow struct {
	From string
	To   string

	Fix           []float64
	Max           []float64
	NominalValue  *float64
	SummedMax     *float64
	VariableCosts float64
	Investment    *Investment
}

// Investment makes the capacity of a flow or storage a decision variable.
// EPCosts are equivalent periodical costs per MW (or MWh); Maximum bounds
// the new capacity only, Existing is added on top of it.
type Investment struct {
	EPCosts  float64
	Maximum  *float64
	Minimum  float64
	Existing float64
}

// Float returns a pointer to v, for the optional parameters.
func Float(v float64) *float64 { return &v }

// IsFixed reports whether the flow follows a fixed profile.
func (f *Flow) IsFixed() bool { return len(f.Fix) > 0 }

// Capacity returns the installed capacity that is not decided by the
// optimiser: the nominal value, or the existing capacity of an investment.
func (f *Flow) Capacity() (float64, bool) {
	switch {
	case f.Investment != nil:
		return f.Investment.Existing, true
	case f.NominalValue != nil:
		return *f.NominalValue, true
	}
	return 0, false
}

func (f *Flow) String() string { return fmt.Sprintf("(%s, %s)", f.From, f.To) }

func (f *Flow) validate(steps int) error {
	if f.IsFixed() && len(f.Fix) != steps {
		return fmt.Errorf("flow %s: fix has %d values, timeindex has %d", f, len(f.Fix), steps)
	}
	if len(f.Max) > 0 && len(f.Max) != steps {
		return fmt.Errorf("flow %s: max has %d values, timeindex has %d", f, len(f.Max), steps)
	}
	for _, v := range f.Fix {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("flow %s: fix values must be >= 0", f)
		}
	}
	if f.IsFixed() && f.NominalValue == nil && f.Investment == nil {
		return fmt.Errorf("flow %s: fix requires a nominal value or an investment", f)
	}
	if len(f.Max) > 0 && f.NominalValue == nil && f.Investment == nil {
		return fmt.Errorf("flow %s: max requires a nominal value or an investment", f)
	}
	if f.SummedMax != nil {
		if *f.SummedMax < 0 {
			return fmt.Errorf("flow %s: summed_max must be >= 0", f)
		}
		if f.NominalValue == nil && f.Investment == nil {
			return fmt.Errorf("flow %s: summed_max requires a nominal value or an investment", f)
		}
	}
	if f.NominalValue != nil && f.Investment != nil {
		return fmt.Errorf("flow %s: nominal value and investment are mutually exclusive", f)
	}
	if f.NominalValue != nil && *f.NominalValue < 0 {
		return fmt.Errorf("flow %s: nominal value must be >= 0", f)
	}
	if f.VariableCosts < 0 {
		return fmt.Errorf("flow %s: variable costs must be >= 0", f)
	}
	if f.Investment != nil {
		if err := f.Investment.Validate(); err != nil {
			return fmt.Errorf("flow %s: %w", f, err)
		}
	}
	return nil
}

func (i *Investment) Validate() error {
	if i.EPCosts < 0 || math.IsNaN(i.EPCosts) {
		return errors.New("investment ep_costs must be >= 0")
	}
	if i.Existing < 0 {
		return errors.New("investment existing must be >= 0")
	}
	if i.Minimum < 0 {
		return errors.New("investment minimum must be >= 0")
	}
	if i.Maximum != nil && *i.Maximum < i.Minimum {
		return errors.New("investment maximum must be >= minimum")
	}
	return nil
}
