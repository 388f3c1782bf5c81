package economics

import (
	"errors"
	"fmt"
	"math"
)

// Annuity returns the yearly payment that repays capex over n years at the
// given weighted average cost of capital:
//
//	annuity = capex * wacc / (1 - (1+wacc)^-n)
//
// A zero wacc degenerates to straight-line capex/n.
func Annuity(capex, n, wacc float64) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("annuity: lifetime must be > 0, got %v", n)
	}
	if wacc < 0 {
		return 0, fmt.Errorf("annuity: wacc must be >= 0, got %v", wacc)
	}
	if math.IsNaN(capex) || math.IsInf(capex, 0) {
		return 0, errors.New("annuity: capex is not finite")
	}
	if wacc == 0 {
		return capex / n, nil
	}
	return capex * wacc / (1 - math.Pow(1+wacc, -n)), nil
}

// AnnuityWithReinvest spreads capex over an evaluation horizon n when the
// component only lives u years. Replacements inside the horizon are bought
// at a price that falls by costDecrease per year and are discounted back.
// The value left at the end of the horizon is not credited.
func AnnuityWithReinvest(capex, n, wacc, u, costDecrease float64) (float64, error) {
	if u <= 0 {
		u = n
	}
	if u <= 0 {
		return 0, fmt.Errorf("annuity: useful life must be > 0, got %v", u)
	}
	if costDecrease < 0 || costDecrease >= 1 {
		return 0, fmt.Errorf("annuity: cost decrease must be in [0, 1), got %v", costDecrease)
	}
	replacements := int(math.Ceil(n/u)) - 1
	if replacements < 0 {
		replacements = 0
	}
	pv := capex
	for k := 1; k <= replacements; k++ {
		year := float64(k) * u
		pv += capex * math.Pow(1-costDecrease, year) / math.Pow(1+wacc, year)
	}
	return Annuity(pv, n, wacc)
}

// EPCosts is the equivalent periodical cost of one unit of capacity: the
// annuity plus the fixed operation and maintenance cost.
func EPCosts(annuity, fom float64) float64 {
	return annuity + fom
}
