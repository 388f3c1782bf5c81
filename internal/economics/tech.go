package economics

import "fmt"

// CostParams is one column of the costs sheet. Units:
// - Capex: $/MW (power part)
// - CapexEnergy: $/MWh (energy part, storages only)
// - Lifetime: years
// - WACC: fraction
// - FOM: $/MW/a, or $/MWh/a for storages
// - VOM: $/MWh
// - UsefulLife, CostDecrease: optional re-investment inside Lifetime
type CostParams struct {
	Capex        float64
	CapexEnergy  float64
	Lifetime     float64
	WACC         float64
	FOM          float64
	VOM          float64
	UsefulLife   float64
	CostDecrease float64
}

// TechEconomics holds the cost coefficients of one technology as they
// enter the optimisation.
type TechEconomics struct {
	Params  CostParams
	Storage bool

	Annuity       float64
	EnergyAnnuity float64
	EPCosts       float64
	EnergyEPCosts float64
	VOM           float64
}

// NewTechEconomics annualises capex. Storages carry the fixed O&M on their
// energy part, so their power ep costs are the bare annuity.
func NewTechEconomics(p CostParams, storage bool) (TechEconomics, error) {
	te := TechEconomics{Params: p, Storage: storage, VOM: p.VOM}
	var err error
	if te.Annuity, err = p.annuity(p.Capex); err != nil {
		return TechEconomics{}, fmt.Errorf("capex: %w", err)
	}
	if !storage {
		te.EPCosts = EPCosts(te.Annuity, p.FOM)
		return te, nil
	}
	te.EPCosts = te.Annuity
	if te.EnergyAnnuity, err = p.annuity(p.CapexEnergy); err != nil {
		return TechEconomics{}, fmt.Errorf("capex_energy: %w", err)
	}
	te.EnergyEPCosts = EPCosts(te.EnergyAnnuity, p.FOM)
	return te, nil
}

func (p CostParams) annuity(capex float64) (float64, error) {
	if p.UsefulLife > 0 && p.UsefulLife != p.Lifetime {
		return AnnuityWithReinvest(capex, p.Lifetime, p.WACC, p.UsefulLife, p.CostDecrease)
	}
	return Annuity(capex, p.Lifetime, p.WACC)
}
