package results

import (
	"errors"
	"math"

	sc "energy-expansion/internal/scenario"
)

// Sheet names of the per-scenario overview workbook.
const (
	SheetCapacities    = "capacities"
	SheetFOM           = "fom"
	SheetCapex         = "capex"
	SheetEnergyBiomass = "energy_biomass"
	SheetEnergyHeat    = "energy_heat"
	SheetEnergyElec    = "energy_elec"
	SheetInvCosts      = "inv_costs"
)

type Entry struct {
	Key   string
	Value float64
}

// Table is an ordered key/value table; it becomes one sheet.
type Table struct {
	Name    string
	Header  string
	Entries []Entry
}

func (t *Table) Add(key string, v float64) {
	t.Entries = append(t.Entries, Entry{Key: key, Value: v})
}

func (t *Table) Get(key string) (float64, bool) {
	for _, e := range t.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return 0, false
}

func (t *Table) Sum() float64 {
	var s float64
	for _, e := range t.Entries {
		s += e.Value
	}
	return s
}

// Summary is everything exported for one scenario.
type Summary struct {
	Tag       string
	Objective float64

	Capacities        Table
	FOM               Table
	Capex             Table
	EnergyBiomass     Table
	EnergyHeat        Table
	EnergyElectricity Table
	InvCosts          Table
}

// Tables returns the tables in sheet order.
func (s *Summary) Tables() []*Table {
	return []*Table{
		&s.Capacities,
		&s.FOM,
		&s.Capex,
		&s.EnergyBiomass,
		&s.EnergyHeat,
		&s.EnergyElectricity,
		&s.InvCosts,
	}
}

// Table returns a table by sheet name.
func (s *Summary) Table(name string) (*Table, bool) {
	for _, t := range s.Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

type capacityItem struct {
	tech   string
	key    string
	from   string
	to     string
	energy bool // storage energy capacity rather than a flow
}

// capacityItems lists the built capacities in report order. Keys keep the
// names of the published overview workbooks.
var capacityItems = []capacityItem{
	{tech: "onshore", key: "wind_onshore", from: sc.WindOnshore, to: sc.BusElectricity},
	{tech: "offshore", key: "wind_offshore", from: sc.WindOffshore, to: sc.BusElectricity},
	{tech: "pv", key: "pv", from: sc.PV, to: sc.BusElectricity},
	{tech: "ror", key: "ror", from: sc.ROR, to: sc.BusElectricity},
	{tech: "chp", key: "chp", from: sc.CHP, to: sc.BusElectricity},
	{tech: "hp", key: "hp", from: sc.HeatPump, to: sc.BusHeat},
}

type storageItem struct {
	tech  string
	key   string
	label string
	bus   string
}

var storageItems = []storageItem{
	{tech: "battery", key: "battery", label: sc.Battery, bus: sc.BusElectricity},
	{tech: "hydrogen", key: "hydrogen", label: sc.Hydrogen, bus: sc.BusElectricity},
	{tech: "acaes", key: "acaes", label: sc.ACAES, bus: sc.BusElectricity},
	{tech: "tes", key: "thermal_storage", label: sc.TES, bus: sc.BusHeat},
}

// capacitySuffix keeps the unit suffixes of the overview sheets.
var capacitySuffix = map[string]string{
	"chp": "_invest_MW_el",
	"hp":  "_invest_MW_th",
}

var costSuffix = map[string]string{
	"chp": "_el",
	"hp":  "_th",
}

// NewSummary returns empty tables with the sheet names and headers of a
// scenario.
func NewSummary(tag string) *Summary {
	return &Summary{
		Tag:               tag,
		Capacities:        Table{Name: SheetCapacities, Header: "capacity_" + tag},
		FOM:               Table{Name: SheetFOM, Header: "fom (Mil$)"},
		Capex:             Table{Name: SheetCapex, Header: "Capex (Mil$)"},
		EnergyBiomass:     Table{Name: SheetEnergyBiomass, Header: "energy (TWh)"},
		EnergyHeat:        Table{Name: SheetEnergyHeat, Header: "energy (TWh)"},
		EnergyElectricity: Table{Name: SheetEnergyElec, Header: "energy (TWh)"},
		InvCosts:          Table{Name: SheetInvCosts, Header: "inv_costs (Mil$)"},
	}
}

// Summarize derives the overview tables. Money is in million $, energy in
// TWh, capacities in MW or MWh.
func Summarize(tag string, r *Results, econ sc.Economics) (*Summary, error) {
	if r == nil {
		return nil, errors.New("summarize: nil results")
	}
	if econ == nil {
		return nil, errors.New("summarize: nil economics")
	}
	s := NewSummary(tag)
	s.Objective = r.Objective

	for _, it := range capacityItems {
		te := econ.Get(it.tech)
		invest := r.Invest(it.from, it.to)
		suffix := capacitySuffix[it.tech]
		if suffix == "" {
			suffix = "_invest_MW"
		}
		s.Capacities.Add(it.key+suffix, invest)
		s.FOM.Add(it.key+"_fom"+costSuffix[it.tech], invest*te.Params.FOM/1e6)
		s.Capex.Add(it.key+"_capex"+costSuffix[it.tech], invest*te.Params.Capex/1e6)
		s.InvCosts.Add(it.key+"_mio", round2(te.Annuity*invest/1e6))
	}
	for _, it := range storageItems {
		te := econ.Get(it.tech)
		energy := r.StorageInvest(it.label)
		ch := r.Invest(it.bus, it.label)
		dch := r.Invest(it.label, it.bus)

		s.Capacities.Add(it.key+"_invest_MWh", energy)
		s.Capacities.Add(it.key+"_invest_MW_ch", ch)
		s.Capacities.Add(it.key+"_invest_MW_dch", dch)

		s.FOM.Add(it.key+"_fom_ch", ch*te.Params.FOM/1e6)
		s.FOM.Add(it.key+"_fom_dch", dch*te.Params.FOM/1e6)

		s.Capex.Add(it.key+"_capex", energy*te.Params.CapexEnergy/1e6)
		// Power is priced per MW for every storage; tes carries capex 0.
		s.Capex.Add(it.key+"_capex_ch", ch*te.Params.Capex/1e6)
		s.Capex.Add(it.key+"_capex_dch", dch*te.Params.Capex/1e6)

		// Thermal storage power is not priced, so only its energy part
		// carries investment costs.
		invKey := it.tech
		s.InvCosts.Add(invKey+"_mio", round2(te.EnergyAnnuity*energy/1e6))
		if it.tech != "tes" {
			s.InvCosts.Add(invKey+"_power_ch_mio", round2(te.Annuity*ch/1e6))
			s.InvCosts.Add(invKey+"_power_dch_mio", round2(te.Annuity*dch/1e6))
		}
	}
	s.InvCosts.Add("total", round2(s.InvCosts.Sum()))

	s.EnergyBiomass.Add("total_TWh", r.Sum(sc.BusBiomass, sc.CHP)/1e6)

	s.EnergyHeat.Add("chp_TWh", r.Sum(sc.CHP, sc.BusHeat)/1e6)
	s.EnergyHeat.Add("hp_TWh", r.Sum(sc.HeatPump, sc.BusHeat)/1e6)
	s.EnergyHeat.Add("total_TWh", s.EnergyHeat.Sum())

	s.EnergyElectricity.Add("wind_onshore_TWh", r.Sum(sc.WindOnshore, sc.BusElectricity)/1e6)
	s.EnergyElectricity.Add("wind_offshore_TWh", r.Sum(sc.WindOffshore, sc.BusElectricity)/1e6)
	s.EnergyElectricity.Add("pv_TWh", r.Sum(sc.PV, sc.BusElectricity)/1e6)
	s.EnergyElectricity.Add("ror_TWh", r.Sum(sc.ROR, sc.BusElectricity)/1e6)
	s.EnergyElectricity.Add("chp_TWh", r.Sum(sc.CHP, sc.BusElectricity)/1e6)
	s.EnergyElectricity.Add("total_TWh", s.EnergyElectricity.Sum())

	return s, nil
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
