package scenario

import (
	"errors"
	"fmt"

	"energy-expansion/internal/data"
	"energy-expansion/internal/model"
)

// Node labels of the regional system.
const (
	BusElectricity = "bus_electricity_l"
	BusHeat        = "bus_heat_l"
	BusBiomass     = "bus_biomass_l"

	ElectricityExcess = "electricity_excess_l"
	ElectricityDemand = "electricity_demand_l"
	HeatExcess        = "heat_excess_l"
	HeatSpaceDemand   = "heat_space_demand_l"
	HeatDHWDemand     = "heat_dhw_demand_l"

	WindOffshore = "wind_offshore_l"
	WindOnshore  = "wind_onshore_l"
	PV           = "pv_l"
	ROR          = "ror_l"
	Biomass      = "biomass_l"

	Battery  = "battery_l"
	Hydrogen = "hydrogen_l"
	ACAES    = "acaes_l"
	TES      = "tes_l"

	HeatPump = "hp_l"
	CHP      = "chp_l"
)

// StorageLabel maps a storage technology column to its node label.
var StorageLabel = map[string]string{
	"battery":  Battery,
	"hydrogen": Hydrogen,
	"acaes":    ACAES,
	"tes":      TES,
}

// Build assembles the regional energy system from one scenario workbook.
func Build(in *data.Inputs) (*model.EnergySystem, Economics, error) {
	if in == nil || in.Timeseries == nil {
		return nil, nil, errors.New("scenario: no inputs")
	}
	for name, t := range map[string]*data.Table{
		data.SheetCapacity: in.Capacity,
		data.SheetTech:     in.Tech,
	} {
		if t == nil {
			return nil, nil, fmt.Errorf("scenario: %w %q", data.ErrMissingSheet, name)
		}
	}
	econ, err := NewEconomics(in.Costs)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario economics: %w", err)
	}

	b := &builder{in: in, econ: econ}
	es := model.NewEnergySystem(in.Timeseries.Index)
	nodes := []model.Node{
		model.NewBus(BusElectricity),
		model.NewBus(BusHeat),
		model.NewBus(BusBiomass),

		model.NewSink(ElectricityExcess, BusElectricity, nil),
		b.demand(ElectricityDemand, BusElectricity, "electricity"),
		model.NewSink(HeatExcess, BusHeat, nil),
		b.demand(HeatSpaceDemand, BusHeat, "space_heat"),
		b.demand(HeatDHWDemand, BusHeat, "dhw_heat"),

		b.renewable(WindOffshore, "offshore"),
		b.renewable(WindOnshore, "onshore"),
		b.renewable(PV, "pv"),
		b.renewable(ROR, "ror"),
		b.biomass(),

		b.storage(Battery, "battery", BusElectricity),
		b.storage(Hydrogen, "hydrogen", BusElectricity),
		b.storage(ACAES, "acaes", BusElectricity),
		b.storage(TES, "tes", BusHeat),

		b.heatPump(),
		b.chp(),
	}
	if b.err != nil {
		return nil, nil, fmt.Errorf("scenario: %w", b.err)
	}
	if err := es.Add(nodes...); err != nil {
		return nil, nil, err
	}
	return es, econ, nil
}

// builder keeps the first lookup error so the node list reads like the
// topology it describes.
type builder struct {
	in   *data.Inputs
	econ Economics
	err  error
}

func (b *builder) get(t *data.Table, column, row string) float64 {
	if b.err != nil {
		return 0
	}
	v, err := t.Get(column, row)
	if err != nil {
		b.err = err
		return 0
	}
	return v
}

func (b *builder) series(name string) []float64 {
	if b.err != nil {
		return nil
	}
	v, err := b.in.Timeseries.Series(name)
	if err != nil {
		b.err = err
		return nil
	}
	return v
}

func (b *builder) demand(label, bus, column string) *model.Sink {
	return model.NewSink(label, bus, &model.Flow{
		Fix:          b.series(column),
		NominalValue: model.Float(b.get(b.in.Capacity, column, "amount")),
	})
}

func (b *builder) renewable(label, tech string) *model.Source {
	te := b.econ.Get(tech)
	return model.NewSource(label, BusElectricity, &model.Flow{
		Fix:           b.series(tech),
		VariableCosts: te.VOM,
		Investment: &model.Investment{
			EPCosts:  te.EPCosts,
			Maximum:  model.Float(b.get(b.in.Capacity, tech, "capacity_potential")),
			Existing: b.get(b.in.Capacity, tech, "capacity_existing"),
		},
	})
}

func (b *builder) biomass() *model.Source {
	return model.NewSource(Biomass, BusBiomass, &model.Flow{
		NominalValue: model.Float(b.get(b.in.Capacity, "biomass", "capacity_potential")),
		SummedMax:    model.Float(1),
	})
}

func (b *builder) storage(label, tech, bus string) *model.Storage {
	te := b.econ.Get(tech)
	power := &model.Investment{
		EPCosts: te.EPCosts,
		Maximum: model.Float(b.get(b.in.Capacity, tech, "storage_power_potential")),
	}
	// Thermal storage power is not priced.
	if tech == "tes" {
		power.EPCosts = 0
	}
	s := model.NewStorage(label, bus, bus, &model.Flow{
		Investment:    power,
		VariableCosts: te.VOM,
	}, nil)

	maxHours := b.get(b.in.Tech, tech, "max_hours")
	if b.err == nil && maxHours <= 0 {
		b.err = fmt.Errorf("tech[%s]: max_hours must be > 0", tech)
	}
	relation := 0.0
	if maxHours > 0 {
		relation = 1 / maxHours
	}
	s.LossRate = b.get(b.in.Tech, tech, "loss")
	s.InitialLevel = model.Float(0)
	s.InvestRelationInputCapacity = model.Float(relation)
	s.InvestRelationOutputCapacity = model.Float(relation)
	s.InflowConversion = 1
	s.OutflowConversion = b.get(b.in.Tech, tech, "efficiency")
	s.Investment = &model.Investment{
		EPCosts: te.EnergyEPCosts,
		Maximum: model.Float(b.get(b.in.Capacity, tech, "capacity_potential")),
	}
	return s
}

func (b *builder) heatPump() *model.Converter {
	te := b.econ.Get("hp")
	eff := b.get(b.in.Tech, "hp", "efficiency")
	if b.err == nil && eff <= 0 {
		b.err = errors.New("tech[hp]: efficiency must be > 0")
	}
	factor := 0.0
	if eff > 0 {
		factor = 1 / eff
	}
	return model.NewConverter(HeatPump).
		AddInput(BusElectricity, nil, factor).
		AddOutput(BusHeat, &model.Flow{
			Investment:    &model.Investment{EPCosts: te.EPCosts},
			VariableCosts: te.VOM,
		}, 1)
}

func (b *builder) chp() *model.Converter {
	te := b.econ.Get("chp")
	elEff := b.get(b.in.Tech, "chp", "electric_efficiency")
	thEff := b.get(b.in.Tech, "chp", "thermal_efficiency")
	if b.err == nil && (elEff <= 0 || thEff <= 0) {
		b.err = errors.New("tech[chp]: electric_efficiency and thermal_efficiency must be > 0")
	}
	return model.NewConverter(CHP).
		AddInput(BusBiomass, &model.Flow{VariableCosts: te.VOM}, 1).
		AddOutput(BusElectricity, &model.Flow{
			Investment: &model.Investment{
				EPCosts:  te.EPCosts,
				Existing: b.get(b.in.Capacity, "chp", "capacity_existing"),
			},
		}, elEff).
		AddOutput(BusHeat, nil, thEff)
}
