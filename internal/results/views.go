package results

import sc "energy-expansion/internal/scenario"

// Series is a named hourly sequence prepared for plotting.
type Series struct {
	Name   string
	Values []float64
}

// ElectricitySeries returns generation by source and the electricity sinks.
func (r *Results) ElectricitySeries() []Series {
	return r.collect([]seriesRef{
		{"Wind onshore", sc.WindOnshore, sc.BusElectricity},
		{"Wind offshore", sc.WindOffshore, sc.BusElectricity},
		{"PV", sc.PV, sc.BusElectricity},
		{"RoR", sc.ROR, sc.BusElectricity},
		{"CHP", sc.CHP, sc.BusElectricity},
		{"Electricity demand", sc.BusElectricity, sc.ElectricityDemand},
		{"Electricity excess", sc.BusElectricity, sc.ElectricityExcess},
	})
}

// HeatSeries returns heat generation and the heat sinks.
func (r *Results) HeatSeries() []Series {
	return r.collect([]seriesRef{
		{"CHP", sc.CHP, sc.BusHeat},
		{"Heat pump", sc.HeatPump, sc.BusHeat},
		{"DHW demand", sc.BusHeat, sc.HeatDHWDemand},
		{"Space heat demand", sc.BusHeat, sc.HeatSpaceDemand},
		{"Heat excess", sc.BusHeat, sc.HeatExcess},
	})
}

// StorageDischarge returns the discharge flow of each storage.
func (r *Results) StorageDischarge() []Series {
	return r.collect([]seriesRef{
		{"battery", sc.Battery, sc.BusElectricity},
		{"hydrogen", sc.Hydrogen, sc.BusElectricity},
		{"acaes", sc.ACAES, sc.BusElectricity},
		{"tes", sc.TES, sc.BusHeat},
	})
}

// StorageContent returns the content of each storage.
func (r *Results) StorageContent() []Series {
	var out []Series
	for _, it := range storageItems {
		st, ok := r.Storages[it.label]
		if !ok {
			continue
		}
		out = append(out, Series{Name: it.tech, Values: st.Content})
	}
	return out
}

type seriesRef struct {
	name     string
	from, to string
}

func (r *Results) collect(refs []seriesRef) []Series {
	out := make([]Series, 0, len(refs))
	for _, ref := range refs {
		seq := r.Sequence(ref.from, ref.to)
		if seq == nil {
			continue
		}
		out = append(out, Series{Name: ref.name, Values: seq})
	}
	return out
}
