package results

import (
	"testing"
	"time"

	"energy-expansion/internal/economics"
	sc "energy-expansion/internal/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func index(n int) []time.Time {
	start := time.Date(2030, 1, 31, 22, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return out
}

func invest(v float64) *float64 { return &v }

func sampleResults() *Results {
	r := New(index(3))
	r.Objective = 1234
	add := func(from, to string, seq []float64, inv *float64) {
		r.AddFlow(FlowKey{From: from, To: to}, FlowResult{Sequence: seq, Invest: inv})
	}
	add(sc.WindOnshore, sc.BusElectricity, []float64{100, 200, 300}, invest(10))
	add(sc.WindOffshore, sc.BusElectricity, []float64{0, 0, 0}, invest(0))
	add(sc.PV, sc.BusElectricity, []float64{0, 50, 0}, invest(5))
	add(sc.ROR, sc.BusElectricity, []float64{1, 1, 1}, invest(0))
	add(sc.BusBiomass, sc.CHP, []float64{10, 10, 10}, nil)
	add(sc.CHP, sc.BusElectricity, []float64{3.5, 3.5, 3.5}, invest(2))
	add(sc.CHP, sc.BusHeat, []float64{5, 5, 5}, nil)
	add(sc.BusElectricity, sc.HeatPump, []float64{1, 1, 1}, nil)
	add(sc.HeatPump, sc.BusHeat, []float64{3, 3, 3}, invest(4))
	add(sc.BusElectricity, sc.Hydrogen, []float64{0, 6, 0}, invest(6))
	add(sc.Hydrogen, sc.BusElectricity, []float64{0, 0, 2}, invest(6))
	add(sc.BusHeat, sc.TES, []float64{1, 0, 0}, invest(2))
	add(sc.TES, sc.BusHeat, []float64{0, 0.5, 0.4}, invest(2))
	add(sc.BusElectricity, sc.ElectricityDemand, []float64{100, 240, 290}, nil)
	r.Storages[sc.Hydrogen] = StorageResult{Content: []float64{0, 6, 0}, Invest: 100}
	r.Storages[sc.TES] = StorageResult{Content: []float64{1, 0.5, 0}, Invest: 48}
	return r
}

func sampleEconomics(t *testing.T) sc.Economics {
	t.Helper()
	mk := func(p economics.CostParams, storage bool) economics.TechEconomics {
		te, err := economics.NewTechEconomics(p, storage)
		require.NoError(t, err)
		return te
	}
	econ := sc.Economics{}
	for _, tech := range sc.Generators {
		econ[tech] = mk(economics.CostParams{Capex: 1e6, Lifetime: 20, FOM: 1e4}, false)
	}
	for _, tech := range sc.Storages {
		econ[tech] = mk(economics.CostParams{Capex: 2e5, CapexEnergy: 1e4, Lifetime: 10, FOM: 500}, true)
	}
	return econ
}

func TestResults_Accessors(t *testing.T) {
	r := sampleResults()
	assert.Equal(t, 10.0, r.Invest(sc.WindOnshore, sc.BusElectricity))
	assert.Equal(t, 0.0, r.Invest(sc.CHP, sc.BusHeat))
	assert.Equal(t, 0.0, r.Invest("nope", "nada"))
	assert.Equal(t, 600.0, r.Sum(sc.WindOnshore, sc.BusElectricity))
	assert.Equal(t, 100.0, r.StorageInvest(sc.Hydrogen))
	assert.Equal(t, FlowKey{sc.WindOnshore, sc.BusElectricity}, r.Keys()[0])

	v, ok := r.Node(sc.CHP)
	require.True(t, ok)
	assert.Len(t, v.Keys, 3)
	assert.Equal(t, []float64{10, 10, 10}, v.Inflow())
	assert.Equal(t, []float64{8.5, 8.5, 8.5}, v.Outflow())
	assert.Nil(t, v.Storage)

	v, ok = r.Node(sc.TES)
	require.True(t, ok)
	require.NotNil(t, v.Storage)
	assert.Equal(t, 48.0, v.Storage.Invest)

	_, ok = r.Node("missing")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	econ := sampleEconomics(t)
	s, err := Summarize("50", sampleResults(), econ)
	require.NoError(t, err)

	assert.Equal(t, "capacity_50", s.Capacities.Header)
	assert.Equal(t, "fom (Mil$)", s.FOM.Header)
	assert.Equal(t, "Capex (Mil$)", s.Capex.Header)
	assert.Equal(t, 1234.0, s.Objective)

	keys := make([]string, 0, len(s.Capacities.Entries))
	for _, e := range s.Capacities.Entries {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{
		"wind_onshore_invest_MW", "wind_offshore_invest_MW", "pv_invest_MW", "ror_invest_MW",
		"chp_invest_MW_el", "hp_invest_MW_th",
		"battery_invest_MWh", "battery_invest_MW_ch", "battery_invest_MW_dch",
		"hydrogen_invest_MWh", "hydrogen_invest_MW_ch", "hydrogen_invest_MW_dch",
		"acaes_invest_MWh", "acaes_invest_MW_ch", "acaes_invest_MW_dch",
		"thermal_storage_invest_MWh", "thermal_storage_invest_MW_ch", "thermal_storage_invest_MW_dch",
	}, keys)

	get := func(tab *Table, key string) float64 {
		t.Helper()
		v, ok := tab.Get(key)
		require.True(t, ok, key)
		return v
	}
	assert.Equal(t, 2.0, get(&s.Capacities, "chp_invest_MW_el"))
	assert.Equal(t, 100.0, get(&s.Capacities, "hydrogen_invest_MWh"))

	// fom and capex in million $
	assert.InDelta(t, 0.1, get(&s.FOM, "wind_onshore_fom"), 1e-12)
	assert.InDelta(t, 0.04, get(&s.FOM, "hp_fom_th"), 1e-12)
	assert.InDelta(t, 0.003, get(&s.FOM, "hydrogen_fom_dch"), 1e-12)
	assert.InDelta(t, 10, get(&s.Capex, "wind_onshore_capex"), 1e-12)
	assert.InDelta(t, 1, get(&s.Capex, "hydrogen_capex"), 1e-12)
	// MW of charge power times the power capex, not the per-MWh energy capex
	assert.InDelta(t, 0.4, get(&s.Capex, "thermal_storage_capex_ch"), 1e-12)
	assert.InDelta(t, 0.4, get(&s.Capex, "thermal_storage_capex_dch"), 1e-12)
	assert.InDelta(t, 0.48, get(&s.Capex, "thermal_storage_capex"), 1e-12)

	// investment costs use the bare annuity
	annuity := econ.Get("onshore").Annuity
	assert.Equal(t, round2(annuity*10/1e6), get(&s.InvCosts, "wind_onshore_mio"))
	_, ok := s.InvCosts.Get("tes_power_ch_mio")
	assert.False(t, ok)
	total := 0.0
	for _, e := range s.InvCosts.Entries[:len(s.InvCosts.Entries)-1] {
		total += e.Value
	}
	assert.InDelta(t, total, get(&s.InvCosts, "total"), 1e-9)

	// energy mix in TWh
	assert.InDelta(t, 30e-6, get(&s.EnergyBiomass, "total_TWh"), 1e-15)
	assert.InDelta(t, 24e-6, get(&s.EnergyHeat, "total_TWh"), 1e-15)
	assert.InDelta(t, (600+50+3+10.5)*1e-6, get(&s.EnergyElectricity, "total_TWh"), 1e-15)

	names := []string{}
	for _, tab := range s.Tables() {
		names = append(names, tab.Name)
	}
	assert.Equal(t, []string{"capacities", "fom", "capex", "energy_biomass", "energy_heat", "energy_elec", "inv_costs"}, names)
	tab, ok := s.Table(SheetInvCosts)
	require.True(t, ok)
	assert.Equal(t, SheetInvCosts, tab.Name)
}

func TestSummarize_NilInputs(t *testing.T) {
	_, err := Summarize("x", nil, sc.Economics{})
	assert.Error(t, err)
	_, err = Summarize("x", sampleResults(), nil)
	assert.Error(t, err)
}

func TestViews(t *testing.T) {
	r := sampleResults()
	elec := r.ElectricitySeries()
	require.Len(t, elec, 6) // no excess flow recorded
	assert.Equal(t, "Wind onshore", elec[0].Name)

	heat := r.HeatSeries()
	assert.Len(t, heat, 2)

	dch := r.StorageDischarge()
	require.Len(t, dch, 2)
	assert.Equal(t, "hydrogen", dch[0].Name)
	assert.Equal(t, []float64{0, 0, 2}, dch[0].Values)

	content := r.StorageContent()
	require.Len(t, content, 2)
	assert.Equal(t, "tes", content[1].Name)
}

func TestResample(t *testing.T) {
	idx := index(4) // 22:00, 23:00 on Jan 31, 00:00, 01:00 on Feb 1
	vals := []float64{1, 2, 3, 5}

	labels, out, err := Resample(idx, vals, Daily, AggSum)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 8}, out)
	assert.Equal(t, time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC), labels[1])

	_, out, err = Resample(idx, vals, Monthly, AggMean)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 4}, out)

	_, out, err = Resample(idx, vals, Hourly, AggMean)
	require.NoError(t, err)
	assert.Equal(t, vals, out)

	_, _, err = Resample(idx, vals[:2], Daily, AggSum)
	assert.Error(t, err)
	_, _, err = Resample(idx, vals, "W", AggSum)
	assert.Error(t, err)
	_, _, err = Resample(idx, vals, Daily, "max")
	assert.Error(t, err)
}
