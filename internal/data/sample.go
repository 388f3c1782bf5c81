package data

import (
	"math"
	"time"
)

// SampleInputs returns a synthetic regional workbook with the sheet layout
// and technology columns scenario workbooks use. It backs the CLI template
// command and end-to-end tests that cannot ship a full year of data.
func SampleInputs(hours int) *Inputs {
	if hours <= 0 {
		hours = 24
	}
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	index := make([]time.Time, hours)
	for i := range index {
		index[i] = start.Add(time.Duration(i) * time.Hour)
	}

	profile := func(f func(h float64) float64) []float64 {
		out := make([]float64, hours)
		for i := range out {
			out[i] = math.Max(0, f(float64(i%24)))
		}
		return out
	}

	ts := NewTimeseries(index)
	_ = ts.Add("electricity", profile(func(h float64) float64 { return 0.7 + 0.3*math.Sin((h-6)/24*2*math.Pi) }))
	_ = ts.Add("space_heat", profile(func(h float64) float64 { return 0.8 - 0.2*math.Sin((h-6)/24*2*math.Pi) }))
	_ = ts.Add("dhw_heat", profile(func(h float64) float64 { return 0.5 + 0.4*math.Sin((h-4)/24*2*math.Pi) }))
	_ = ts.Add("onshore", profile(func(h float64) float64 { return 0.35 + 0.15*math.Cos(h/24*2*math.Pi) }))
	_ = ts.Add("offshore", profile(func(h float64) float64 { return 0.5 + 0.1*math.Sin(h/24*2*math.Pi) }))
	_ = ts.Add("pv", profile(func(h float64) float64 { return math.Sin((h - 6) / 12 * math.Pi) }))
	_ = ts.Add("ror", profile(func(float64) float64 { return 0.55 }))

	capacity := NewTable(SheetCapacity)
	capacity.Set("electricity", "amount", 100)
	capacity.Set("space_heat", "amount", 40)
	capacity.Set("dhw_heat", "amount", 10)
	for tech, v := range map[string][2]float64{
		"onshore":  {1500, 50},
		"offshore": {800, 0},
		"pv":       {1200, 20},
		"ror":      {30, 10},
	} {
		capacity.Set(tech, "capacity_potential", v[0])
		capacity.Set(tech, "capacity_existing", v[1])
	}
	capacity.Set("biomass", "capacity_potential", 40*float64(hours))
	capacity.Set("chp", "capacity_existing", 10)
	for tech, v := range map[string][2]float64{
		"battery":  {2000, 500},
		"hydrogen": {20000, 500},
		"acaes":    {5000, 300},
		"tes":      {3000, 300},
	} {
		capacity.Set(tech, "capacity_potential", v[0])
		capacity.Set(tech, "storage_power_potential", v[1])
	}

	tech := NewTable(SheetTech)
	for name, v := range map[string][3]float64{
		"battery":  {0.0001, 6, 0.92},
		"hydrogen": {0.00001, 168, 0.4},
		"acaes":    {0.001, 10, 0.7},
		"tes":      {0.005, 24, 0.95},
	} {
		tech.Set(name, "loss", v[0])
		tech.Set(name, "max_hours", v[1])
		tech.Set(name, "efficiency", v[2])
	}
	tech.Set("hp", "efficiency", 3.2)
	tech.Set("chp", "electric_efficiency", 0.35)
	tech.Set("chp", "thermal_efficiency", 0.5)

	costs := NewTable(SheetCosts)
	for name, v := range map[string][5]float64{
		// capex, lifetime, wacc, fom, vom
		"onshore":  {1100000, 25, 0.07, 30000, 0},
		"offshore": {2300000, 25, 0.07, 70000, 0},
		"pv":       {500000, 25, 0.07, 10000, 0},
		"ror":      {3000000, 40, 0.07, 60000, 0},
		"chp":      {1700000, 25, 0.07, 80000, 4},
		"hp":       {700000, 20, 0.07, 10000, 1},
		"battery":  {150000, 15, 0.07, 5000, 0.5},
		"hydrogen": {900000, 20, 0.07, 15, 1},
		"acaes":    {600000, 30, 0.07, 2000, 1},
		"tes":      {0, 30, 0.07, 300, 0.1},
	} {
		costs.Set(name, "capex", v[0])
		costs.Set(name, "lifetime", v[1])
		costs.Set(name, "wacc", v[2])
		costs.Set(name, "fom", v[3])
		costs.Set(name, "vom", v[4])
	}
	for name, v := range map[string]float64{
		"battery":  200000,
		"hydrogen": 1000,
		"acaes":    40000,
		"tes":      3000,
	} {
		costs.Set(name, "capex_energy", v)
	}

	return &Inputs{
		Path:       "sample",
		Timeseries: ts,
		Capacity:   capacity,
		Tech:       tech,
		Costs:      costs,
	}
}
