package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"energy-expansion/internal/results"
	sc "energy-expansion/internal/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func index(n int) []time.Time {
	start := time.Date(2030, 1, 31, 22, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return out
}

func sampleResults() *results.Results {
	r := results.New(index(4))
	inv := func(v float64) *float64 { return &v }
	add := func(from, to string, seq []float64, invest *float64) {
		r.AddFlow(results.FlowKey{From: from, To: to}, results.FlowResult{Sequence: seq, Invest: invest})
	}
	add(sc.WindOnshore, sc.BusElectricity, []float64{10, 20, 30, 40}, inv(40))
	add(sc.PV, sc.BusElectricity, []float64{0, 5, 5, 0}, inv(5))
	add(sc.CHP, sc.BusHeat, []float64{2, 2, 2, 2}, nil)
	add(sc.BusElectricity, sc.ElectricityDemand, []float64{10, 25, 30, 35}, nil)
	add(sc.Battery, sc.BusElectricity, []float64{0, 0, 1, 2}, inv(1))
	add(sc.Hydrogen, sc.BusElectricity, []float64{0, 0, 0, 3}, inv(3))
	add(sc.ACAES, sc.BusElectricity, []float64{0, 1, 0, 0}, inv(1))
	add(sc.TES, sc.BusHeat, []float64{1, 0, 0, 1}, inv(1))
	r.Storages[sc.Battery] = results.StorageResult{Content: []float64{3, 3, 2, 0}, Invest: 6}
	r.Storages[sc.TES] = results.StorageResult{Content: []float64{5, 5, 5, 4}, Invest: 24}
	return r
}

func sampleSummary(tag string, onshore float64) *results.Summary {
	s := &results.Summary{Tag: tag, Objective: 99.5}
	s.Capacities = results.Table{Name: results.SheetCapacities, Header: "capacity_" + tag}
	s.Capacities.Add("wind_onshore_invest_MW", onshore)
	s.Capacities.Add("pv_invest_MW", 5)
	s.FOM = results.Table{Name: results.SheetFOM, Header: "fom (Mil$)"}
	s.FOM.Add("wind_onshore_fom", 0.4)
	s.Capex = results.Table{Name: results.SheetCapex, Header: "Capex (Mil$)"}
	s.Capex.Add("wind_onshore_capex", 44)
	s.EnergyBiomass = results.Table{Name: results.SheetEnergyBiomass, Header: "energy (TWh)"}
	s.EnergyBiomass.Add("total_TWh", 0.1)
	s.EnergyHeat = results.Table{Name: results.SheetEnergyHeat, Header: "energy (TWh)"}
	s.EnergyHeat.Add("total_TWh", 0.2)
	s.EnergyElectricity = results.Table{Name: results.SheetEnergyElec, Header: "energy (TWh)"}
	s.EnergyElectricity.Add("total_TWh", 0.3)
	s.InvCosts = results.Table{Name: results.SheetInvCosts, Header: "inv_costs (Mil$)"}
	s.InvCosts.Add("wind_onshore_mio", 3.25)
	s.InvCosts.Add("total", 3.25)
	return s
}

func TestBuildSummaryXLSX(t *testing.T) {
	raw, err := BuildSummaryXLSX(sampleSummary("50", 40))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"capacities", "fom", "capex", "energy_biomass", "energy_heat", "energy_elec", "inv_costs"}, f.GetSheetList())

	v, err := f.GetCellValue("capacities", "B1")
	require.NoError(t, err)
	assert.Equal(t, "capacity_50", v)
	v, _ = f.GetCellValue("capacities", "A2")
	assert.Equal(t, "wind_onshore_invest_MW", v)
	v, _ = f.GetCellValue("capacities", "B2")
	assert.Equal(t, "40", v)
	v, _ = f.GetCellValue("inv_costs", "A3")
	assert.Equal(t, "total", v)
	v, _ = f.GetCellValue("inv_costs", "B3")
	assert.Equal(t, "3.25", v)
}

func TestBuildComparisonXLSX(t *testing.T) {
	raw, err := BuildComparisonXLSX([]*results.Summary{sampleSummary("50", 40), sampleSummary("25", 70)})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("capacities")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"key", "50", "25"}, rows[0])
	assert.Equal(t, []string{"wind_onshore_invest_MW", "40", "70"}, rows[1])

	_, err = BuildComparisonXLSX(nil)
	assert.Error(t, err)
}

func TestWriteSequencesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", SequencesFileName("50"))
	require.NoError(t, WriteSequencesCSV(path, sampleResults()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 5)
	header := rows[0]
	assert.Equal(t, "index", header[0])
	assert.Equal(t, "timestamp", header[1])
	assert.Equal(t, sc.WindOnshore+"->"+sc.BusElectricity, header[2])
	assert.Equal(t, "content("+sc.Battery+")", header[len(header)-2])
	assert.Equal(t, "content("+sc.TES+")", header[len(header)-1])

	assert.Equal(t, "2030-01-31T23:00:00Z", rows[2][1])
	assert.Equal(t, "20.000000", rows[2][2])
	assert.Equal(t, "4.000000", rows[4][len(header)-1])
}

func TestBuildSummaryPDF(t *testing.T) {
	raw, err := BuildSummaryPDF(sampleSummary("50", 40), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestWritePlots(t *testing.T) {
	dir := t.TempDir()
	paths, err := WritePlots(dir, "50", sampleResults())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "analysis_ts_overview_50.png"),
		filepath.Join(dir, "storage_D_50.png"),
		filepath.Join(dir, "storage_M_50.png"),
		filepath.Join(dir, "storage_H_50.png"),
	}, paths)
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")), p)
	}
}

func TestWriteStoragePNG_NoStorages(t *testing.T) {
	var buf bytes.Buffer
	err := WriteStoragePNG(&buf, results.New(index(2)), StoragePlots[0])
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	paths, err := Export(Options{Dir: dir, CSV: true, PDF: true}, sampleSummary("x", 1), sampleResults())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "results_overview_x.xlsx"),
		filepath.Join(dir, "sequences_x.csv"),
		filepath.Join(dir, "results_overview_x.pdf"),
	}, paths)
}
