package report

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"time"

	"energy-expansion/internal/results"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const plotDPI = 300

// OverviewPlotFileName is the electricity/heat overview of one scenario.
func OverviewPlotFileName(tag string) string {
	return fmt.Sprintf("analysis_ts_overview_%s.png", tag)
}

// StoragePlotFileName is the storage discharge plot at one frequency.
func StoragePlotFileName(freq results.Freq, tag string) string {
	return fmt.Sprintf("storage_%s_%s.png", freq, tag)
}

// StoragePlot is one storage figure: the resampling and how buckets combine.
type StoragePlot struct {
	Freq results.Freq
	Agg  results.Agg
}

// StoragePlots are the daily and monthly sums and the hourly mean.
var StoragePlots = []StoragePlot{
	{Freq: results.Daily, Agg: results.AggSum},
	{Freq: results.Monthly, Agg: results.AggSum},
	{Freq: results.Hourly, Agg: results.AggMean},
}

var palette = []color.Color{
	color.RGBA{B: 255, A: 255},                 // blue
	color.RGBA{R: 255, G: 215, A: 255},         // gold
	color.RGBA{A: 255},                         // black
	color.RGBA{G: 128, A: 255},                 // green
	color.RGBA{R: 255, B: 255, A: 255},         // magenta
	color.RGBA{G: 255, B: 255, A: 255},         // cyan
	color.RGBA{R: 255, G: 140, A: 255},         // orange
	color.RGBA{R: 128, G: 128, B: 128, A: 255}, // gray
}

// WriteOverviewPNG draws electricity (top) and heat (bottom) sequences.
func WriteOverviewPNG(w io.Writer, r *results.Results) error {
	elec, err := seriesPlot("Electricity", "Power [MW]", r.Timeindex, r.ElectricitySeries())
	if err != nil {
		return err
	}
	heat, err := seriesPlot("Heat", "Power [MW]", r.Timeindex, r.HeatSeries())
	if err != nil {
		return err
	}
	return renderPNG(w, [][]*plot.Plot{{elec}, {heat}}, 15*vg.Inch, 10*vg.Inch)
}

// WriteStoragePNG draws one panel per storage with its discharge flow
// resampled as configured.
func WriteStoragePNG(w io.Writer, r *results.Results, sp StoragePlot) error {
	row := []*plot.Plot{}
	for i, s := range r.StorageDischarge() {
		idx, vals, err := results.Resample(r.Timeindex, s.Values, sp.Freq, sp.Agg)
		if err != nil {
			return fmt.Errorf("storage plot %s: %w", s.Name, err)
		}
		ylabel := ""
		if i == 0 {
			ylabel = "State of Charge [MWh]"
		}
		p, err := seriesPlot(s.Name, ylabel, idx, []results.Series{{Name: s.Name, Values: vals}}, palette[i%len(palette)])
		if err != nil {
			return err
		}
		row = append(row, p)
	}
	if len(row) == 0 {
		return fmt.Errorf("storage plot: no storage results")
	}
	return renderPNG(w, [][]*plot.Plot{row}, 15*vg.Inch, 5*vg.Inch)
}

// WritePlots writes the overview and the storage figures into dir and
// returns the written paths.
func WritePlots(dir, tag string, r *results.Results) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	write := func(name string, render func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := render(f); err != nil {
			f.Close()
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if err := write(OverviewPlotFileName(tag), func(w io.Writer) error { return WriteOverviewPNG(w, r) }); err != nil {
		return written, err
	}
	for _, sp := range StoragePlots {
		sp := sp
		if err := write(StoragePlotFileName(sp.Freq, tag), func(w io.Writer) error { return WriteStoragePNG(w, r, sp) }); err != nil {
			return written, err
		}
	}
	return written, nil
}

func seriesPlot(title, ylabel string, index []time.Time, series []results.Series, colors ...color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = ylabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true

	for i, s := range series {
		xys := make(plotter.XYs, len(s.Values))
		for j, v := range s.Values {
			xys[j].X = float64(index[j].Unix())
			xys[j].Y = v
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("plot %s: %w", s.Name, err)
		}
		if i < len(colors) {
			l.Color = colors[i]
		} else {
			l.Color = palette[i%len(palette)]
		}
		p.Add(l)
		p.Legend.Add(s.Name, l)
	}
	return p, nil
}

func renderPNG(w io.Writer, plots [][]*plot.Plot, width, height vg.Length) error {
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(plotDPI))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: len(plots[0]),
		PadX: vg.Millimeter * 6,
		PadY: vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}
	png := vgimg.PngCanvas{Canvas: img}
	_, err := png.WriteTo(w)
	return err
}
