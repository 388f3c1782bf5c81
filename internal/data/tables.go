package data

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingSheet  = errors.New("missing sheet")
	ErrMissingColumn = errors.New("missing column")
	ErrMissingRow    = errors.New("missing row")
)

// Table is a parameter sheet: one column per technology, one row per
// parameter. Get(column, row) mirrors costs["onshore"]["capex"].
type Table struct {
	Name    string
	Columns []string
	Rows    []string
	values  map[string]map[string]float64
}

func NewTable(name string) *Table {
	return &Table{Name: name, values: map[string]map[string]float64{}}
}

// Set stores a value, registering the column and row on first use.
func (t *Table) Set(column, row string, v float64) {
	col, ok := t.values[column]
	if !ok {
		col = map[string]float64{}
		t.values[column] = col
		t.Columns = append(t.Columns, column)
	}
	if !t.hasRow(row) {
		t.Rows = append(t.Rows, row)
	}
	col[row] = v
}

func (t *Table) Get(column, row string) (float64, error) {
	col, ok := t.values[column]
	if !ok {
		return 0, fmt.Errorf("%s: %w %q", t.Name, ErrMissingColumn, column)
	}
	v, ok := col[row]
	if !ok {
		return 0, fmt.Errorf("%s[%s]: %w %q", t.Name, column, ErrMissingRow, row)
	}
	return v, nil
}

// Lookup is Get for optional parameters: absent cells read as def.
func (t *Table) Lookup(column, row string, def float64) float64 {
	v, err := t.Get(column, row)
	if err != nil {
		return def
	}
	return v
}

func (t *Table) HasColumn(column string) bool {
	_, ok := t.values[column]
	return ok
}

func (t *Table) hasRow(row string) bool {
	for _, r := range t.Rows {
		if r == row {
			return true
		}
	}
	return false
}

// Timeseries holds hourly profiles sharing one time index.
type Timeseries struct {
	Index   []time.Time
	Columns []string
	values  map[string][]float64
}

func NewTimeseries(index []time.Time) *Timeseries {
	return &Timeseries{Index: index, values: map[string][]float64{}}
}

// Add registers a column. The values slice must match the index length.
func (ts *Timeseries) Add(name string, values []float64) error {
	if len(values) != len(ts.Index) {
		return fmt.Errorf("timeseries column %q has %d values, index has %d", name, len(values), len(ts.Index))
	}
	if _, ok := ts.values[name]; !ok {
		ts.Columns = append(ts.Columns, name)
	}
	ts.values[name] = values
	return nil
}

func (ts *Timeseries) Series(name string) ([]float64, error) {
	v, ok := ts.values[name]
	if !ok {
		return nil, fmt.Errorf("timeseries: %w %q", ErrMissingColumn, name)
	}
	return v, nil
}

func (ts *Timeseries) Len() int { return len(ts.Index) }

// Truncate keeps the first n timesteps. n <= 0 or n >= Len() is a no-op.
func (ts *Timeseries) Truncate(n int) {
	if n <= 0 || n >= len(ts.Index) {
		return
	}
	ts.Index = ts.Index[:n]
	for k, v := range ts.values {
		ts.values[k] = v[:n]
	}
}

// Inputs is the content of one scenario workbook.
type Inputs struct {
	Path       string
	Timeseries *Timeseries
	Capacity   *Table
	Tech       *Table
	Costs      *Table
}

// Truncate limits the horizon to the first n hours.
func (in *Inputs) Truncate(n int) {
	if in == nil || in.Timeseries == nil {
		return
	}
	in.Timeseries.Truncate(n)
}
