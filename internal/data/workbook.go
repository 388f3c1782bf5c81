package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet names of a scenario workbook.
const (
	SheetTimeseries = "timeseries"
	SheetCapacity   = "capacity"
	SheetTech       = "tech"
	SheetCosts      = "costs"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// LoadWorkbook reads the four input sheets of a scenario workbook. Only the
// xlsx format is read; legacy .xls files have to be re-saved first.
func LoadWorkbook(path string) (*Inputs, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if strings.EqualFold(filepath.Ext(path), ".xls") && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open workbook %s: .xls is not supported, re-save it as .xlsx: %w", path, err)
		}
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	ts, err := readTimeseries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	in := &Inputs{Path: path, Timeseries: ts}
	for _, s := range []struct {
		name string
		dst  **Table
	}{
		{SheetCapacity, &in.Capacity},
		{SheetTech, &in.Tech},
		{SheetCosts, &in.Costs},
	} {
		t, err := readTable(f, s.name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		*s.dst = t
	}
	return in, nil
}

func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w %q", ErrMissingSheet, sheet)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	return rows, nil
}

func readTable(f *excelize.File, sheet string) (*Table, error) {
	rows, err := sheetRows(f, sheet)
	if err != nil {
		return nil, err
	}
	header := rows[0]
	t := NewTable(sheet)
	for r, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		key := strings.TrimSpace(row[0])
		for c := 1; c < len(header); c++ {
			col := strings.TrimSpace(header[c])
			if col == "" {
				continue
			}
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			v, err := parseNumber(cell)
			if err != nil {
				return nil, fmt.Errorf("sheet %q row %d column %q: %w", sheet, r+2, col, err)
			}
			t.Set(col, key, v)
		}
	}
	return t, nil
}

func readTimeseries(f *excelize.File) (*Timeseries, error) {
	rows, err := sheetRows(f, SheetTimeseries)
	if err != nil {
		return nil, err
	}
	header := rows[0]
	var index []time.Time
	cols := make([][]float64, len(header))
	for r, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		ts, err := parseTimestamp(row[0])
		if err != nil {
			return nil, fmt.Errorf("sheet %q row %d: %w", SheetTimeseries, r+2, err)
		}
		index = append(index, ts)
		for c := 1; c < len(header); c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			v, err := parseNumber(cell)
			if err != nil {
				return nil, fmt.Errorf("sheet %q row %d column %q: %w", SheetTimeseries, r+2, header[c], err)
			}
			cols[c] = append(cols[c], v)
		}
	}
	if len(index) == 0 {
		return nil, fmt.Errorf("sheet %q has no timesteps", SheetTimeseries)
	}
	if err := checkHourly(index); err != nil {
		return nil, err
	}
	out := NewTimeseries(index)
	for c := 1; c < len(header); c++ {
		name := strings.TrimSpace(header[c])
		if name == "" {
			continue
		}
		if err := out.Add(name, cols[c]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func checkHourly(index []time.Time) error {
	for i := 1; i < len(index); i++ {
		if d := index[i].Sub(index[i-1]); d != time.Hour {
			return fmt.Errorf("timeseries is not hourly: step %d is %s", i, d)
		}
	}
	return nil
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return t.Round(time.Second), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// WriteWorkbook writes inputs back into the four-sheet layout LoadWorkbook
// reads. Timestamps are written as text so they survive any locale.
func WriteWorkbook(path string, in *Inputs) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SheetTimeseries)
	ts := in.Timeseries
	_ = f.SetCellValue(SheetTimeseries, "A1", "timestamp")
	for c, name := range ts.Columns {
		cell, _ := excelize.CoordinatesToCellName(c+2, 1)
		_ = f.SetCellValue(SheetTimeseries, cell, name)
	}
	for r, at := range ts.Index {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		_ = f.SetCellValue(SheetTimeseries, cell, at.Format("2006-01-02 15:04:05"))
		for c, name := range ts.Columns {
			cell, _ := excelize.CoordinatesToCellName(c+2, r+2)
			_ = f.SetCellValue(SheetTimeseries, cell, ts.values[name][r])
		}
	}

	for _, t := range []*Table{in.Capacity, in.Tech, in.Costs} {
		if t == nil {
			continue
		}
		if _, err := f.NewSheet(t.Name); err != nil {
			return err
		}
		_ = f.SetCellValue(t.Name, "A1", "parameter")
		for c, col := range t.Columns {
			cell, _ := excelize.CoordinatesToCellName(c+2, 1)
			_ = f.SetCellValue(t.Name, cell, col)
		}
		for r, row := range t.Rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			_ = f.SetCellValue(t.Name, cell, row)
			for c, col := range t.Columns {
				v, ok := t.values[col][row]
				if !ok {
					continue
				}
				cell, _ := excelize.CoordinatesToCellName(c+2, r+2)
				_ = f.SetCellValue(t.Name, cell, v)
			}
		}
	}
	return f.SaveAs(path)
}
