package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"energy-expansion/internal/results"

	"github.com/xuri/excelize/v2"
)

// SummaryFileName is the overview workbook of one scenario.
func SummaryFileName(tag string) string { return fmt.Sprintf("results_overview_%s.xlsx", tag) }

// BuildSummaryXLSX renders one sheet per summary table: keys in column A,
// values in column B under the table header.
func BuildSummaryXLSX(s *results.Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range s.Tables() {
		if i == 0 {
			f.SetSheetName("Sheet1", t.Name)
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return nil, err
		}
		_ = f.SetCellValue(t.Name, "B1", t.Header)
		for r, e := range t.Entries {
			row := r + 2
			_ = f.SetCellValue(t.Name, fmt.Sprintf("A%d", row), e.Key)
			_ = f.SetCellValue(t.Name, fmt.Sprintf("B%d", row), e.Value)
		}
		_ = f.SetColWidth(t.Name, "A", "A", 34)
		_ = f.SetColWidth(t.Name, "B", "B", 18)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSummaryXLSX writes the overview workbook to path.
func WriteSummaryXLSX(path string, s *results.Summary) error {
	raw, err := BuildSummaryXLSX(s)
	if err != nil {
		return fmt.Errorf("build summary workbook: %w", err)
	}
	return writeFile(path, raw)
}

// BuildComparisonXLSX puts the tables of several scenarios side by side:
// one sheet per table, one column per scenario tag.
func BuildComparisonXLSX(summaries []*results.Summary) ([]byte, error) {
	if len(summaries) == 0 {
		return nil, fmt.Errorf("comparison: no summaries")
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range summaries[0].Tables() {
		sheet := t.Name
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, "A1", "key")
		rowOf := map[string]int{}
		next := 2
		for c, s := range summaries {
			col := c + 2
			cell, _ := excelize.CoordinatesToCellName(col, 1)
			_ = f.SetCellValue(sheet, cell, s.Tag)
			tab, ok := s.Table(sheet)
			if !ok {
				continue
			}
			for _, e := range tab.Entries {
				row, seen := rowOf[e.Key]
				if !seen {
					row = next
					next++
					rowOf[e.Key] = row
					_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.Key)
				}
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, cell, e.Value)
			}
		}
		_ = f.SetColWidth(sheet, "A", "A", 34)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteComparisonXLSX(path string, summaries []*results.Summary) error {
	raw, err := BuildComparisonXLSX(summaries)
	if err != nil {
		return fmt.Errorf("build comparison workbook: %w", err)
	}
	return writeFile(path, raw)
}

func writeFile(path string, raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
