package report

import (
	"bytes"
	"fmt"
	"time"

	"energy-expansion/internal/results"

	"github.com/jung-kurt/gofpdf"
)

// SummaryPDFFileName is the printable overview of one scenario.
func SummaryPDFFileName(tag string) string { return fmt.Sprintf("results_overview_%s.pdf", tag) }

// BuildSummaryPDF renders the capacity, investment cost and electricity mix
// tables of a scenario.
func BuildSummaryPDF(s *results.Summary, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Energy System Expansion Overview")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Scenario: %s", s.Tag))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Objective: %.2f", s.Objective))
	pdf.Ln(5)
	if !generated.IsZero() {
		pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generated.Format(time.RFC3339)))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	for _, t := range []*results.Table{&s.Capacities, &s.InvCosts, &s.EnergyElectricity} {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(70, 5, t.Name, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 5, t.Header, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, e := range t.Entries {
			pdf.CellFormat(70, 5, e.Key, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 5, fmt.Sprintf("%.3f", e.Value), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteSummaryPDF(path string, s *results.Summary) error {
	raw, err := BuildSummaryPDF(s, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("build summary pdf: %w", err)
	}
	return writeFile(path, raw)
}
