// Package report writes the per-scenario outputs: the overview workbook,
// optional hourly CSV and PDF, and the PNG figures.
package report

import (
	"path/filepath"

	"energy-expansion/internal/results"
)

// Options selects the outputs of one scenario. The workbook is always written.
type Options struct {
	Dir   string
	Plots bool
	PDF   bool
	CSV   bool
}

// Export writes the selected outputs into opts.Dir and returns the paths
// written so far, also on error.
func Export(opts Options, s *results.Summary, r *results.Results) ([]string, error) {
	var written []string

	path := filepath.Join(opts.Dir, SummaryFileName(s.Tag))
	if err := WriteSummaryXLSX(path, s); err != nil {
		return written, err
	}
	written = append(written, path)

	if opts.CSV {
		path := filepath.Join(opts.Dir, SequencesFileName(s.Tag))
		if err := WriteSequencesCSV(path, r); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if opts.PDF {
		path := filepath.Join(opts.Dir, SummaryPDFFileName(s.Tag))
		if err := WriteSummaryPDF(path, s); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if opts.Plots {
		paths, err := WritePlots(opts.Dir, s.Tag, r)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
