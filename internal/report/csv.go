package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"energy-expansion/internal/results"
)

// SequencesFileName is the hourly flow table of one scenario.
func SequencesFileName(tag string) string { return fmt.Sprintf("sequences_%s.csv", tag) }

// WriteSequencesCSV writes one row per timestep with every flow and every
// storage content as columns.
func WriteSequencesCSV(path string, r *results.Results) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	keys := r.Keys()
	storages := make([]string, 0, len(r.Storages))
	for label := range r.Storages {
		storages = append(storages, label)
	}
	sort.Strings(storages)

	header := []string{"index", "timestamp"}
	for _, k := range keys {
		header = append(header, k.From+"->"+k.To)
	}
	for _, label := range storages {
		header = append(header, "content("+label+")")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, ts := range r.Timeindex {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(i), fmtTime(ts))
		for _, k := range keys {
			row = append(row, fmtAt(r.Flows[k].Sequence, i))
		}
		for _, label := range storages {
			row = append(row, fmtAt(r.Storages[label].Content, i))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtAt(seq []float64, i int) string {
	if i >= len(seq) {
		return ""
	}
	return fmtFloat(seq[i])
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
