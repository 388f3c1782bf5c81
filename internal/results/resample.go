package results

import (
	"errors"
	"fmt"
	"time"
)

// Freq is a resampling bucket: H (hour), D (day) or M (month).
type Freq string

const (
	Hourly  Freq = "H"
	Daily   Freq = "D"
	Monthly Freq = "M"
)

// Agg combines the values of one bucket.
type Agg string

const (
	AggSum  Agg = "sum"
	AggMean Agg = "mean"
)

// Resample buckets an hourly series. Buckets are labelled with their start
// and follow the location of the index.
func Resample(index []time.Time, values []float64, freq Freq, agg Agg) ([]time.Time, []float64, error) {
	if len(index) != len(values) {
		return nil, nil, fmt.Errorf("resample: %d timestamps for %d values", len(index), len(values))
	}
	if agg != AggSum && agg != AggMean {
		return nil, nil, fmt.Errorf("resample: unsupported aggregation %q", agg)
	}
	bucket, err := bucketFunc(freq)
	if err != nil {
		return nil, nil, err
	}

	var (
		labels []time.Time
		sums   []float64
		counts []int
	)
	for i, ts := range index {
		b := bucket(ts)
		if n := len(labels); n == 0 || !labels[n-1].Equal(b) {
			if n > 0 && b.Before(labels[n-1]) {
				return nil, nil, errors.New("resample: index is not sorted")
			}
			labels = append(labels, b)
			sums = append(sums, 0)
			counts = append(counts, 0)
		}
		sums[len(sums)-1] += values[i]
		counts[len(counts)-1]++
	}
	if agg == AggMean {
		for i := range sums {
			sums[i] /= float64(counts[i])
		}
	}
	return labels, sums, nil
}

func bucketFunc(freq Freq) (func(time.Time) time.Time, error) {
	switch freq {
	case Hourly:
		return func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
		}, nil
	case Daily:
		return func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		}, nil
	case Monthly:
		return func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		}, nil
	}
	return nil, fmt.Errorf("resample: unsupported frequency %q", freq)
}
