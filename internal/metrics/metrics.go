// Package metrics exposes prometheus instruments for scenario runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles run metrics. A nil *Metrics records nothing.
type Metrics struct {
	RunsTotal     *prometheus.CounterVec
	SolveDuration *prometheus.HistogramVec
	ModelColumns  *prometheus.GaugeVec
	ModelRows     *prometheus.GaugeVec
	Objective     *prometheus.GaugeVec
}

// New constructs the metrics and registers them with reg; nil uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expansion_runs_total",
				Help: "Total scenario runs by status",
			},
			[]string{"status"},
		),
		SolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "expansion_solve_duration_seconds",
			Help:    "LP solve duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		}, []string{"solver"}),
		ModelColumns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "expansion_model_columns",
			Help: "Columns of the last formulated LP per scenario",
		}, []string{"scenario"}),
		ModelRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "expansion_model_rows",
			Help: "Rows of the last formulated LP per scenario",
		}, []string{"scenario"}),
		Objective: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "expansion_objective",
			Help: "Objective value of the last successful run per scenario",
		}, []string{"scenario"}),
	}
	reg.MustRegister(
		m.RunsTotal,
		m.SolveDuration,
		m.ModelColumns,
		m.ModelRows,
		m.Objective,
	)
	return m
}

func (m *Metrics) ObserveRun(status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveSolve(solver string, d time.Duration) {
	if m == nil {
		return
	}
	m.SolveDuration.WithLabelValues(solver).Observe(d.Seconds())
}

func (m *Metrics) ObserveModel(scenario string, columns, rows int) {
	if m == nil {
		return
	}
	m.ModelColumns.WithLabelValues(scenario).Set(float64(columns))
	m.ModelRows.WithLabelValues(scenario).Set(float64(rows))
}

func (m *Metrics) ObserveObjective(scenario string, v float64) {
	if m == nil {
		return
	}
	m.Objective.WithLabelValues(scenario).Set(v)
}
