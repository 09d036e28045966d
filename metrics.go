package fileclean

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Stage names used as metric labels
const (
	stageMissing    = "missing"
	stageTypes      = "types"
	stageDuplicates = "duplicates"
	stageNames      = "names"
	stageText       = "text"
	stageReport     = "report"
)

// Metrics counts the work done by cleaning sessions.
type Metrics struct {
	StageRuns       *prometheus.CounterVec
	RowsRemoved     *prometheus.CounterVec
	ValuesFilled    *prometheus.CounterVec
	ValuesNullified *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fileclean",
			Name:      "stage_runs_total",
			Help:      "Number of cleaning stage executions.",
		}, []string{"stage"}),
		RowsRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fileclean",
			Name:      "rows_removed_total",
			Help:      "Number of rows removed by a cleaning stage.",
		}, []string{"stage"}),
		ValuesFilled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fileclean",
			Name:      "values_filled_total",
			Help:      "Number of null values replaced by a cleaning stage.",
		}, []string{"stage"}),
		ValuesNullified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fileclean",
			Name:      "values_nullified_total",
			Help:      "Number of values that failed coercion and became null.",
		}, []string{"stage"}),
	}
	if reg != nil {
		reg.MustRegister(m.StageRuns, m.RowsRemoved, m.ValuesFilled, m.ValuesNullified)
	}
	return m
}

// observe records one stage run. A nil *Metrics is a no-op.
func (m *Metrics) observe(stage string, removed, filled, nullified int) {
	if m == nil {
		return
	}
	m.StageRuns.WithLabelValues(stage).Inc()
	if removed > 0 {
		m.RowsRemoved.WithLabelValues(stage).Add(float64(removed))
	}
	if filled > 0 {
		m.ValuesFilled.WithLabelValues(stage).Add(float64(filled))
	}
	if nullified > 0 {
		m.ValuesNullified.WithLabelValues(stage).Add(float64(nullified))
	}
}
