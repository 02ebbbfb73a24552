package refresh

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/david/becas-dashboard/internal/dataset"
	"github.com/david/becas-dashboard/internal/ingest"
)

// Metrics exposes refresh cycle counters to Prometheus.
type Metrics struct {
	cycles      *prometheus.CounterVec
	duration    prometheus.Histogram
	records     *prometheus.GaugeVec
	lastSuccess prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "becas",
			Subsystem: "refresh",
			Name:      "cycles_total",
			Help:      "Refresh cycles by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "becas",
			Subsystem: "refresh",
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a refresh cycle, load and projection included.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "becas",
			Subsystem: "dataset",
			Name:      "records",
			Help:      "Rows in the published snapshot per dataset.",
		}, []string{"dataset"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "becas",
			Subsystem: "refresh",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful refresh.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.cycles, m.duration, m.records, m.lastSuccess)
	}
	return m
}

func (m *Metrics) observe(outcome string, elapsed time.Duration) {
	m.cycles.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) published(snap *dataset.Snapshot) {
	m.records.WithLabelValues(string(ingest.KindBeca18)).Set(float64(len(snap.Beca18.Universities)))
	m.records.WithLabelValues(string(ingest.KindInstitutions)).Set(float64(len(snap.Institutions.Records)))
	m.records.WithLabelValues(string(ingest.KindIntegral)).Set(float64(len(snap.Integral.Entries)))
	m.lastSuccess.Set(float64(snap.LoadedAt.Unix()))
}
