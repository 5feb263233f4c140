// Package metrics counts decode outcomes and comparisons in a private
// prometheus registry that can be written out for the node exporter's
// textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/semdoc/diff"
	"github.com/c360studio/semdoc/word"
)

const namespace = "semdoc"

// Metrics holds the collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	documents       prometheus.Counter
	structures      *prometheus.CounterVec
	decodeDuration  prometheus.Histogram
	comparisons     prometheus.Counter
	changedItems    prometheus.Histogram
	compareDuration prometheus.Histogram
	failures        *prometheus.CounterVec
}

// New registers every collector in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_decoded_total",
			Help:      "Documents assembled successfully.",
		}),
		structures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "structures_total",
			Help:      "Sub-structure decode outcomes by structure and status.",
		}, []string{"structure", "status"}),
		decodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decode_duration_seconds",
			Help:      "Time to open and assemble one document.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		comparisons: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Document comparisons completed.",
		}),
		changedItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "comparison_changed_items",
			Help:      "Changed logical items per comparison.",
			Buckets:   []float64{0, 1, 5, 25, 100, 500},
		}),
		compareDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compare_duration_seconds",
			Help:      "Time to compare two assembled documents.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Fatal failures by stage.",
		}, []string{"stage"}),
	}
	m.registry.MustRegister(
		m.documents, m.structures, m.decodeDuration,
		m.comparisons, m.changedItems, m.compareDuration, m.failures,
	)
	return m
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveDocument records an assembled document and its per-structure outcomes.
func (m *Metrics) ObserveDocument(doc *word.Document, took time.Duration) {
	m.documents.Inc()
	m.decodeDuration.Observe(took.Seconds())
	for _, o := range doc.Outcomes {
		m.structures.WithLabelValues(o.Structure, string(o.Status)).Inc()
	}
}

// ObserveReport records a finished comparison.
func (m *Metrics) ObserveReport(r *diff.Report, took time.Duration) {
	m.comparisons.Inc()
	m.changedItems.Observe(float64(r.Summary.ChangedItems))
	m.compareDuration.Observe(took.Seconds())
}

// ObserveFailure counts a fatal error at the named stage ("decode", "compare", ...).
func (m *Metrics) ObserveFailure(stage string) {
	m.failures.WithLabelValues(stage).Inc()
}

// WriteTextfile writes every metric in the text exposition format. The file
// is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
