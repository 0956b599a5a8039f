// Package metrics exposes the run's prometheus collectors and the
// operator wrappers that feed them.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mireska/sift/stream"
)

type Metrics struct {
	registry *prometheus.Registry

	RecordsIn    *prometheus.CounterVec
	RecordsOut   *prometheus.CounterVec
	EpochsClosed *prometheus.CounterVec
	SourceErrors prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.RecordsIn = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sift",
		Name:      "records_in_total",
		Help:      "Records fed into each query's entry operators.",
	}, []string{"query"})
	m.RecordsOut = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sift",
		Name:      "records_out_total",
		Help:      "Records that reached each query's sink.",
	}, []string{"query"})
	m.EpochsClosed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sift",
		Name:      "epochs_closed_total",
		Help:      "Window resets delivered to each query's sink.",
	}, []string{"query"})
	m.SourceErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sift",
		Name:      "source_errors_total",
		Help:      "Malformed or undeliverable source inputs.",
	})
	m.registry.MustRegister(m.RecordsIn, m.RecordsOut, m.EpochsClosed, m.SourceErrors)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InstrumentIn wraps a query entry so the records fed to it are
// counted.
func (m *Metrics) InstrumentIn(query string, next stream.Operator) stream.Operator {
	return &counting{records: m.RecordsIn.WithLabelValues(query), next: next}
}

// InstrumentOut wraps a query's terminal operator so emitted records
// and closed windows are counted.
func (m *Metrics) InstrumentOut(query string, next stream.Operator) stream.Operator {
	return &counting{
		records: m.RecordsOut.WithLabelValues(query),
		resets:  m.EpochsClosed.WithLabelValues(query),
		next:    next,
	}
}

// Snapshot flattens the registry into a JSON-friendly map for the
// stats endpoint: unlabeled counters as scalars, labeled ones as
// per-label maps.
func (m *Metrics) Snapshot() (map[string]any, error) {
	fams, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("metrics: gather: %w", err)
	}
	out := make(map[string]any, len(fams))
	for _, fam := range fams {
		ms := fam.GetMetric()
		if len(ms) == 1 && len(ms[0].GetLabel()) == 0 {
			out[fam.GetName()] = ms[0].GetCounter().GetValue()
			continue
		}
		byLabel := make(map[string]float64, len(ms))
		for _, metric := range ms {
			key := ""
			for i, lp := range metric.GetLabel() {
				if i > 0 {
					key += ","
				}
				key += lp.GetValue()
			}
			byLabel[key] = metric.GetCounter().GetValue()
		}
		out[fam.GetName()] = byLabel
	}
	return out, nil
}

type counting struct {
	records prometheus.Counter
	resets  prometheus.Counter
	next    stream.Operator
}

func (c *counting) Next(r stream.Record) error {
	c.records.Inc()
	return c.next.Next(r)
}

func (c *counting) Reset(r stream.Record) error {
	if c.resets != nil {
		c.resets.Inc()
	}
	return c.next.Reset(r)
}
