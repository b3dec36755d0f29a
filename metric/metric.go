// Package metric exposes run metrics for the importer: graph fetch volume
// and latency, triples accumulated, and CMS submission outcomes.
package metric

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360studio/semexhibit/graph"
)

// Metrics contains the importer's collectors.
type Metrics struct {
	GraphFetches  *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	TriplesLoaded prometheus.Counter
	Submissions   *prometheus.CounterVec
}

// NewMetrics creates the collectors. Register attaches them to a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		GraphFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semexhibit",
				Subsystem: "graph",
				Name:      "fetches_total",
				Help:      "Total number of graph fetches by outcome",
			},
			[]string{"status"},
		),
		FetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "semexhibit",
				Subsystem: "graph",
				Name:      "fetch_duration_seconds",
				Help:      "Graph fetch latency including throttle wait",
				Buckets:   prometheus.DefBuckets,
			},
		),
		TriplesLoaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semexhibit",
				Subsystem: "graph",
				Name:      "triples_loaded_total",
				Help:      "Total number of triples merged into the store",
			},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semexhibit",
				Subsystem: "omeka",
				Name:      "submissions_total",
				Help:      "Total number of CMS submissions by kind and outcome",
			},
			[]string{"kind", "status"},
		),
	}
}

// Register attaches all collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.GraphFetches, m.FetchDuration, m.TriplesLoaded, m.Submissions,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordSubmission counts one submission outcome.
func (m *Metrics) RecordSubmission(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Submissions.WithLabelValues(kind, status).Inc()
}

// InstrumentResolver wraps a resolver so every fetch is counted and timed.
func InstrumentResolver(r graph.Resolver, m *Metrics) graph.Resolver {
	return &instrumentedResolver{next: r, metrics: m}
}

type instrumentedResolver struct {
	next    graph.Resolver
	metrics *Metrics
}

func (r *instrumentedResolver) Fetch(ctx context.Context, id graph.Identifier) ([]graph.Triple, error) {
	start := time.Now()
	triples, err := r.next.Fetch(ctx, id)
	r.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.GraphFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	r.metrics.GraphFetches.WithLabelValues("ok").Inc()
	r.metrics.TriplesLoaded.Add(float64(len(triples)))
	return triples, nil
}

// Serve exposes reg on addr at /metrics until ctx is canceled. It is meant
// for long imports where progress is worth watching; errors are logged,
// never fatal.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.Debug("metrics listener started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics listener failed", "addr", addr, "error", err)
		}
	}()
}
