package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ordersync/internal/model"
)

// Registry holds the sync counters. It implements reconcile.Metrics.
type Registry struct {
	reg         *prometheus.Registry
	Orders      *prometheus.CounterVec
	Runs        *prometheus.CounterVec
	RunDuration prometheus.Histogram
	LastFetched prometheus.Gauge
	LastSuccess prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordersync_orders_total",
		Help: "Orders processed by outcome.",
	}, []string{"outcome"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordersync_runs_total",
		Help: "Sync runs by final status.",
	}, []string{"status"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ordersync_run_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})
	lastFetched := prometheus.NewGauge(prometheus.GaugeOpts{Name: "ordersync_last_run_fetched"})
	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{Name: "ordersync_last_run_finished_timestamp_seconds"})

	r.MustRegister(orders, runs, duration, lastFetched, lastSuccess)
	return &Registry{
		reg:         r,
		Orders:      orders,
		Runs:        runs,
		RunDuration: duration,
		LastFetched: lastFetched,
		LastSuccess: lastSuccess,
	}
}

func (r *Registry) ObserveOrder(outcome string) {
	r.Orders.WithLabelValues(outcome).Inc()
}

func (r *Registry) ObserveRun(run model.SyncRun) {
	r.Runs.WithLabelValues(run.Status).Inc()
	r.RunDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())
	r.LastFetched.Set(float64(run.Fetched))
	r.LastSuccess.Set(float64(run.FinishedAt.Unix()))
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
