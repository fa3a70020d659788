package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Histogram
	ordersExecuted   *prometheus.CounterVec
	signalsGenerated *prometheus.CounterVec
	badgesAwarded    *prometheus.CounterVec
	barsLoaded       prometheus.Counter
}

// NewRegistry creates a metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paperline_runs_total",
				Help: "Total number of backtest runs by terminal state",
			},
			[]string{"state"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "paperline_run_duration_seconds",
				Help:    "Backtest run duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		ordersExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paperline_orders_executed_total",
				Help: "Total number of simulated fills",
			},
			[]string{"side"},
		),
		signalsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paperline_signals_generated_total",
				Help: "Total number of signals emitted by generators",
			},
			[]string{"strategy"},
		),
		badgesAwarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paperline_badges_total",
				Help: "Total number of weekly target badges awarded",
			},
			[]string{"color"},
		),
		barsLoaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "paperline_bars_loaded_total",
				Help: "Total number of bars served to the engine",
			},
		),
	}

	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.ordersExecuted)
	reg.MustRegister(r.signalsGenerated)
	reg.MustRegister(r.badgesAwarded)
	reg.MustRegister(r.barsLoaded)

	return r
}

// RecordRun records a finished backtest run.
func (r *Registry) RecordRun(state string, duration float64) {
	r.runsTotal.WithLabelValues(state).Inc()
	r.runDuration.Observe(duration)
}

// RecordOrders adds executed fill counts for a side.
func (r *Registry) RecordOrders(side string, count int) {
	r.ordersExecuted.WithLabelValues(side).Add(float64(count))
}

// RecordSignals adds generated signal counts for a strategy.
func (r *Registry) RecordSignals(strategy string, count int) {
	r.signalsGenerated.WithLabelValues(strategy).Add(float64(count))
}

// RecordBadge records an awarded badge color.
func (r *Registry) RecordBadge(color string) {
	r.badgesAwarded.WithLabelValues(color).Inc()
}

// RecordBarsLoaded adds to the served-bars counter.
func (r *Registry) RecordBarsLoaded(count int) {
	r.barsLoaded.Add(float64(count))
}
