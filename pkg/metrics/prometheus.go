package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesSent *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
	signalsTotal *prometheus.CounterVec
	tradesTotal  *prometheus.CounterVec
	runState     *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		messagesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coindash_messages_sent_total",
				Help: "Total number of messages sent to backend",
			},
			[]string{"backend", "symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coindash_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coindash_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coindash_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coindash_signals_total",
				Help: "Signals generated during simulation by symbol and type",
			},
			[]string{"symbol", "type"},
		),
		tradesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coindash_trades_total",
				Help: "Simulated trades executed by symbol and side",
			},
			[]string{"symbol", "side"},
		),
		runState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coindash_backtest_run_state",
				Help: "Current backtest lifecycle state (1 for the active state)",
			},
			[]string{"state"},
		),
	}
}

// RecordMessageSent records a message sent to a backend.
func (r *Recorder) RecordMessageSent(backend, symbol string) {
	r.messagesSent.WithLabelValues(backend, symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordSignal records one generated signal.
func (r *Recorder) RecordSignal(symbol, sigType string) {
	r.signalsTotal.WithLabelValues(symbol, sigType).Inc()
}

// RecordTrade records one executed simulated trade.
func (r *Recorder) RecordTrade(symbol, side string) {
	r.tradesTotal.WithLabelValues(symbol, side).Inc()
}

// RecordRunState flips the lifecycle gauge to the given state.
func (r *Recorder) RecordRunState(state string) {
	for _, s := range []string{"idle", "running", "completed", "failed"} {
		v := 0.0
		if s == state {
			v = 1.0
		}
		r.runState.WithLabelValues(s).Set(v)
	}
}
