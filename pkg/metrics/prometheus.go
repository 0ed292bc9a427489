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
	quotes       *prometheus.CounterVec
	sourceFetch  *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		messagesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aetherpay_messages_sent_total",
				Help: "Total number of messages sent to backend",
			},
			[]string{"backend", "pair"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aetherpay_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aetherpay_last_price",
				Help: "Last recorded price for a pair",
			},
			[]string{"pair"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aetherpay_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		quotes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aetherpay_quotes_total",
				Help: "Quote decisions by category and strategy",
			},
			[]string{"category", "strategy"},
		),
		sourceFetch: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aetherpay_source_fetch_total",
				Help: "Price source fetch attempts by outcome",
			},
			[]string{"source", "outcome"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aetherpay_quote_cache_lookups_total",
				Help: "Quote cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// RecordMessageSent records a message sent to a backend.
func (r *Recorder) RecordMessageSent(backend, pair string) {
	r.messagesSent.WithLabelValues(backend, pair).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a pair.
func (r *Recorder) RecordLastPrice(pair string, price float64) {
	r.lastPrice.WithLabelValues(pair).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordQuote records one quote decision.
func (r *Recorder) RecordQuote(category, strategy string) {
	r.quotes.WithLabelValues(category, strategy).Inc()
}

// RecordSourceFetch records a price source fetch outcome.
func (r *Recorder) RecordSourceFetch(source, outcome string) {
	r.sourceFetch.WithLabelValues(source, outcome).Inc()
}

// RecordCacheLookup records a quote cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}
