package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	QuoteLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aetherpay",
			Subsystem: "quote",
			Name:      "latency_seconds",
			Help:      "Latency of quote endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	QuoteErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aetherpay",
			Subsystem: "quote",
			Name:      "errors_total",
			Help:      "Errors by quote endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(QuoteLatency, QuoteErrors)
	})
}
