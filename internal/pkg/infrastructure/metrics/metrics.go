package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "latitude_explorer_queries_total",
		Help: "Total number of city queries by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
	QueryDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "latitude_explorer_query_duration_ms",
		Help:    "City query duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"endpoint"})
	ReturnedCities = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "latitude_explorer_returned_cities",
		Help:    "Number of cities returned by the nearby latitude query",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 200, 500},
	})
	StorageBackend = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "latitude_explorer_storage_backend",
		Help: "Set to 1 for the storage backend selected at startup",
	}, []string{"backend"})
)

func init() {
	prometheus.MustRegister(QueriesTotal, QueryDurationMs, ReturnedCities, StorageBackend)
}

const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

func Handler() http.Handler {
	return promhttp.Handler()
}
