package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RecordsProcessed *prometheus.CounterVec
	APIErrors        prometheus.Counter
	RequestSeconds   *prometheus.HistogramVec
	SinkWrites       *prometheus.CounterVec
	LastRunSuccess   prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RecordsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geoenrich_records_processed_total",
			Help: "Total number of source records processed, by geocoding outcome.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geoenrich_provider_api_errors_total",
			Help: "Total number of failed requests to the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geoenrich_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		SinkWrites: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geoenrich_sink_writes_total",
			Help: "Total number of result set writes to the destination store.",
		}, []string{"mode", "status"}),
		LastRunSuccess: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geoenrich_last_run_success",
			Help: "Whether the last enrichment run succeeded (1) or failed (0).",
		}),
		LastRunTimestamp: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geoenrich_last_run_timestamp_seconds",
			Help: "Unix time at which the last enrichment run finished.",
		}),
	}
}
