package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultEmpty   = "empty"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	cacheHits     prometheus.Counter
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	datasetRows   prometheus.Gauge
	llmRequests   *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
}

func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "recommender_dataset_cache_hits_total",
			Help: "Dataset reads served from the in-memory cache",
		}),
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommender_dataset_fetches_total",
				Help: "Dataset refreshes from the remote source by result and format",
			},
			[]string{"result", "format"},
		),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommender_dataset_fetch_duration_seconds",
			Help:    "Duration of dataset fetch and parse in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		datasetRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "recommender_dataset_rows",
			Help: "Number of rows in the cached dataset",
		}),
		llmRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommender_llm_requests_total",
				Help: "Chat-completion calls by model and result",
			},
			[]string{"model", "result"},
		),
		llmLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recommender_llm_latency_seconds",
				Help:    "Latency of chat-completion calls in seconds",
				Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"model"},
		),
	}
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// ObserveFetch records one refresh attempt. rows is only applied on success.
func (m *Metrics) ObserveFetch(result, format string, d time.Duration, rows int) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(result, format).Inc()
	m.fetchDuration.Observe(d.Seconds())
	if result == ResultSuccess {
		m.datasetRows.Set(float64(rows))
	}
}

func (m *Metrics) ObserveLLM(model, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(model, result).Inc()
	m.llmLatency.WithLabelValues(model).Observe(d.Seconds())
}
