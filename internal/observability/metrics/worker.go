package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	classifyTotal    *prometheus.CounterVec
	classifyDuration *prometheus.HistogramVec
	classifyInFlight prometheus.Gauge
	queueLag         *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	classifyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sdx",
			Subsystem: "worker",
			Name:      "document_classify_total",
			Help:      "Total classified documents by status.",
		},
		[]string{"service", "status"},
	)
	classifyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sdx",
			Subsystem: "worker",
			Name:      "document_classify_duration_seconds",
			Help:      "Document classification duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	classifyInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sdx",
			Subsystem: "worker",
			Name:      "document_classify_in_flight",
			Help:      "Number of in-flight document classification tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sdx",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between document upload and classification start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(classifyTotal, classifyDuration, classifyInFlight, queueLag)

	return &WorkerMetrics{
		registry:         registry,
		classifyTotal:    classifyTotal,
		classifyDuration: classifyDuration,
		classifyInFlight: classifyInFlight,
		queueLag:         queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.classifyInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.classifyInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.classifyTotal.WithLabelValues(service, status).Inc()
	m.classifyDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
