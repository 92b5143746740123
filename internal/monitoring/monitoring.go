package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricNamespace = "iris_inference_server"

	metricsNamePredictionsTotal     = "predictions_total"
	metricsNamePredictionLatency    = "prediction_latency"
	metricsNamePredictionConfidence = "prediction_confidence"
	metricsNameModelLoaded          = "model_loaded"

	metricLabelClassName = "class_name"
)

// MetricsMonitoring is an interface for monitoring metrics.
type MetricsMonitoring interface {
	ObservePrediction(className string, confidence float64, latency time.Duration)
}

// MetricsMonitor holds and updates Prometheus metrics.
type MetricsMonitor struct {
	predictionsTotalCounterVec *prometheus.CounterVec
	predictionLatencyHist      prometheus.Histogram
	predictionConfidenceHist   prometheus.Histogram
	modelLoadedGauge           prometheus.Gauge
}

// latencyBuckets are the buckets for the latencies from 100us to 1 second.
var latencyBuckets []float64 = []float64{
	.0001, .0005, .001, .005, .01, .05, .1, .5, 1,
}

// confidenceBuckets are the buckets for the top-class probability.
var confidenceBuckets []float64 = []float64{
	.2, .3, .4, .5, .6, .7, .8, .9, .95, .99,
}

// NewMetricsMonitor returns a new MetricsMonitor.
func NewMetricsMonitor() *MetricsMonitor {
	predictionsTotalCounterVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      metricsNamePredictionsTotal,
		},
		[]string{
			metricLabelClassName,
		},
	)

	predictionLatencyHist := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Name:      metricsNamePredictionLatency,
			Buckets:   latencyBuckets,
		},
	)

	predictionConfidenceHist := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Name:      metricsNamePredictionConfidence,
			Buckets:   confidenceBuckets,
		},
	)

	modelLoadedGauge := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      metricsNameModelLoaded,
		},
	)

	m := &MetricsMonitor{
		predictionsTotalCounterVec: predictionsTotalCounterVec,
		predictionLatencyHist:      predictionLatencyHist,
		predictionConfidenceHist:   predictionConfidenceHist,
		modelLoadedGauge:           modelLoadedGauge,
	}

	prometheus.MustRegister(
		predictionsTotalCounterVec,
		predictionLatencyHist,
		predictionConfidenceHist,
		modelLoadedGauge,
	)

	return m
}

// ObservePrediction observes a completed prediction request.
func (m *MetricsMonitor) ObservePrediction(className string, confidence float64, latency time.Duration) {
	m.predictionsTotalCounterVec.WithLabelValues(className).Inc()
	m.predictionLatencyHist.Observe(float64(latency) / float64(time.Second))
	m.predictionConfidenceHist.Observe(confidence)
}

// SetModelLoaded records whether a model handle is loaded.
func (m *MetricsMonitor) SetModelLoaded(loaded bool) {
	if loaded {
		m.modelLoadedGauge.Set(1)
		return
	}
	m.modelLoadedGauge.Set(0)
}

// UnregisterAllCollectors unregisters all collectors.
func (m *MetricsMonitor) UnregisterAllCollectors() {
	prometheus.Unregister(m.predictionsTotalCounterVec)
	prometheus.Unregister(m.predictionLatencyHist)
	prometheus.Unregister(m.predictionConfidenceHist)
	prometheus.Unregister(m.modelLoadedGauge)
}
