package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Forecast fetch metrics
var (
	// ForecastFetchesTotal tracks provider fetches by outcome
	ForecastFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cweather_forecast_fetches_total",
			Help: "Total number of forecast fetches",
		},
		[]string{"provider", "status"},
	)

	// ForecastFetchDuration tracks the latency of provider fetches
	ForecastFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cweather_forecast_fetch_duration_seconds",
			Help:    "Duration of forecast fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// ForecastPoints is the number of points in the latest forecast
	ForecastPoints = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cweather_forecast_points",
			Help: "Number of points in the latest forecast",
		},
	)
)

// Narrative metrics
var (
	// ReportsTotal tracks generated reports
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cweather_reports_total",
			Help: "Total number of narrative reports generated",
		},
		[]string{"unit", "empty"},
	)

	// DistinctConditions observes how many distinct states a forecast had
	DistinctConditions = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cweather_distinct_conditions",
			Help:    "Distinct condition descriptions per report",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	// IconResolutionsTotal tracks icon resolutions by outcome
	IconResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cweather_icon_resolutions_total",
			Help: "Total number of icon resolutions",
		},
		[]string{"status"},
	)

	// IconProbeAttempts observes probes used per icon resolution
	IconProbeAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cweather_icon_probe_attempts",
			Help:    "Asset probes per icon resolution",
			Buckets: []float64{1, 2, 3},
		},
	)
)

// Publishing metrics
var (
	MQTTPublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cweather_mqtt_publishes_total",
			Help: "Total number of MQTT publishes",
		},
		[]string{"topic", "status"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordFetch records a forecast fetch
func RecordFetch(provider string, duration time.Duration, points int, err error) {
	ForecastFetchesTotal.WithLabelValues(provider, status(err)).Inc()
	ForecastFetchDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if err == nil {
		ForecastPoints.Set(float64(points))
	}
}

// RecordReport records a generated report
func RecordReport(unit string, empty bool, distinct int) {
	e := "false"
	if empty {
		e = "true"
	}
	ReportsTotal.WithLabelValues(unit, e).Inc()
	DistinctConditions.Observe(float64(distinct))
}

// RecordIconResolution records the outcome of an icon resolution
func RecordIconResolution(found bool, attempts int) {
	s := "found"
	if !found {
		s = "missing"
	}
	IconResolutionsTotal.WithLabelValues(s).Inc()
	IconProbeAttempts.Observe(float64(attempts))
}

// RecordPublish records an MQTT publish
func RecordPublish(topic string, err error) {
	MQTTPublishesTotal.WithLabelValues(topic, status(err)).Inc()
}
