package collector

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"febos_exporter/internal/coordinator"
)

// Prometheus label names.
const (
	LabelKey          = "key"
	LabelName         = "name"
	LabelInstallation = "installation"
	LabelDevice       = "device"
	LabelContainer    = "container"
	LabelDeviceClass  = "device_class"
	LabelUnit         = "unit"
	LabelReason       = "reason"
)

// Refresh failure reasons.
const (
	ReasonReauth = "reauth"
	ReasonUpdate = "update"
	ReasonOther  = "other"
)

// MetricSet holds all Prometheus metric descriptors for the Febos exporter.
// It also observes refresh cycles for the coordinator.
type MetricSet struct {
	// Entity metrics
	sensorValue       *prometheus.Desc
	binarySensorState *prometheus.Desc

	// Status metrics
	up          *prometheus.Desc
	lastRefresh *prometheus.Desc

	// Refresh metrics
	refreshErrors   *prometheus.CounterVec
	refreshDuration prometheus.Histogram
}

// NewMetricSet creates all metric descriptors.
func NewMetricSet() *MetricSet {
	labels := []string{LabelKey, LabelName, LabelInstallation, LabelDevice, LabelContainer, LabelDeviceClass}

	return &MetricSet{
		sensorValue: prometheus.NewDesc(
			"febos_sensor_value",
			"Current value of a Febos sensor",
			append(labels, LabelUnit), nil,
		),
		binarySensorState: prometheus.NewDesc(
			"febos_binary_sensor_state",
			"Current state of a Febos binary sensor (1=on, 0=off)",
			labels, nil,
		),
		up: prometheus.NewDesc(
			"febos_up",
			"Whether the last refresh of the Febos webapp succeeded (1=yes, 0=no)",
			nil, nil,
		),
		lastRefresh: prometheus.NewDesc(
			"febos_last_refresh_timestamp_seconds",
			"Unix timestamp of the last successful refresh",
			nil, nil,
		),
		refreshErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "febos_refresh_errors_total",
			Help: "Total number of failed refresh cycles",
		}, []string{LabelReason}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "febos_refresh_duration_seconds",
			Help:    "Duration of refresh cycles",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
	}
}

// ObserveRefresh records the outcome of a refresh cycle.
func (m *MetricSet) ObserveRefresh(d time.Duration, err error) {
	m.refreshDuration.Observe(d.Seconds())
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, coordinator.ErrReauthRequired):
		m.refreshErrors.WithLabelValues(ReasonReauth).Inc()
	case errors.Is(err, coordinator.ErrUpdateFailed):
		m.refreshErrors.WithLabelValues(ReasonUpdate).Inc()
	default:
		m.refreshErrors.WithLabelValues(ReasonOther).Inc()
	}
}
