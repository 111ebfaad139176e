// Package collector implements the Prometheus collector interface for Febos installations.
package collector

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"febos_exporter/internal/entity"
	"febos_exporter/internal/mapper"
)

// Source provides the entity records and refresh state to export.
type Source interface {
	Records(kind entity.Kind) []entity.Record
	Ready() bool
	LastError() error
	LastSuccess() time.Time
}

// FebosCollector implements prometheus.Collector over the cached entities.
// Scrapes never reach the webapp; values are those of the last successful
// refresh.
type FebosCollector struct {
	source  Source
	logger  *slog.Logger
	metrics *MetricSet
}

// NewFebosCollector creates a new Febos collector.
func NewFebosCollector(source Source, metrics *MetricSet, logger *slog.Logger) *FebosCollector {
	return &FebosCollector{
		source:  source,
		logger:  logger,
		metrics: metrics,
	}
}

// Describe implements prometheus.Collector.
func (c *FebosCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.metrics.sensorValue
	ch <- c.metrics.binarySensorState
	ch <- c.metrics.up
	ch <- c.metrics.lastRefresh

	c.metrics.refreshErrors.Describe(ch)
	c.metrics.refreshDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *FebosCollector) Collect(ch chan<- prometheus.Metric) {
	defer func() {
		c.metrics.refreshErrors.Collect(ch)
		c.metrics.refreshDuration.Collect(ch)
	}()

	up := 0.0
	if c.source.Ready() && c.source.LastError() == nil {
		up = 1
	}
	ch <- prometheus.MustNewConstMetric(c.metrics.up, prometheus.GaugeValue, up)

	if last := c.source.LastSuccess(); !last.IsZero() {
		ch <- prometheus.MustNewConstMetric(c.metrics.lastRefresh, prometheus.GaugeValue, float64(last.Unix()))
	}

	if !c.source.Ready() {
		c.logger.Debug("Skipping entity metrics, setup pending")
		return
	}

	c.emitSensorMetrics(ch)
	c.emitBinarySensorMetrics(ch)
}

// emitSensorMetrics emits one gauge per numeric sensor. Text sensors have no
// numeric representation and are skipped.
func (c *FebosCollector) emitSensorMetrics(ch chan<- prometheus.Metric) {
	for _, r := range c.source.Records(entity.KindSensor) {
		value, ok := mapper.Float(r.Value.Value())
		if !ok {
			continue
		}
		labels := append(baseLabels(r), string(r.Unit))
		ch <- prometheus.MustNewConstMetric(c.metrics.sensorValue, prometheus.GaugeValue, value, labels...)
	}
}

// emitBinarySensorMetrics emits one gauge per binary sensor with polarity
// already applied.
func (c *FebosCollector) emitBinarySensorMetrics(ch chan<- prometheus.Metric) {
	for _, r := range c.source.Records(entity.KindBinarySensor) {
		on, ok := r.Value.Value().(bool)
		if !ok {
			continue
		}
		value := 0.0
		if on {
			value = 1
		}
		ch <- prometheus.MustNewConstMetric(c.metrics.binarySensorState, prometheus.GaugeValue, value, baseLabels(r)...)
	}
}

func baseLabels(r entity.Record) []string {
	return []string{
		r.Key,
		r.Name,
		fmt.Sprint(r.Identity.Installation),
		fmt.Sprint(r.Identity.Device),
		r.Identity.Container,
		r.DeviceClass,
	}
}
