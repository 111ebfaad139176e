// Package influxdb writes refreshed Febos values to InfluxDB v2.
package influxdb

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"febos_exporter/internal/config"
	"febos_exporter/internal/entity"
	"febos_exporter/internal/mapper"
)

// Measurement is the name of every written point.
const Measurement = "febos_sensor"

const (
	defaultConnectTimeout = 10 * time.Second

	// millisecondsPerSecond converts seconds to milliseconds for the InfluxDB API.
	millisecondsPerSecond = 1000
)

type pointWriter interface {
	WritePoint(point *write.Point)
	Flush()
}

// Sink writes one point per populated record after every refresh. Writes
// are batched and non-blocking; failures surface through the logger.
type Sink struct {
	client influxdb2.Client
	writer pointWriter
	logger *slog.Logger
	now    func() time.Time
}

// Connect creates the client and verifies the server with a ping.
func Connect(cfg config.InfluxDBConfig, logger *slog.Logger) (*Sink, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 10
	}

	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval)*millisecondsPerSecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	go func() {
		for err := range writeAPI.Errors() {
			logger.Warn("InfluxDB write failed", "error", err)
		}
	}()

	logger.Info("Connected to InfluxDB", "url", cfg.URL, "bucket", cfg.Bucket)
	return &Sink{client: client, writer: writeAPI, logger: logger, now: time.Now}, nil
}

// OnRefresh writes the current value of every record.
func (s *Sink) OnRefresh(ctx context.Context, records []entity.Record) error {
	ts := s.now()
	written := 0
	for _, r := range records {
		if p, ok := NewPoint(r, ts); ok {
			s.writer.WritePoint(p)
			written++
		}
	}
	s.logger.Debug("Queued points", "count", written)
	return nil
}

// NewPoint converts a record. Numeric and boolean values go to the "value"
// field, text values to "text". It returns false for unset values.
func NewPoint(r entity.Record, ts time.Time) (*write.Point, bool) {
	v := r.Value.Value()
	if v == nil {
		return nil, false
	}

	fields := make(map[string]interface{}, 1)
	switch val := v.(type) {
	case string:
		fields["text"] = val
	default:
		f, ok := mapper.Float(val)
		if !ok {
			return nil, false
		}
		fields["value"] = f
	}

	tags := map[string]string{
		"key":          r.Key,
		"name":         r.Name,
		"kind":         string(r.Kind),
		"installation": strconv.FormatInt(r.Identity.Installation, 10),
		"device":       strconv.FormatInt(r.Identity.Device, 10),
		"container":    r.Identity.Container,
	}
	if r.DeviceClass != "" {
		tags["device_class"] = r.DeviceClass
	}
	if r.Unit != "" {
		tags["unit"] = string(r.Unit)
	}

	return write.NewPoint(Measurement, tags, fields, ts), true
}

// Close flushes pending writes and closes the client.
func (s *Sink) Close() error {
	s.writer.Flush()
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
