package influx

import (
	"context"
	"fmt"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/muurk/rtuscope/internal/framing"
	"github.com/muurk/rtuscope/internal/logging"
	"github.com/muurk/rtuscope/internal/protocol"
	"go.uber.org/zap"
)

// DefaultMeasurement is used when Config.Measurement is empty
const DefaultMeasurement = "modbus_frames"

// Config holds the InfluxDB 2 connection settings
type Config struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// Validate checks that the connection settings are complete
func (c Config) Validate() error {
	switch {
	case c.URL == "":
		return fmt.Errorf("influx url is required")
	case c.Org == "":
		return fmt.Errorf("influx org is required")
	case c.Bucket == "":
		return fmt.Errorf("influx bucket is required")
	}
	return nil
}

// pointWriter is the part of api.WriteAPI the sink uses
type pointWriter interface {
	WritePoint(point *write.Point)
	Flush()
}

// Sink exports segments as InfluxDB points. Writes are batched and
// asynchronous; the monitor loop never waits on the network.
type Sink struct {
	client      influxdb2.Client
	writer      pointWriter
	measurement string
	points      int
	drained     chan struct{}
}

// NewSink connects to InfluxDB. An unreachable server is logged, not fatal:
// the client keeps retrying batches in the background.
func NewSink(ctx context.Context, cfg Config) (*Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	if ok, err := client.Ping(ctx); err != nil || !ok {
		logging.Warn("InfluxDB not reachable", zap.String("url", cfg.URL), zap.Error(err))
	} else {
		logging.Info("InfluxDB is reachable", zap.String("url", cfg.URL))
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	s := newSink(writeAPI, cfg.Measurement)
	s.client = client
	s.drained = make(chan struct{})

	errCh := writeAPI.Errors()
	go func() {
		defer close(s.drained)
		for err := range errCh {
			logging.Warn("Error writing to InfluxDB", zap.Error(err))
		}
	}()

	return s, nil
}

func newSink(w pointWriter, measurement string) *Sink {
	if measurement == "" {
		measurement = DefaultMeasurement
	}
	return &Sink{writer: w, measurement: measurement}
}

// Emit implements framing.Sink
func (s *Sink) Emit(seg framing.Segment) {
	if len(seg.Data) == 0 {
		return
	}
	s.writer.WritePoint(PointFor(s.measurement, seg))
	s.points++
}

// Points returns the number of points queued so far
func (s *Sink) Points() int {
	return s.points
}

// Close flushes pending points and closes the client
func (s *Sink) Close() error {
	s.writer.Flush()
	if s.client != nil {
		s.client.Close()
	}
	if s.drained != nil {
		<-s.drained
	}
	logging.Debug("InfluxDB sink closed", zap.Int("points", s.points))
	return nil
}

// PointFor converts a segment into a point. Frames carry address, function
// and exception tags with a length field; noise carries a reason tag with a
// noise_bytes field.
func PointFor(measurement string, seg framing.Segment) *write.Point {
	at := seg.At
	if at.IsZero() {
		at = time.Now()
	}

	if seg.Role == framing.RoleNoise {
		return influxdb2.NewPoint(measurement,
			map[string]string{
				"kind":   seg.Role.String(),
				"reason": string(seg.Reason),
			},
			map[string]any{"noise_bytes": len(seg.Data)},
			at)
	}

	return influxdb2.NewPoint(measurement,
		map[string]string{
			"kind":      seg.Role.String(),
			"address":   strconv.Itoa(int(seg.Address)),
			"function":  protocol.FunctionName(seg.Function),
			"exception": strconv.FormatBool(seg.Exception),
		},
		map[string]any{"length": len(seg.Data)},
		at)
}
