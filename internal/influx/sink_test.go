package influx

import (
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/muurk/rtuscope/internal/framing"
)

type fakeWriter struct {
	points  []*write.Point
	flushed int
}

func (f *fakeWriter) WritePoint(p *write.Point) { f.points = append(f.points, p) }
func (f *fakeWriter) Flush()                    { f.flushed++ }

var at = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func TestPointFor_Frame(t *testing.T) {
	seg := framing.Segment{
		Role:     framing.RoleFrame,
		Data:     make([]byte, 8),
		Address:  17,
		Function: 0x03,
		At:       at,
	}

	line := write.PointToLineProtocol(PointFor("modbus_frames", seg), time.Nanosecond)
	for _, want := range []string{
		"modbus_frames,",
		"address=17",
		"exception=false",
		"function=ReadHoldingRegisters",
		"kind=frame",
		"length=8i",
		" 1714550400000000000",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line protocol %q missing %q", line, want)
		}
	}
}

func TestPointFor_Noise(t *testing.T) {
	seg := framing.Segment{
		Role:   framing.RoleNoise,
		Data:   make([]byte, 3),
		Reason: framing.ReasonTimeout,
		At:     at,
	}

	line := write.PointToLineProtocol(PointFor("m", seg), time.Nanosecond)
	for _, want := range []string{"m,", "kind=noise", "reason=timeout", "noise_bytes=3i"} {
		if !strings.Contains(line, want) {
			t.Errorf("line protocol %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "address=") {
		t.Errorf("noise point should not carry an address: %q", line)
	}
}

func TestSink_EmitAndClose(t *testing.T) {
	w := &fakeWriter{}
	s := newSink(w, "")

	s.Emit(framing.Segment{Role: framing.RoleFrame, Data: make([]byte, 8), At: at})
	s.Emit(framing.Segment{Role: framing.RoleNoise, Data: nil, At: at}) // Empty segments are skipped
	s.Emit(framing.Segment{Role: framing.RoleNoise, Data: []byte{0xff}, Reason: framing.ReasonResync, At: at})

	if s.Points() != 2 || len(w.points) != 2 {
		t.Fatalf("Points() = %d, written = %d; want 2", s.Points(), len(w.points))
	}
	if got := w.points[0].Name(); got != DefaultMeasurement {
		t.Errorf("measurement = %q, want %q", got, DefaultMeasurement)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if w.flushed != 1 {
		t.Errorf("Flush() called %d times, want 1", w.flushed)
	}
}

func TestConfig_Validate(t *testing.T) {
	full := Config{URL: "http://localhost:8086", Org: "plant", Bucket: "rs485"}
	if err := full.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"url", func(c *Config) { c.URL = "" }, "url"},
		{"org", func(c *Config) { c.Org = "" }, "org"},
		{"bucket", func(c *Config) { c.Bucket = "" }, "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full
			tt.modify(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.errMsg)
			}
		})
	}
}
