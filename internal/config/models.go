package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/muurk/rtuscope/internal/framing"
	"github.com/muurk/rtuscope/internal/influx"
	"github.com/muurk/rtuscope/internal/protocol"
	"github.com/muurk/rtuscope/internal/serialport"
)

// CurrentVersion is the config file format version
const CurrentVersion = 1

// Config represents the entire user configuration file.
type Config struct {
	Version int            `yaml:"version"`
	Serial  SerialConfig   `yaml:"serial"`
	Framing FramingConfig  `yaml:"framing"`
	Display DisplayConfig  `yaml:"display"`
	Capture CaptureConfig  `yaml:"capture,omitempty"`
	Influx  InfluxSettings `yaml:"influx,omitempty"`
	Stream  StreamConfig   `yaml:"stream,omitempty"`
}

// SerialConfig describes the line being monitored.
type SerialConfig struct {
	Device        string `yaml:"device,omitempty"`          // Empty = pick interactively
	Driver        string `yaml:"driver"`                    // bugst, tarm or goburrow
	Baud          int    `yaml:"baud"`                      // e.g. 19200
	DataBits      int    `yaml:"data_bits"`                 // 5-8
	Parity        string `yaml:"parity"`                    // none, odd, even, mark, space
	StopBits      int    `yaml:"stop_bits"`                 // 1 or 2
	ReadTimeoutMS int    `yaml:"read_timeout_ms,omitempty"` // Single read bound
}

// FramingConfig tunes the frame synchronizer.
type FramingConfig struct {
	BufferSize     int   `yaml:"buffer_size"`                // Receive buffer capacity
	TimeoutMS      int   `yaml:"timeout_ms"`                 // Idle time before the buffer is flushed as noise
	FunctionCodes  []int `yaml:"function_codes,omitempty"`   // Accepted function codes (empty = 3, 6, 22)
	MinFrameLength int   `yaml:"min_frame_length,omitempty"` // Shortest frame accepted
}

// DisplayConfig controls terminal output.
type DisplayConfig struct {
	Palette    []string `yaml:"palette,omitempty"` // Device colors (empty = built-in palette)
	Timestamps bool     `yaml:"timestamps"`
	Annotate   bool     `yaml:"annotate"`
	Color      bool     `yaml:"color"` // Disabled automatically when stdout is not a terminal
	Summary    bool     `yaml:"summary"`
}

// CaptureConfig enables recording raw reads to a file.
type CaptureConfig struct {
	Path string `yaml:"path,omitempty"`
}

// InfluxSettings configures the optional InfluxDB export.
// The token is NEVER stored here; it comes from RTUSCOPE_INFLUX_TOKEN.
type InfluxSettings struct {
	URL         string `yaml:"url,omitempty"`
	Org         string `yaml:"org,omitempty"`
	Bucket      string `yaml:"bucket,omitempty"`
	Measurement string `yaml:"measurement,omitempty"`
	Token       string `yaml:"-"`
}

// StreamConfig publishes segments to remote watchers.
type StreamConfig struct {
	Listen    string `yaml:"listen,omitempty"`    // e.g. ":8020" (empty = disabled)
	Advertise bool   `yaml:"advertise,omitempty"` // Announce the stream over mDNS
}

// Enabled reports whether a listen address is configured
func (s StreamConfig) Enabled() bool {
	return s.Listen != ""
}

// Enabled reports whether an InfluxDB URL is configured
func (s InfluxSettings) Enabled() bool {
	return s.URL != ""
}

// Default returns the configuration used when no file exists: a 19200 baud
// 8E1 line, a 256-byte buffer and a one second idle timeout.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Serial: SerialConfig{
			Driver:        serialport.DriverBugst,
			Baud:          19200,
			DataBits:      8,
			Parity:        "even",
			StopBits:      1,
			ReadTimeoutMS: int(serialport.DefaultReadTimeout / time.Millisecond),
		},
		Framing: FramingConfig{
			BufferSize:     framing.DefaultCapacity,
			TimeoutMS:      1000,
			MinFrameLength: protocol.MinFrameSize,
		},
		Display: DisplayConfig{
			Color:   true,
			Summary: true,
		},
	}
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}

	if c.Serial.Driver != "" && !isDriver(c.Serial.Driver) {
		return fmt.Errorf("serial.driver: unknown driver %q (use %s)", c.Serial.Driver, strings.Join(serialport.Drivers, ", "))
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud: must be positive, got %d", c.Serial.Baud)
	}
	if c.Serial.DataBits < 5 || c.Serial.DataBits > 8 {
		return fmt.Errorf("serial.data_bits: must be 5-8, got %d", c.Serial.DataBits)
	}
	if _, err := serialport.ParseParity(c.Serial.Parity); err != nil {
		return fmt.Errorf("serial.parity: %w", err)
	}
	if c.Serial.StopBits != 1 && c.Serial.StopBits != 2 {
		return fmt.Errorf("serial.stop_bits: must be 1 or 2, got %d", c.Serial.StopBits)
	}
	if c.Serial.ReadTimeoutMS < 0 {
		return fmt.Errorf("serial.read_timeout_ms: must not be negative")
	}

	if c.Framing.BufferSize < protocol.MinFrameSize || c.Framing.BufferSize > 4096 {
		return fmt.Errorf("framing.buffer_size: must be %d-4096, got %d", protocol.MinFrameSize, c.Framing.BufferSize)
	}
	if c.Framing.TimeoutMS <= 0 {
		return fmt.Errorf("framing.timeout_ms: must be positive, got %d", c.Framing.TimeoutMS)
	}
	if _, err := protocol.ParseFunctionSet(c.Framing.FunctionCodes); err != nil {
		return fmt.Errorf("framing.function_codes: %w", err)
	}
	if c.Framing.MinFrameLength != 0 && (c.Framing.MinFrameLength < 3 || c.Framing.MinFrameLength > c.Framing.BufferSize) {
		return fmt.Errorf("framing.min_frame_length: must be 3-%d, got %d", c.Framing.BufferSize, c.Framing.MinFrameLength)
	}

	if c.Influx.Enabled() {
		if err := c.InfluxConfig().Validate(); err != nil {
			return fmt.Errorf("influx: %w", err)
		}
	}

	if c.Stream.Advertise && !c.Stream.Enabled() {
		return fmt.Errorf("stream.advertise: requires stream.listen")
	}
	if c.Stream.Enabled() {
		if _, _, err := net.SplitHostPort(c.Stream.Listen); err != nil {
			return fmt.Errorf("stream.listen: %w", err)
		}
	}

	return nil
}

func isDriver(name string) bool {
	for _, d := range serialport.Drivers {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

// SerialPortConfig converts the serial section for serialport.Open
func (c *Config) SerialPortConfig() (*serialport.Config, error) {
	parity, err := serialport.ParseParity(c.Serial.Parity)
	if err != nil {
		return nil, err
	}
	return &serialport.Config{
		Device:      c.Serial.Device,
		Driver:      strings.ToLower(c.Serial.Driver),
		Baud:        c.Serial.Baud,
		DataBits:    c.Serial.DataBits,
		Parity:      parity,
		StopBits:    c.Serial.StopBits,
		ReadTimeout: time.Duration(c.Serial.ReadTimeoutMS) * time.Millisecond,
	}, nil
}

// FramingSettings converts the framing section for framing.NewSynchronizer
func (c *Config) FramingSettings() (framing.Config, error) {
	codes, err := protocol.ParseFunctionSet(c.Framing.FunctionCodes)
	if err != nil {
		return framing.Config{}, err
	}
	return framing.Config{
		BufferSize:     c.Framing.BufferSize,
		FunctionCodes:  codes,
		MinFrameLength: c.Framing.MinFrameLength,
	}, nil
}

// Timeout returns the idle flush timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Framing.TimeoutMS) * time.Millisecond
}

// InfluxConfig converts the influx section for influx.NewSink
func (c *Config) InfluxConfig() influx.Config {
	return influx.Config{
		URL:         c.Influx.URL,
		Token:       c.Influx.Token,
		Org:         c.Influx.Org,
		Bucket:      c.Influx.Bucket,
		Measurement: c.Influx.Measurement,
	}
}
