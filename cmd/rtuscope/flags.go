package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/muurk/rtuscope/internal/config"
)

// lineFlags are the serial, framing and display flags shared by every
// command that touches a line. They only override the config file when set
// explicitly.
type lineFlags struct {
	port       string
	driver     string
	baud       int
	dataBits   int
	parity     string
	stopBits   int
	bufferSize int
	timeout    time.Duration
	functions  []int
	minFrame   int
	timestamps bool
	annotate   bool
	noColor    bool
	capture    string
	influxURL  string
	serve      string
	advertise  bool
}

func (f *lineFlags) register(fs *pflag.FlagSet) {
	def := config.Default()

	fs.StringVarP(&f.port, "port", "p", "", "Serial device (e.g. /dev/ttyUSB0, COM3); pick interactively when omitted")
	fs.StringVar(&f.driver, "driver", def.Serial.Driver, "Serial driver (bugst, tarm, goburrow)")
	fs.IntVarP(&f.baud, "baud", "b", def.Serial.Baud, "Baud rate")
	fs.IntVar(&f.dataBits, "data-bits", def.Serial.DataBits, "Data bits")
	fs.StringVar(&f.parity, "parity", def.Serial.Parity, "Parity (none, odd, even, mark, space)")
	fs.IntVar(&f.stopBits, "stop-bits", def.Serial.StopBits, "Stop bits (1 or 2)")
	fs.IntVar(&f.bufferSize, "buffer-size", def.Framing.BufferSize, "Receive buffer size in bytes")
	fs.DurationVar(&f.timeout, "timeout", def.Timeout(), "Idle time before buffered bytes are dropped as noise")
	fs.IntSliceVar(&f.functions, "functions", nil, "Accepted function codes (default 3,6,22)")
	fs.IntVar(&f.minFrame, "min-frame", def.Framing.MinFrameLength, "Shortest frame accepted")
	fs.BoolVarP(&f.timestamps, "timestamps", "t", false, "Prefix each line with a timestamp")
	fs.BoolVarP(&f.annotate, "annotate", "a", false, "Append address, function and length to each line")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.StringVar(&f.capture, "capture", "", "Record raw reads to this CBOR capture file")
	fs.StringVar(&f.influxURL, "influx-url", "", "Export frame metrics to this InfluxDB URL")
	fs.StringVar(&f.serve, "serve", "", "Stream segments to WebSocket watchers on this address (e.g. :8020)")
	fs.BoolVar(&f.advertise, "advertise", false, "Announce the --serve stream over mDNS")
}

// apply copies explicitly set flags into cfg
func (f *lineFlags) apply(fs *pflag.FlagSet, cfg *config.Config) error {
	set := func(name string) bool { return fs.Changed(name) }

	if set("port") {
		cfg.Serial.Device = f.port
	}
	if set("driver") {
		cfg.Serial.Driver = f.driver
	}
	if set("baud") {
		cfg.Serial.Baud = f.baud
	}
	if set("data-bits") {
		cfg.Serial.DataBits = f.dataBits
	}
	if set("parity") {
		cfg.Serial.Parity = f.parity
	}
	if set("stop-bits") {
		cfg.Serial.StopBits = f.stopBits
	}
	if set("buffer-size") {
		cfg.Framing.BufferSize = f.bufferSize
	}
	if set("timeout") {
		if f.timeout < time.Millisecond {
			return fmt.Errorf("--timeout must be at least 1ms, got %v", f.timeout)
		}
		cfg.Framing.TimeoutMS = int(f.timeout / time.Millisecond)
	}
	if set("functions") {
		cfg.Framing.FunctionCodes = f.functions
	}
	if set("min-frame") {
		cfg.Framing.MinFrameLength = f.minFrame
	}
	if set("timestamps") {
		cfg.Display.Timestamps = f.timestamps
	}
	if set("annotate") {
		cfg.Display.Annotate = f.annotate
	}
	if set("no-color") {
		cfg.Display.Color = !f.noColor
	}
	if set("capture") {
		cfg.Capture.Path = f.capture
	}
	if set("influx-url") {
		cfg.Influx.URL = f.influxURL
	}
	if set("serve") {
		cfg.Stream.Listen = f.serve
	}
	if set("advertise") {
		cfg.Stream.Advertise = f.advertise
	}
	return nil
}

// loadSettings layers the config file, the environment and the flags
func loadSettings(fs *pflag.FlagSet) (*config.Config, error) {
	if err := config.LoadEnv(envFile, envFile == ""); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := line.apply(fs, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
