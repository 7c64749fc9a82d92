package serialport

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Port is an open serial line. Read blocks for at most the configured read
// timeout and returns (0, nil) when it elapses without data, so callers can
// poll a context between reads.
type Port interface {
	io.ReadWriteCloser
}

// Driver names accepted by Open
const (
	DriverBugst    = "bugst"    // go.bug.st/serial (default)
	DriverTarm     = "tarm"     // github.com/tarm/serial
	DriverGoburrow = "goburrow" // github.com/goburrow/serial
)

// Drivers lists the supported driver names
var Drivers = []string{DriverBugst, DriverTarm, DriverGoburrow}

// Parity is the serial parity setting
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

// String returns the configuration name of the parity
func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	case ParityMark:
		return "mark"
	case ParitySpace:
		return "space"
	default:
		return fmt.Sprintf("Parity(%d)", int(p))
	}
}

// Letter returns the single-letter form used in line summaries ("8E1")
func (p Parity) Letter() string {
	switch p {
	case ParityOdd:
		return "O"
	case ParityEven:
		return "E"
	case ParityMark:
		return "M"
	case ParitySpace:
		return "S"
	default:
		return "N"
	}
}

// ParseParity parses none, odd, even, mark or space (or their first letter)
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "n":
		return ParityNone, nil
	case "odd", "o":
		return ParityOdd, nil
	case "even", "e":
		return ParityEven, nil
	case "mark", "m":
		return ParityMark, nil
	case "space", "s":
		return ParitySpace, nil
	default:
		return ParityNone, fmt.Errorf("invalid parity %q: use none, odd, even, mark, or space", s)
	}
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Driver selects the serial library (see Drivers)
	Driver string

	Baud     int
	DataBits int
	Parity   Parity
	StopBits int

	// ReadTimeout bounds a single Read. Zero selects DefaultReadTimeout.
	ReadTimeout time.Duration
}

// DefaultReadTimeout keeps reads short enough to notice cancellation
const DefaultReadTimeout = 100 * time.Millisecond

// DefaultConfig returns the usual settings for an RS-485 Modbus line:
// 19200 baud, 8 data bits, even parity, 1 stop bit
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Driver:      DriverBugst,
		Baud:        19200,
		DataBits:    8,
		Parity:      ParityEven,
		StopBits:    1,
		ReadTimeout: DefaultReadTimeout,
	}
}

// Validate checks the settings before any driver sees them
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("serial device is required")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("invalid data bits %d: use 5 to 8", c.DataBits)
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return fmt.Errorf("invalid stop bits %d: use 1 or 2", c.StopBits)
	}
	if c.Parity < ParityNone || c.Parity > ParitySpace {
		return fmt.Errorf("invalid parity %v", c.Parity)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("invalid read timeout %v", c.ReadTimeout)
	}
	return nil
}

// LineSettings returns the compact form "19200 8E1"
func (c *Config) LineSettings() string {
	return fmt.Sprintf("%d %d%s%d", c.Baud, c.DataBits, c.Parity.Letter(), c.StopBits)
}

func (c *Config) readTimeout() time.Duration {
	if c.ReadTimeout == 0 {
		return DefaultReadTimeout
	}
	return c.ReadTimeout
}

// Open opens the port with the configured driver. An empty driver selects
// go.bug.st/serial.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, &PortError{Op: "open", Device: cfg.Device, Err: err}
	}

	switch strings.ToLower(cfg.Driver) {
	case "", DriverBugst:
		return openBugst(cfg)
	case DriverTarm:
		return openTarm(cfg)
	case DriverGoburrow:
		return openGoburrow(cfg)
	default:
		return nil, &PortError{Op: "open", Device: cfg.Device, Err: fmt.Errorf("%w %q", ErrUnknownDriver, cfg.Driver)}
	}
}

// timeoutPort adapts drivers that report an elapsed read timeout as an
// error into the (0, nil) convention of Port.
type timeoutPort struct {
	io.ReadWriteCloser
	isTimeout func(error) bool
}

func (p *timeoutPort) Read(b []byte) (int, error) {
	n, err := p.ReadWriteCloser.Read(b)
	if err != nil && n == 0 && p.isTimeout(err) {
		return 0, nil
	}
	return n, err
}
