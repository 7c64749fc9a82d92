package framing

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Role classifies a reported byte range
type Role int

const (
	// RoleNoise marks bytes that could not be attributed to a frame
	RoleNoise Role = iota
	// RoleFrame marks a CRC-valid inbound frame
	RoleFrame
	// RoleOutbound marks a frame written to the line by rtuscope itself
	RoleOutbound
)

// String returns a human-readable name for the role
func (r Role) String() string {
	switch r {
	case RoleNoise:
		return "noise"
	case RoleFrame:
		return "frame"
	case RoleOutbound:
		return "outbound"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

// Reason explains why noise bytes were discarded
type Reason string

const (
	ReasonResync   Reason = "resync"   // Bytes before a confirmed frame
	ReasonOverflow Reason = "overflow" // Buffer filled without a frame
	ReasonTimeout  Reason = "timeout"  // Line went quiet without a frame
	ReasonShutdown Reason = "shutdown" // Leftover bytes when the monitor stops
)

// Segment is one reported byte range. Data is owned by the segment.
type Segment struct {
	Role      Role
	Data      []byte
	Address   byte           // Slave address (frames only)
	Function  byte           // Function code without exception flag (frames only)
	Exception bool           // Exception response (frames only)
	Color     lipgloss.Color // Device color (frames only)
	Reason    Reason         // Discard reason (noise only)
	At        time.Time
}

// Sink receives reported segments in line order
type Sink interface {
	Emit(seg Segment)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(seg Segment)

// Emit calls f(seg)
func (f SinkFunc) Emit(seg Segment) { f(seg) }

// MultiSink fans segments out to several sinks in order
type MultiSink []Sink

// Emit forwards seg to every non-nil sink
func (m MultiSink) Emit(seg Segment) {
	for _, s := range m {
		if s != nil {
			s.Emit(seg)
		}
	}
}

// ColorAssigner maps a slave address to its display color
type ColorAssigner interface {
	ColorFor(address byte) lipgloss.Color
}
