package serialport

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrUnknownDriver indicates an unsupported driver name
	ErrUnknownDriver = errors.New("unknown serial driver")

	// ErrNoPorts indicates that enumeration found no serial ports
	ErrNoPorts = errors.New("no serial ports found")

	// ErrUnsupported indicates a setting the selected driver cannot express
	ErrUnsupported = errors.New("setting not supported by driver")
)

// PortError describes a failed operation on a serial device
type PortError struct {
	Op     string // "open", "configure", "list"
	Device string
	Err    error
}

func (e *PortError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("serial %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("serial %s %s: %v", e.Op, e.Device, e.Err)
}

func (e *PortError) Unwrap() error {
	return e.Err
}
