package capture

import (
	"errors"
	"time"
)

// Format identifies rtuscope capture files
const (
	Format  = "rtuscope-capture"
	Version = 1
)

// ErrNotCapture is returned when a file does not start with a capture header
var ErrNotCapture = errors.New("not an rtuscope capture file")

// Header is the first CBOR item of a capture file
type Header struct {
	Format  string `cbor:"format"`
	Version int    `cbor:"version"`
	Device  string `cbor:"device,omitempty"`
	Line    string `cbor:"line,omitempty"` // e.g. "19200 8E1"
	Started int64  `cbor:"started"`        // Unix nanoseconds
}

// Record is one chunk of bytes as returned by a single port read
type Record struct {
	Time int64  `cbor:"t"` // Unix nanoseconds
	Data []byte `cbor:"d"`
}

// At returns the record time
func (r Record) At() time.Time {
	return time.Unix(0, r.Time)
}
