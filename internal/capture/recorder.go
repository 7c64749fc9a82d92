package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/muurk/rtuscope/internal/logging"
	"github.com/muurk/rtuscope/internal/serialport"
	"go.uber.org/zap"
)

// Recorder wraps a port and streams every non-empty read into a capture.
// It is itself a serialport.Port, so the monitor reads through it unchanged.
type Recorder struct {
	port    serialport.Port
	buf     *bufio.Writer
	enc     *cbor.Encoder
	file    io.Closer
	now     func() time.Time
	records int
}

// RecorderOption configures a Recorder
type RecorderOption func(*Recorder)

// WithRecorderClock overrides the time source used to stamp records
func WithRecorderClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder writes hdr to w and returns a recorder reading from port.
// Format, Version and Started are filled in when empty.
func NewRecorder(port serialport.Port, w io.Writer, hdr Header, opts ...RecorderOption) (*Recorder, error) {
	r := &Recorder{
		port: port,
		buf:  bufio.NewWriter(w),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.enc = cbor.NewEncoder(r.buf)

	if hdr.Format == "" {
		hdr.Format = Format
	}
	if hdr.Version == 0 {
		hdr.Version = Version
	}
	if hdr.Started == 0 {
		hdr.Started = r.now().UnixNano()
	}
	if err := r.enc.Encode(hdr); err != nil {
		return nil, fmt.Errorf("failed to write capture header: %w", err)
	}

	return r, nil
}

// Create opens path for writing and records reads from port into it
func Create(path string, port serialport.Port, hdr Header, opts ...RecorderOption) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture file: %w", err)
	}

	r, err := NewRecorder(port, f, hdr, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.file = f

	logging.Info("Recording capture", zap.String("path", path))
	return r, nil
}

// Read reads from the port and records what arrived
func (r *Recorder) Read(b []byte) (int, error) {
	n, err := r.port.Read(b)
	if n > 0 {
		rec := Record{Time: r.now().UnixNano(), Data: append([]byte(nil), b[:n]...)}
		if encErr := r.enc.Encode(rec); encErr != nil {
			return n, fmt.Errorf("failed to write capture record: %w", encErr)
		}
		r.records++
	}
	return n, err
}

// Write passes through to the port. Outbound bytes are not recorded.
func (r *Recorder) Write(b []byte) (int, error) {
	return r.port.Write(b)
}

// Records returns the number of records written so far
func (r *Recorder) Records() int {
	return r.records
}

// Close flushes the capture, closes the file (if Create opened it) and
// closes the port.
func (r *Recorder) Close() error {
	var firstErr error
	if err := r.buf.Flush(); err != nil {
		firstErr = fmt.Errorf("failed to flush capture: %w", err)
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close capture: %w", err)
		}
	}
	if err := r.port.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	logging.Debug("Capture closed", zap.Int("records", r.records))
	return firstErr
}
