package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/muurk/rtuscope/internal/framing"
	"github.com/muurk/rtuscope/internal/logging"
	"go.uber.org/zap"
)

// DefaultTimeout is how long the line may stay quiet before buffered bytes
// are given up as noise.
const DefaultTimeout = 1000 * time.Millisecond

// Monitor drives a Synchronizer from a transport. Each read lands directly
// in the synchronizer's buffer, bounded by its free space, so nothing the
// transport returns is ever dropped before it is scanned.
//
// The transport must return (0, nil) when a read times out without data.
// serialport.Port and capture.Player both do.
type Monitor struct {
	port     io.Reader
	sync     *framing.Synchronizer
	timeout  time.Duration
	now      func() time.Time
	lastData time.Time
	pending  error // Transport error held back until carried-over frames are out
	started  time.Time
	read     int
}

// Option configures a Monitor
type Option func(*Monitor)

// WithTimeout sets the idle timeout (DefaultTimeout when d <= 0)
func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithClock replaces the time source for both the idle timer and segment
// timestamps. Replays pass the player's virtual clock.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a monitor reading from port into sync
func New(port io.Reader, sync *framing.Synchronizer, opts ...Option) *Monitor {
	m := &Monitor{
		port:    port,
		sync:    sync,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	sync.SetClock(m.now)
	m.started = m.now()
	m.lastData = m.started
	return m
}

// Cycle runs one read cycle. It returns true as soon as a frame is
// confirmed and false after an overflow or an idle timeout discarded the
// buffer. Bytes left over after a frame stay buffered and are scanned first
// on the next call, before any read.
//
// An error ends the cycle: ctx.Err() on cancellation, or whatever the
// transport returned (io.EOF at the end of a replay).
func (m *Monitor) Cycle(ctx context.Context) (bool, error) {
	buf := m.sync.Buffer()

	if buf.Len() > 0 && m.sync.Synchronize() {
		return true, nil
	}
	if m.pending != nil {
		err := m.pending
		m.pending = nil
		return false, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		n, err := buf.Fill(m.port)
		if n > 0 {
			m.read += n
			m.lastData = m.now()

			if m.sync.Synchronize() {
				if err != nil {
					m.pending = err
				}
				return true, nil
			}
			if m.sync.Overflow() {
				if err != nil {
					m.pending = err
				}
				return false, nil
			}
		}
		if err != nil {
			return false, err
		}

		if n == 0 && buf.Len() > 0 && m.now().Sub(m.lastData) >= m.timeout {
			logging.Debug("Line idle, giving up on buffered bytes",
				zap.Duration("idle", m.now().Sub(m.lastData)),
				zap.Int("bytes", buf.Len()),
			)
			m.sync.Flush(framing.ReasonTimeout)
			return false, nil
		}
	}
}

// Run loops Cycle until ctx is cancelled or the transport ends. Whatever is
// still buffered is then reported as shutdown noise. Cancellation and io.EOF
// are a normal end and return nil; any other transport error is returned.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		_, err := m.Cycle(ctx)
		if err == nil {
			continue
		}

		m.sync.Flush(framing.ReasonShutdown)

		switch {
		case errors.Is(err, io.EOF):
			logging.Info("Transport reached end of input")
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			logging.Debug("Monitor stopped", zap.Error(err))
			return nil
		default:
			return fmt.Errorf("failed to read from transport: %w", err)
		}
	}
}

// Stats is a snapshot of the monitor counters
type Stats struct {
	framing.Stats
	BytesRead int
	Elapsed   time.Duration
}

// Stats returns the counters so far
func (m *Monitor) Stats() Stats {
	return Stats{
		Stats:     m.sync.Stats(),
		BytesRead: m.read,
		Elapsed:   m.now().Sub(m.started),
	}
}
