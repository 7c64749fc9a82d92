package framing

import (
	"time"

	"github.com/muurk/rtuscope/internal/logging"
	"github.com/muurk/rtuscope/internal/protocol"
	"go.uber.org/zap"
)

// Config holds the synchronizer configuration
type Config struct {
	BufferSize     int                  // Buffer capacity (0 = DefaultCapacity)
	FunctionCodes  protocol.FunctionSet // Plausible second bytes (zero value = defaults)
	MinFrameLength int                  // Shortest frame accepted on a zero CRC (0 = protocol.MinFrameSize)
}

// Synchronizer locates CRC-valid frames in an unsynchronized byte stream.
//
// It owns the buffer, the scan state and the statistics. It is not safe for
// concurrent use; a single read loop drives it.
type Synchronizer struct {
	buf      *Buffer
	codes    protocol.FunctionSet
	minFrame int
	colors   ColorAssigner
	sink     Sink
	now      func() time.Time
	stats    Stats
}

// NewSynchronizer creates a synchronizer reporting to sink and coloring
// frames through colors. Either may be nil.
func NewSynchronizer(cfg Config, colors ColorAssigner, sink Sink) *Synchronizer {
	codes := cfg.FunctionCodes
	if codes == (protocol.FunctionSet{}) {
		codes = protocol.DefaultFunctionSet()
	}
	minFrame := cfg.MinFrameLength
	if minFrame <= 0 {
		minFrame = protocol.MinFrameSize
	}

	return &Synchronizer{
		buf:      NewBuffer(cfg.BufferSize),
		codes:    codes,
		minFrame: minFrame,
		colors:   colors,
		sink:     sink,
		now:      time.Now,
		stats:    newStats(),
	}
}

// SetClock replaces the timestamp source used for segments
func (s *Synchronizer) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Buffer returns the buffer bytes are read into
func (s *Synchronizer) Buffer() *Buffer {
	return s.buf
}

// Stats returns a snapshot of the counters
func (s *Synchronizer) Stats() Stats {
	return s.stats.clone()
}

// Feed appends as much of p as fits and processes the buffer.
// It returns the number of bytes accepted and whether a frame was found.
func (s *Synchronizer) Feed(p []byte) (int, bool) {
	n := s.buf.Append(p)
	return n, s.Process()
}

// Process runs one synchronization pass and applies the overflow rule:
// a full buffer that yields no frame is discarded entirely.
func (s *Synchronizer) Process() bool {
	if s.Synchronize() {
		return true
	}
	s.Overflow()
	return false
}

// Synchronize scans for the first start offset at which a CRC-valid frame
// begins. On success the leading bytes are reported as noise, the frame is
// reported in its device color, the buffer keeps only what follows the frame
// and true is returned. Otherwise the buffer is left untouched.
func (s *Synchronizer) Synchronize() bool {
	data := s.buf.Bytes()
	size := len(data)

	for start := 0; start+1 < size; start++ {
		if !s.codes.Contains(data[start+1]) {
			continue
		}

		crc := protocol.CRC16Initial
		for i := start; i < size; i++ {
			crc = protocol.UpdateCRC16(crc, data[i])
			if crc != 0 || i+1-start < s.minFrame {
				continue
			}

			s.confirm(start, i+1)
			return true
		}
	}
	return false
}

// confirm reports [0, start) as noise and [start, end) as a frame, then
// compacts the buffer to the bytes after end.
func (s *Synchronizer) confirm(start, end int) {
	data := s.buf.Bytes()
	at := s.now()

	if start > 0 {
		s.discard(data[:start], ReasonResync, at)
	}

	frame := Segment{
		Role:      RoleFrame,
		Data:      clone(data[start:end]),
		Address:   data[start],
		Function:  protocol.FunctionCode(data[start+1]),
		Exception: protocol.IsException(data[start+1]),
		At:        at,
	}
	if s.colors != nil {
		frame.Color = s.colors.ColorFor(frame.Address)
	}

	s.stats.recordFrame(frame)
	logging.Debug("Frame confirmed",
		zap.Uint8("address", frame.Address),
		zap.String("function", protocol.FunctionName(frame.Function)),
		zap.Bool("exception", frame.Exception),
		zap.Int("length", len(frame.Data)),
		zap.Int("offset", start),
	)
	s.emit(frame)

	s.buf.Compact(end)
}

// Overflow discards the whole buffer if it is full. It reports whether the
// buffer was discarded.
func (s *Synchronizer) Overflow() bool {
	if !s.buf.Full() {
		return false
	}
	s.stats.Overflows++
	logging.Warn("Buffer overflow without a valid frame, discarding",
		zap.Int("bytes", s.buf.Len()),
	)
	s.discard(s.buf.Bytes(), ReasonOverflow, s.now())
	s.buf.Reset()
	return true
}

// Flush discards whatever is buffered for the given reason and returns the
// number of bytes dropped.
func (s *Synchronizer) Flush(reason Reason) int {
	n := s.buf.Len()
	if n == 0 {
		return 0
	}
	if reason == ReasonTimeout {
		s.stats.Timeouts++
	}
	logging.Debug("Flushing buffer",
		zap.String("reason", string(reason)),
		zap.Int("bytes", n),
	)
	s.discard(s.buf.Bytes(), reason, s.now())
	s.buf.Reset()
	return n
}

func (s *Synchronizer) discard(data []byte, reason Reason, at time.Time) {
	s.stats.NoiseBytes += len(data)
	s.emit(Segment{
		Role:   RoleNoise,
		Data:   clone(data),
		Reason: reason,
		At:     at,
	})
}

func (s *Synchronizer) emit(seg Segment) {
	logging.LogSegment(seg.Role.String(), seg.Data)
	if s.sink != nil {
		s.sink.Emit(seg)
	}
}

func clone(p []byte) []byte {
	out := make([]byte, len(p))
	copy(out, p)
	return out
}
