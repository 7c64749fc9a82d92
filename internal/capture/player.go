package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// ErrReadOnly is returned when writing to a replayed capture
var ErrReadOnly = errors.New("capture replay is read-only")

// DefaultStep matches the default serial read timeout
const DefaultStep = 100 * time.Millisecond

// Player replays a capture as a serialport.Port. It keeps a virtual clock
// that follows the recorded timestamps: when the next record is more than
// one step away, Read advances the clock by a step and returns (0, nil),
// exactly as a real port whose read timed out.
type Player struct {
	dec     *cbor.Decoder
	file    io.Closer
	header  Header
	now     time.Time
	step    time.Duration
	next    *Record
	pending []byte
	done    bool
}

// NewPlayer reads the capture header from r
func NewPlayer(r io.Reader) (*Player, error) {
	dec := cbor.NewDecoder(bufio.NewReader(r))

	var hdr Header
	if err := dec.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotCapture, err)
	}
	if hdr.Format != Format {
		return nil, fmt.Errorf("%w: format %q", ErrNotCapture, hdr.Format)
	}
	if hdr.Version != Version {
		return nil, fmt.Errorf("unsupported capture version %d", hdr.Version)
	}

	return &Player{
		dec:    dec,
		header: hdr,
		now:    time.Unix(0, hdr.Started),
		step:   DefaultStep,
	}, nil
}

// Open opens a capture file for replay
func Open(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}

	p, err := NewPlayer(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.file = f
	return p, nil
}

// Header returns the capture header
func (p *Player) Header() Header {
	return p.header
}

// SetStep changes how far the clock advances on an empty read
func (p *Player) SetStep(d time.Duration) {
	if d > 0 {
		p.step = d
	}
}

// Now returns the virtual time of the replay
func (p *Player) Now() time.Time {
	return p.now
}

// Read returns the next recorded chunk, or (0, nil) while the virtual clock
// walks through a recorded silence. It returns io.EOF after the last record.
func (p *Player) Read(b []byte) (int, error) {
	if len(p.pending) > 0 {
		n := copy(b, p.pending)
		p.pending = p.pending[n:]
		return n, nil
	}

	if p.next == nil {
		if p.done {
			return 0, io.EOF
		}
		var rec Record
		if err := p.dec.Decode(&rec); err != nil {
			p.done = true
			if errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("failed to read capture record: %w", err)
		}
		p.next = &rec
	}

	at := p.next.At()
	if at.Sub(p.now) > p.step {
		p.now = p.now.Add(p.step)
		return 0, nil
	}
	if at.After(p.now) {
		p.now = at
	}

	n := copy(b, p.next.Data)
	p.pending = p.next.Data[n:]
	p.next = nil
	return n, nil
}

// Write always fails
func (p *Player) Write(b []byte) (int, error) {
	return 0, ErrReadOnly
}

// Close closes the underlying file when Open created it
func (p *Player) Close() error {
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}
