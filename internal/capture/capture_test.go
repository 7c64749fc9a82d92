package capture

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// chunkPort returns one scripted chunk per Read and records writes
type chunkPort struct {
	chunks  [][]byte
	written []byte
	closed  bool
}

func (p *chunkPort) Read(b []byte) (int, error) {
	if len(p.chunks) == 0 {
		return 0, io.EOF
	}
	c := p.chunks[0]
	p.chunks = p.chunks[1:]
	return copy(b, c), nil
}

func (p *chunkPort) Write(b []byte) (int, error) {
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *chunkPort) Close() error {
	p.closed = true
	return nil
}

// steppingClock advances by the scripted durations on each call
type steppingClock struct {
	t     time.Time
	steps []time.Duration
}

func (c *steppingClock) Now() time.Time {
	if len(c.steps) > 0 {
		c.t = c.t.Add(c.steps[0])
		c.steps = c.steps[1:]
	}
	return c.t
}

var epoch = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func record(t *testing.T, chunks [][]byte, steps []time.Duration) []byte {
	t.Helper()

	var out bytes.Buffer
	port := &chunkPort{chunks: chunks}
	clock := &steppingClock{t: epoch, steps: steps}

	rec, err := NewRecorder(port, &out, Header{Device: "/dev/ttyUSB0", Line: "19200 8E1"}, WithRecorderClock(clock.Now))
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}

	buf := make([]byte, 256)
	for {
		if _, err := rec.Read(buf); err != nil {
			break
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !port.closed {
		t.Error("Close() did not close the port")
	}
	return out.Bytes()
}

func TestRecorder_RoundTrip(t *testing.T) {
	chunks := [][]byte{
		{0x01, 0x03, 0x00},
		{0x00, 0x00, 0x0a, 0xc5, 0xcd},
	}
	// First clock call stamps the header, then one per record
	data := record(t, chunks, []time.Duration{0, 10 * time.Millisecond, 20 * time.Millisecond})

	p, err := NewPlayer(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewPlayer() error = %v", err)
	}

	hdr := p.Header()
	if hdr.Format != Format || hdr.Version != Version {
		t.Errorf("Header() = %+v", hdr)
	}
	if hdr.Device != "/dev/ttyUSB0" || hdr.Line != "19200 8E1" {
		t.Errorf("Header() device/line = %q/%q", hdr.Device, hdr.Line)
	}
	if !p.Now().Equal(epoch) {
		t.Errorf("Now() before first read = %v, want %v", p.Now(), epoch)
	}

	buf := make([]byte, 256)
	var got [][]byte
	var times []time.Time
	for {
		n, err := p.Read(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if n > 0 {
			got = append(got, append([]byte(nil), buf[:n]...))
			times = append(times, p.Now())
		}
	}

	if len(got) != 2 || !bytes.Equal(got[0], chunks[0]) || !bytes.Equal(got[1], chunks[1]) {
		t.Fatalf("replayed chunks = %x, want %x", got, chunks)
	}
	if want := epoch.Add(10 * time.Millisecond); !times[0].Equal(want) {
		t.Errorf("first chunk time = %v, want %v", times[0], want)
	}
	if want := epoch.Add(30 * time.Millisecond); !times[1].Equal(want) {
		t.Errorf("second chunk time = %v, want %v", times[1], want)
	}

	// EOF is sticky
	if _, err := p.Read(buf); !errors.Is(err, io.EOF) {
		t.Errorf("Read() after end error = %v, want io.EOF", err)
	}
}

func TestPlayer_SilenceProducesEmptyReads(t *testing.T) {
	data := record(t, [][]byte{{0xaa}, {0xbb}}, []time.Duration{0, 0, 1500 * time.Millisecond})

	p, err := NewPlayer(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewPlayer() error = %v", err)
	}
	p.SetStep(500 * time.Millisecond)

	buf := make([]byte, 8)
	if n, err := p.Read(buf); n != 1 || err != nil {
		t.Fatalf("first Read() = %d, %v", n, err)
	}

	empty := 0
	for {
		n, err := p.Read(buf)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if n > 0 {
			break
		}
		empty++
	}

	// 1500ms gap in 500ms steps: two empty reads, then the data
	if empty != 2 {
		t.Errorf("empty reads = %d, want 2", empty)
	}
	if want := epoch.Add(1500 * time.Millisecond); !p.Now().Equal(want) {
		t.Errorf("Now() = %v, want %v", p.Now(), want)
	}
}

func TestPlayer_SmallReadBuffer(t *testing.T) {
	data := record(t, [][]byte{{1, 2, 3, 4, 5}}, nil)

	p, err := NewPlayer(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewPlayer() error = %v", err)
	}

	buf := make([]byte, 2)
	var got []byte
	for {
		n, err := p.Read(buf)
		if err != nil {
			break
		}
		got = append(got, buf[:n]...)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4, 5}) {
		t.Errorf("replayed = %v, want [1 2 3 4 5]", got)
	}
}

func TestNewPlayer_RejectsForeignData(t *testing.T) {
	other, err := cbor.Marshal(map[string]string{"format": "pcap"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"wrong format", other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPlayer(bytes.NewReader(tt.data)); !errors.Is(err, ErrNotCapture) {
				t.Errorf("NewPlayer() error = %v, want ErrNotCapture", err)
			}
		})
	}
}

func TestPlayer_WriteFails(t *testing.T) {
	data := record(t, nil, nil)
	p, err := NewPlayer(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Write([]byte{1}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Write() error = %v, want ErrReadOnly", err)
	}
}

func TestRecorder_WritePassesThrough(t *testing.T) {
	port := &chunkPort{}
	rec, err := NewRecorder(port, io.Discard, Header{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rec.Write([]byte{0x01, 0x06}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(port.written, []byte{0x01, 0x06}) {
		t.Errorf("port received %x", port.written)
	}
	if rec.Records() != 0 {
		t.Errorf("Records() = %d, outbound bytes must not be recorded", rec.Records())
	}
}

func TestCreateAndOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.cbor")

	rec, err := Create(path, &chunkPort{chunks: [][]byte{{0x11, 0x06}}}, Header{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	buf := make([]byte, 16)
	if _, err := rec.Read(buf); err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer p.Close()

	n, err := p.Read(buf)
	if err != nil || !bytes.Equal(buf[:n], []byte{0x11, 0x06}) {
		t.Errorf("Read() = %x, %v", buf[:n], err)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.cbor")); err == nil {
		t.Error("Open() of a missing file should fail")
	}

	junk := filepath.Join(t.TempDir(), "junk.cbor")
	if err := os.WriteFile(junk, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(junk); err == nil {
		t.Error("Open() of a non-capture file should fail")
	}
}
