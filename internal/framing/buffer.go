package framing

import "io"

// DefaultCapacity is the buffer size used when none is configured
const DefaultCapacity = 256

// Buffer is a fixed-capacity byte accumulator.
//
// Bytes are always held contiguously starting at index 0 so a candidate
// frame never wraps. Size stays within [0, Cap()].
type Buffer struct {
	data []byte
	size int
}

// NewBuffer creates a buffer holding at most capacity bytes
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Append copies as much of p as fits and returns the count copied
func (b *Buffer) Append(p []byte) int {
	n := copy(b.data[b.size:], p)
	b.size += n
	return n
}

// Fill performs a single read from r directly into the free space.
// It returns 0 without reading when the buffer is full.
func (b *Buffer) Fill(r io.Reader) (int, error) {
	if b.Full() {
		return 0, nil
	}
	n, err := r.Read(b.data[b.size:])
	if n > 0 {
		b.size += n
	}
	return n, err
}

// Compact discards bytes [0, from) and moves the rest to the start
func (b *Buffer) Compact(from int) {
	if from <= 0 {
		return
	}
	if from >= b.size {
		b.size = 0
		return
	}
	copy(b.data, b.data[from:b.size])
	b.size -= from
}

// Reset drops all buffered bytes
func (b *Buffer) Reset() {
	b.size = 0
}

// Bytes returns the buffered bytes. The slice aliases the buffer and is only
// valid until the next mutation.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.size]
}

// Len returns the number of buffered bytes
func (b *Buffer) Len() int { return b.size }

// Cap returns the fixed capacity
func (b *Buffer) Cap() int { return len(b.data) }

// Free returns the remaining capacity
func (b *Buffer) Free() int { return len(b.data) - b.size }

// Full reports whether no more bytes can be appended
func (b *Buffer) Full() bool { return b.size == len(b.data) }
