// Package framing recovers Modbus RTU frames from a raw, unsynchronized
// serial byte stream.
//
// Modbus RTU has no in-band delimiter. A passive monitor attaching to a busy
// line sees bytes starting at an arbitrary offset, mixed with line noise and
// partial frames. This package finds frame boundaries using the CRC16 alone.
//
// # Components
//
//   - Buffer: fixed-capacity accumulator with append, compaction and reset
//   - Synchronizer: scans the buffer for a CRC-valid frame and reports it
//   - Segment/Sink: the byte ranges reported to presentation collaborators
//
// # Synchronization
//
// For each candidate start offset the second byte must be a plausible
// function code (exception bit ignored). The CRC is then extended one byte
// at a time; the first position where it reaches zero ends the frame. Bytes
// before the frame are reported as noise, the frame is reported in its
// device color and the buffer keeps the bytes that follow it:
//
//	sync := framing.NewSynchronizer(framing.Config{}, palette, sink)
//	n, found := sync.Feed(chunk)
//
// A full buffer with no frame is discarded as a whole so an unsynchronizable
// stream cannot stall the scanner.
//
// # Thread Safety
//
// Synchronizer and Buffer are owned by a single read loop and are not safe
// for concurrent use.
package framing
