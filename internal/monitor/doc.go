// Package monitor runs the read loop of the sniffer.
//
// A Monitor pulls bytes from a transport into a framing.Synchronizer and
// applies the two discard rules that keep the buffer moving: a full buffer
// without a frame is dropped (overflow), and a partially filled buffer that
// sees no new bytes for the idle timeout is dropped (timeout). The loop is
// single-threaded; cancellation is observed between transport reads, which
// are bounded by the transport's own read timeout.
package monitor
