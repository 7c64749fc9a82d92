// Package capture records raw serial reads to a file and replays them.
//
// A capture is a stream of CBOR items: one Header followed by one Record
// per non-empty port read, each stamped with its arrival time in Unix
// nanoseconds. Recording happens below framing, so a replay runs the exact
// same synchronizer logic over the exact same chunking the line produced.
package capture
