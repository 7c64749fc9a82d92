// Package serialport opens RS-485/RS-232 lines for the monitor.
//
// Three drivers are available: go.bug.st/serial (default, also used for
// port enumeration), github.com/tarm/serial and github.com/goburrow/serial.
// All of them are wrapped so that a Read which times out without data
// returns (0, nil) instead of a driver-specific error, letting the monitor
// loop check its context and its idle timer between reads.
package serialport
