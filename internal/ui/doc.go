// Package ui provides terminal output components for the rtuscope CLI.
//
// This package uses Lipgloss and Bubble Tea to render the monitor's output.
// Apart from the port picker, components follow a "render and move on"
// pattern: they produce styled strings and never wait for input.
//
// # Components
//
//   - HexPrinter: framing.Sink that prints each segment as hex pairs
//   - ColorRegistry: stable per-device colors in first-seen order
//   - Header: banner describing the port and line settings
//   - Summary: counters box printed when a run ends
//   - PickPort: interactive serial port list
//
// # Output Streams
//
// The hex stream goes to stdout and is the only thing written there. The
// header, summary, picker and zap logs all go to stderr so that
//
//	rtuscope monitor --no-color > capture.txt
//
// produces a file containing nothing but frames and noise.
//
// # Color
//
// Frames are drawn in the color of their slave address, noise in a muted
// gray and frames sent with "rtuscope send" in red. Color is disabled when
// stdout is not a terminal or --no-color is passed.
package ui
