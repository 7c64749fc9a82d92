// Package logging provides structured logging for rtuscope.
//
// This package wraps a global zap logger with convenience functions. Logging
// is silent unless a level is given with --log-level or RTUSCOPE_LOG_LEVEL,
// because stdout carries the hex rendering of the line and must stay clean.
// When enabled, logs are written to stderr in console format.
//
// # Log Levels
//
//   - Debug: every reported segment as hex, raw reads, flush decisions
//   - Info: port opened, capture and export targets, run summary
//   - Warn: buffer overflows, export write failures
//   - Error: transport failures that end the run
//
// # Usage
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
//	logging.Info("Serial port opened", zap.String("device", "/dev/ttyUSB0"))
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once Initialize has
// returned.
package logging
