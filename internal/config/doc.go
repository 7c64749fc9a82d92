// Package config provides user configuration management for rtuscope.
//
// Settings come from three layers, later layers winning:
//
//  1. The YAML file (see GetConfigPath), or Default() when it is missing
//  2. Environment variables, optionally loaded from a .env file
//  3. Command line flags, applied by the CLI
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/rtuscope/config.yaml or $HOME/.config/rtuscope/config.yaml
//   - macOS: $HOME/.config/rtuscope/config.yaml
//   - Windows: %LOCALAPPDATA%\rtuscope\config.yaml
//
// # Security
//
// The InfluxDB token is never written to the file. It is read from
// RTUSCOPE_INFLUX_TOKEN only.
//
// # Example
//
//	version: 1
//	serial:
//	  device: /dev/ttyUSB0
//	  driver: bugst
//	  baud: 19200
//	  data_bits: 8
//	  parity: even
//	  stop_bits: 1
//	framing:
//	  buffer_size: 256
//	  timeout_ms: 1000
//	  function_codes: [3, 6, 16, 22]
//	display:
//	  palette: [green, yellow, blue, purple, purple, cyan, white]
//	  timestamps: true
package config
