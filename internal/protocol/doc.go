// Package protocol implements the Modbus RTU framing primitives used by
// rtuscope.
//
// The package covers the parts of Modbus RTU that a passive line monitor
// needs: the CRC16 checksum, function code classification, frame field
// splitting and construction of outbound frames. It never decodes register
// payloads.
//
// # Frame Layout
//
// A Modbus RTU frame on the wire has this structure:
//   - Slave address: 1 byte
//   - Function code: 1 byte (bit 7 set on exception responses)
//   - Payload: 0-252 bytes
//   - CRC16: 2 bytes, low byte first
//
// There is no delimiter. Frame boundaries on the line are recovered by the
// framing package using the checksum alone.
//
// # Checksum
//
// CRC16 uses the reflected polynomial 0xA001 with initial value 0xFFFF and
// no final XOR. Running the checksum over a complete frame, CRC included,
// yields zero:
//
//	frame := protocol.AppendCRC([]byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x0A})
//	// frame = 01 03 00 00 00 0a c5 cd
//	protocol.CRC16(frame) == 0
//
// # Function Codes
//
// Only a handful of function codes are accepted as a plausible frame start
// by default (0x03, 0x06, 0x16). FunctionSet holds the configured
// allow-list; FunctionName gives display names.
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use.
package protocol
