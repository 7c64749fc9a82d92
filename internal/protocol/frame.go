package protocol

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// Frame size limits for Modbus RTU
const (
	MinFrameSize = 4   // Address + function + 2-byte CRC
	MaxFrameSize = 256 // Largest ADU allowed on a serial line
	CRCSize      = 2
)

// Frame is a CRC-valid Modbus RTU frame recovered from the line
type Frame struct {
	Address  byte   // Slave address (first byte)
	Function byte   // Function code with the exception flag removed
	Failed   bool   // Exception response (bit 7 of the function byte set)
	Payload  []byte // Bytes between the function code and the CRC
	CRC      uint16 // Checksum as transmitted (little-endian on the wire)
	Raw      []byte // Complete frame including the checksum
}

// ParseFrame splits a complete frame into its fields and verifies the
// checksum.
func ParseFrame(data []byte) (*Frame, error) {
	if len(data) < MinFrameSize {
		return nil, fmt.Errorf("frame too short: %d bytes (minimum %d)", len(data), MinFrameSize)
	}
	if len(data) > MaxFrameSize {
		return nil, fmt.Errorf("frame too long: %d bytes (maximum %d)", len(data), MaxFrameSize)
	}

	body := len(data) - CRCSize
	want := CRC16(data[:body])
	got := binary.LittleEndian.Uint16(data[body:])
	if got != want {
		return nil, fmt.Errorf("crc mismatch: got 0x%04x, want 0x%04x", got, want)
	}

	return &Frame{
		Address:  data[0],
		Function: FunctionCode(data[1]),
		Failed:   IsException(data[1]),
		Payload:  data[2:body],
		CRC:      got,
		Raw:      data,
	}, nil
}

// FunctionName returns the name of the frame's function code
func (f *Frame) FunctionName() string {
	return FunctionName(f.Function)
}

// String returns a debug representation of the frame
func (f *Frame) String() string {
	exc := ""
	if f.Failed {
		exc = ", exception"
	}
	return fmt.Sprintf("Frame{addr=0x%02x, func=%s%s, payload=%d bytes, crc=0x%04x}",
		f.Address, f.FunctionName(), exc, len(f.Payload), f.CRC)
}

// HexString renders bytes as lowercase hex pairs separated by spaces
func HexString(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(data) * 3)
	for i, v := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(hex.EncodeToString([]byte{v}))
	}
	return b.String()
}

// ParseHex parses bytes written as hex. Pairs may be separated by spaces,
// colons or commas and may carry a 0x prefix.
func ParseHex(args ...string) ([]byte, error) {
	joined := strings.Join(args, " ")
	fields := strings.FieldsFunc(joined, func(r rune) bool {
		return r == ' ' || r == ',' || r == ':' || r == '\t' || r == '\n'
	})

	var out []byte
	for _, field := range fields {
		field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
		if len(field)%2 != 0 {
			field = "0" + field
		}
		decoded, err := hex.DecodeString(field)
		if err != nil {
			return nil, fmt.Errorf("invalid hex %q: %w", field, err)
		}
		out = append(out, decoded...)
	}
	return out, nil
}
