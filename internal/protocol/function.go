package protocol

import (
	"fmt"
	"sort"
	"strings"
)

// Function code bits
const (
	FunctionMask  = 0x7F // Function code without the exception flag
	ExceptionFlag = 0x80 // Set by a slave answering with an exception
)

// Public function codes that may appear on the line
const (
	FuncReadCoils                  = 0x01
	FuncReadDiscreteInputs         = 0x02
	FuncReadHoldingRegisters       = 0x03
	FuncReadInputRegisters         = 0x04
	FuncWriteSingleCoil            = 0x05
	FuncWriteSingleRegister        = 0x06
	FuncReadExceptionStatus        = 0x07
	FuncDiagnostics                = 0x08
	FuncWriteMultipleCoils         = 0x0F
	FuncWriteMultipleRegisters     = 0x10
	FuncReportServerID             = 0x11
	FuncMaskWriteRegister          = 0x16
	FuncReadWriteMultipleRegisters = 0x17
	FuncReadDeviceIdentification   = 0x2B
)

// DefaultFunctionCodes are the codes accepted as a plausible second byte of a
// frame: read holding registers, write single register and mask write.
var DefaultFunctionCodes = []byte{
	FuncReadHoldingRegisters,
	FuncWriteSingleRegister,
	FuncMaskWriteRegister,
}

// FunctionCode strips the exception flag from b.
func FunctionCode(b byte) byte {
	return b & FunctionMask
}

// IsException reports whether b carries the exception flag.
func IsException(b byte) bool {
	return b&ExceptionFlag != 0
}

// FunctionSet is an allow-list of function codes indexed by code.
type FunctionSet [128]bool

// NewFunctionSet builds a set from the given codes. The exception flag is
// ignored.
func NewFunctionSet(codes ...byte) FunctionSet {
	var s FunctionSet
	for _, c := range codes {
		s[FunctionCode(c)] = true
	}
	return s
}

// DefaultFunctionSet returns the set built from DefaultFunctionCodes.
func DefaultFunctionSet() FunctionSet {
	return NewFunctionSet(DefaultFunctionCodes...)
}

// ParseFunctionSet validates configured codes and builds a set.
// An empty list yields the default set.
func ParseFunctionSet(codes []int) (FunctionSet, error) {
	if len(codes) == 0 {
		return DefaultFunctionSet(), nil
	}
	var s FunctionSet
	for _, c := range codes {
		if c < 1 || c > FunctionMask {
			return s, fmt.Errorf("invalid function code %d (must be 1-127)", c)
		}
		s[c] = true
	}
	return s, nil
}

// Contains reports whether the second byte of a candidate frame is in the
// set once the exception flag is removed.
func (s *FunctionSet) Contains(b byte) bool {
	return s[FunctionCode(b)]
}

// Codes returns the member codes in ascending order.
func (s *FunctionSet) Codes() []byte {
	var codes []byte
	for c, ok := range s {
		if ok {
			codes = append(codes, byte(c))
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// String returns the set as a comma separated list of codes.
func (s *FunctionSet) String() string {
	codes := s.Codes()
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return strings.Join(parts, ",")
}

// FunctionName returns a human-readable name for a function code.
// The exception flag is ignored.
func FunctionName(b byte) string {
	switch FunctionCode(b) {
	case FuncReadCoils:
		return "ReadCoils"
	case FuncReadDiscreteInputs:
		return "ReadDiscreteInputs"
	case FuncReadHoldingRegisters:
		return "ReadHoldingRegisters"
	case FuncReadInputRegisters:
		return "ReadInputRegisters"
	case FuncWriteSingleCoil:
		return "WriteSingleCoil"
	case FuncWriteSingleRegister:
		return "WriteSingleRegister"
	case FuncReadExceptionStatus:
		return "ReadExceptionStatus"
	case FuncDiagnostics:
		return "Diagnostics"
	case FuncWriteMultipleCoils:
		return "WriteMultipleCoils"
	case FuncWriteMultipleRegisters:
		return "WriteMultipleRegisters"
	case FuncReportServerID:
		return "ReportServerID"
	case FuncMaskWriteRegister:
		return "MaskWriteRegister"
	case FuncReadWriteMultipleRegisters:
		return "ReadWriteMultipleRegisters"
	case FuncReadDeviceIdentification:
		return "ReadDeviceIdentification"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", FunctionCode(b))
	}
}
