package protocol

import "fmt"

// AppendCRC appends the Modbus checksum of frame, low byte first.
func AppendCRC(frame []byte) []byte {
	crc := CRC16(frame)
	return append(frame, byte(crc&0x00FF), byte(crc>>8))
}

// BuildFrame assembles address, function code and payload into a complete
// frame ready for the wire.
func BuildFrame(address, function byte, payload []byte) ([]byte, error) {
	size := 2 + len(payload) + CRCSize
	if size > MaxFrameSize {
		return nil, fmt.Errorf("frame too large: %d bytes (max %d)", size, MaxFrameSize)
	}

	frame := make([]byte, 0, size)
	frame = append(frame, address, function)
	frame = append(frame, payload...)
	return AppendCRC(frame), nil
}

// BuildReadHoldingRegisters builds a function 0x03 request.
func BuildReadHoldingRegisters(address byte, start, count uint16) ([]byte, error) {
	if count == 0 || count > 125 {
		return nil, fmt.Errorf("register count %d out of range (1-125)", count)
	}
	return BuildFrame(address, FuncReadHoldingRegisters, []byte{
		byte(start >> 8), byte(start),
		byte(count >> 8), byte(count),
	})
}

// BuildWriteSingleRegister builds a function 0x06 request.
func BuildWriteSingleRegister(address byte, register, value uint16) ([]byte, error) {
	return BuildFrame(address, FuncWriteSingleRegister, []byte{
		byte(register >> 8), byte(register),
		byte(value >> 8), byte(value),
	})
}
