package protocol

// Modbus CRC16 parameters: reflected polynomial 0x8005, initial value 0xFFFF,
// no final XOR.
const (
	CRC16Polynomial uint16 = 0xA001
	CRC16Initial    uint16 = 0xFFFF
)

// CRC16 calculates the Modbus RTU checksum of data.
//
// The sender transmits the result low byte first. Running CRC16 over a
// complete frame, checksum included, yields zero.
func CRC16(data []byte) uint16 {
	crc := CRC16Initial
	for _, b := range data {
		crc = UpdateCRC16(crc, b)
	}
	return crc
}

// CRC16Range calculates the checksum of data[offset:offset+length].
// Out-of-range requests are clamped to the slice.
func CRC16Range(data []byte, offset, length int) uint16 {
	if offset < 0 {
		offset = 0
	}
	if offset > len(data) {
		offset = len(data)
	}
	end := offset + length
	if length < 0 || end > len(data) {
		end = len(data)
	}
	return CRC16(data[offset:end])
}

// UpdateCRC16 folds a single byte into a running checksum.
func UpdateCRC16(crc uint16, b byte) uint16 {
	crc ^= uint16(b)
	for i := 0; i < 8; i++ {
		if crc&0x0001 != 0 {
			crc = (crc >> 1) ^ CRC16Polynomial
		} else {
			crc >>= 1
		}
	}
	return crc
}

// ValidCRC reports whether frame ends with the correct checksum of its
// leading bytes.
func ValidCRC(frame []byte) bool {
	if len(frame) < 3 {
		return false
	}
	return CRC16(frame) == 0
}
