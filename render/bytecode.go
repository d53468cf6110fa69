package render

import "encoding/binary"

// bytesToBytecode reinterprets little-endian SPIR-V bytes as 32-bit words.
func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}

	return byteCode
}
