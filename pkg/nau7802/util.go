package nau7802

// Convert24To32 interprets a 3-byte, 24-bit signed value in two's
// complement form, MSB first, as a 32-bit int.
func Convert24To32(data []byte) int32 {
	var u32 uint32
	u32 |= uint32(data[0]) << 16
	u32 |= uint32(data[1]) << 8
	u32 |= uint32(data[2])

	// The sign bit sits at bit 23. Shift it up to bit 31, then arithmetic
	// shift back down to recover the magnitude with the sign intact.
	return int32(u32<<8) >> 8
}
