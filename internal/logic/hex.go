package logic

// HexLen is the number of digits in an encoded count.
const HexLen = 16

const hexDigits = "0123456789ABCDEF"

// EncodeHex writes x into buf as 16 uppercase, zero-padded hex digits
// followed by a NUL, and returns the digits.
func EncodeHex(x uint64, buf *[HexLen + 1]byte) []byte {
	buf[HexLen] = 0
	for i := HexLen - 1; i >= 0; i-- {
		buf[i] = hexDigits[x&0xF]
		x >>= 4
	}
	return buf[:HexLen]
}
