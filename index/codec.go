package index

// VarByte codec (C1). Encodes a finite sequence of non-negative integers
// as 7-bit little-endian chunks; every byte but the last for a given
// integer has its high bit set. A zero encodes as a single 0x00.

// maxVarByteBytes bounds how many continuation bytes a single encoded
// integer may span before DecodeVarByte gives up and reports overflow
// (10 groups of 7 bits cover the full 64-bit range).
const maxVarByteBytes = 10

// EncodeVarByte appends the VarByte encoding of xs to dst and returns the
// extended slice, so callers can build up a block's encoded segment
// without an intermediate allocation per integer.
func EncodeVarByte(dst []byte, xs []uint64) []byte {
	for _, x := range xs {
		for x >= 0x80 {
			dst = append(dst, byte(x&0x7f)|0x80)
			x >>= 7
		}
		dst = append(dst, byte(x))
	}
	return dst
}

// DecodeVarByte decodes a byte stream into a sequence of non-negative
// integers. A truncated stream (no terminating byte for the final,
// partially accumulated integer) yields only the fully-decoded prefix;
// the dangling accumulator is discarded, matching spec.md §4.1.
func DecodeVarByte(b []byte) ([]uint64, error) {
	out := make([]uint64, 0, len(b))
	var acc uint64
	var shift uint
	var nbytes int
	for _, c := range b {
		nbytes++
		if nbytes > maxVarByteBytes {
			return nil, ErrCodecOverflow
		}
		if nbytes == maxVarByteBytes && c&0x7f > 1 {
			// The tenth group holds only bit 63.
			return nil, ErrCodecOverflow
		}
		acc |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			out = append(out, acc)
			acc = 0
			shift = 0
			nbytes = 0
			continue
		}
		shift += 7
	}
	return out, nil
}
