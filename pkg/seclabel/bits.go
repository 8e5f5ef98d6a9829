package seclabel

import "math/bits"

// UnpackContinuation extracts RFC 1108 style packed bits into out.
//
// Every input byte carries 7 payload bits in its upper part and a
// continuation flag in bit 0. Payload bits form a little-endian bit stream
// that fills out byte by byte. The first byte without the continuation flag
// terminates the stream and anything behind it is ignored. Significant bits
// that do not fit into out are reported as ErrOverflow, output bytes not
// covered by the input are zeroed.
func UnpackContinuation(in []byte, out []byte) error {
	var (
		acc  uint32
		nbit uint
		n    int
	)

	for _, b := range in {
		if b>>1 != 0 && n == len(out) {
			return ErrOverflow
		}

		acc |= uint32(b>>1) << nbit
		nbit += 7
		for nbit >= 8 {
			if n < len(out) {
				out[n] = byte(acc)
				n++
				acc >>= 8
				nbit -= 8
				continue
			}
			if acc != 0 {
				return ErrOverflow
			}
			// Output is full, but only zero bits were accumulated so far.
			nbit = 0
		}

		if b&1 == 0 {
			break
		}
	}

	for acc != 0 {
		if n == len(out) {
			return ErrOverflow
		}
		out[n] = byte(acc)
		n++
		acc >>= 8
	}

	clear(out[n:])
	return nil
}

// CopyTruncating copies in into out byte by byte. Input that does not fit
// into out must be zero, otherwise ErrOverflow is returned. Short input is
// zero-extended.
func CopyTruncating(in []byte, out []byte) error {
	n := copy(out, in)
	for _, b := range in[n:] {
		if b != 0 {
			return ErrOverflow
		}
	}
	clear(out[n:])
	return nil
}

// ReverseBits64 reverses the bit order of x. This converts between the
// MSB-first category bitmap used on the wire by CIPSO and the LSB-first
// category numbering used by Label.
func ReverseBits64(x uint64) uint64 {
	return bits.Reverse64(x)
}
