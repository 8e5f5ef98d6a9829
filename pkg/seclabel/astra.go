package seclabel

import "encoding/binary"

// Astra option layout:
//
//	[0]   130 (Security)
//	[1]   length >= 4
//	[2]   0b10101011, "Unclassified" in RFC 1108 terms
//	[3].. level (8 bits) followed by categories (64 bits, LSB0), packed by
//	      7 bits per byte, bit 0 of a byte is set if another byte follows
const (
	astraMarker    = 0b10101011
	astraHeaderLen = 3
	astraMinLen    = astraHeaderLen + 1

	// astraMaxGroups is the number of 7-bit groups holding 72 bits.
	astraMaxGroups = 11
)

// ParseAstra extracts a label from an Astra option. opt must hold exactly
// one option, starting with its type byte.
func ParseAstra(opt []byte) (Label, error) {
	if len(opt) < astraMinLen || int(opt[1]) < astraMinLen || int(opt[1]) > len(opt) {
		return Label{}, ErrMalformed
	}
	if opt[2] != astraMarker {
		return Label{}, ErrMalformed
	}

	// Level byte followed by 8 bytes of categories.
	var packed [9]byte
	if err := UnpackContinuation(opt[astraHeaderLen:opt[1]], packed[:]); err != nil {
		return Label{}, err
	}

	return Label{
		Level:      packed[0],
		Categories: binary.LittleEndian.Uint64(packed[1:]),
	}, nil
}

// AppendAstra appends the Astra encoding of label to dst. The encoding must
// fit into capacity bytes, otherwise ErrOverflow is returned and dst is left
// as is.
//
// Trailing zero groups are not emitted, so the result may be shorter than
// the option the label was parsed from. A zero label is still encoded with
// one group to keep the option parseable.
func AppendAstra(dst []byte, capacity int, label Label) ([]byte, error) {
	var groups [astraMaxGroups]byte

	// reg is an 8-bit window over the level||categories bit stream: 7 bits
	// leave it per group and 7 bits of categories come in.
	reg, cats := label.Level, label.Categories
	n := 0
	for n < len(groups) {
		b := (reg & 0x7f) << 1
		reg >>= 7
		reg |= byte(cats&0x7f) << 1
		cats >>= 7
		if reg != 0 || cats != 0 {
			b |= 1
		} else if b == 0 {
			break
		}
		groups[n] = b
		n++
	}
	if n == 0 {
		n = 1
	}

	size := astraHeaderLen + n
	if size > capacity {
		return dst, ErrOverflow
	}

	dst = append(dst, OptionTypeSecurity, byte(size), astraMarker)
	return append(dst, groups[:n]...), nil
}
