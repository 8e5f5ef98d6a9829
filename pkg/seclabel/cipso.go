package seclabel

import "encoding/binary"

// CIPSO option layout:
//
//	[0]     134 (CIPSO)
//	[1]     length, 7..40
//	[2..5]  DOI, big endian
//	tags:
//	 [6]    tag type, 1 for the restricted bitmap
//	 [7]    tag length, 4..34
//	 [8]    alignment octet
//	 [9]    sensitivity level
//	 [10..] category bitmap, MSB first, 0..30 octets
const (
	cipsoHeaderLen = 6
	cipsoTagLen    = 4
	cipsoOptLen    = cipsoHeaderLen + cipsoTagLen

	// CipsoTagRestrictedBitmap is the only supported CIPSO tag type.
	CipsoTagRestrictedBitmap byte = 1
)

// ParseCipso extracts a label from a CIPSO option whose DOI must be equal
// to doi. opt must hold exactly one option, starting with its type byte.
func ParseCipso(opt []byte, doi uint32) (Label, error) {
	if len(opt) <= cipsoHeaderLen {
		return Label{}, ErrMalformed
	}
	size := int(opt[1])
	if size <= cipsoHeaderLen || size > MaxOptionsLen || size > len(opt) {
		return Label{}, ErrMalformed
	}
	if binary.BigEndian.Uint32(opt[2:cipsoHeaderLen]) != doi {
		return Label{}, ErrForeignDOI
	}

	// The first tag decides: it must be a restricted bitmap.
	tags := opt[cipsoHeaderLen:size]
	if len(tags) < cipsoTagLen {
		return Label{}, ErrMalformed
	}
	tagLen := int(tags[1])
	if tagLen < cipsoTagLen || tagLen > len(tags) {
		return Label{}, ErrMalformed
	}
	if tags[0] != CipsoTagRestrictedBitmap {
		return Label{}, ErrMalformed
	}

	var bitmap [8]byte
	if err := CopyTruncating(tags[cipsoTagLen:tagLen], bitmap[:]); err != nil {
		return Label{}, err
	}

	return Label{
		Level:      tags[3],
		Categories: ReverseBits64(binary.BigEndian.Uint64(bitmap[:])),
	}, nil
}

// AppendCipso appends the CIPSO encoding of label with the given doi to
// dst. The bitmap is trimmed to its last non-zero octet. The encoding must
// fit into capacity bytes, otherwise ErrOverflow is returned and dst is left
// as is.
func AppendCipso(dst []byte, capacity int, doi uint32, label Label) ([]byte, error) {
	var bitmap [8]byte
	binary.BigEndian.PutUint64(bitmap[:], ReverseBits64(label.Categories))

	n := len(bitmap)
	for n > 0 && bitmap[n-1] == 0 {
		n--
	}

	size := cipsoOptLen + n
	if size > capacity {
		return dst, ErrOverflow
	}

	dst = append(dst, OptionTypeCipso, byte(size))
	dst = binary.BigEndian.AppendUint32(dst, doi)
	dst = append(dst, CipsoTagRestrictedBitmap, byte(cipsoTagLen+n), 0, label.Level)
	return append(dst, bitmap[:n]...), nil
}
