package ipopt

import "encoding/binary"

// Checksum is a running RFC 1071 checksum that is updated incrementally, as
// described in RFC 1624. Words are removed before a field is changed and
// added back once it has its new value.
type Checksum struct {
	sum uint32
}

// NewChecksum starts from the value of a header checksum field.
func NewChecksum(field uint16) Checksum {
	return Checksum{sum: uint32(^field)}
}

// Add adds a 16-bit word to the checksum.
func (m *Checksum) Add(word uint16) {
	m.sum += uint32(word)
	m.fold()
}

// Remove subtracts a 16-bit word from the checksum.
func (m *Checksum) Remove(word uint16) {
	m.sum += uint32(^word)
	m.fold()
}

// AddBytes adds big endian words of b. b must have an even length.
func (m *Checksum) AddBytes(b []byte) {
	for i := 0; i+1 < len(b); i += 2 {
		m.Add(binary.BigEndian.Uint16(b[i:]))
	}
}

// RemoveBytes subtracts big endian words of b. b must have an even length.
func (m *Checksum) RemoveBytes(b []byte) {
	for i := 0; i+1 < len(b); i += 2 {
		m.Remove(binary.BigEndian.Uint16(b[i:]))
	}
}

// Field returns the value to be stored into the header checksum field.
func (m *Checksum) Field() uint16 {
	return ^uint16(m.sum)
}

func (m *Checksum) fold() {
	for m.sum > 0xffff {
		m.sum = (m.sum & 0xffff) + (m.sum >> 16)
	}
}

// FullChecksum computes the IPv4 header checksum from scratch, skipping the
// checksum field itself.
func FullChecksum(header []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(header); i += 2 {
		if i == ipv4ChecksumOffset {
			continue
		}
		sum += uint32(binary.BigEndian.Uint16(header[i:]))
	}
	for sum > 0xffff {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}
