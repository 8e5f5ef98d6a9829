package ipopt

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/net/ipv4"
)

const (
	ipv4TotalLenOffset = 2
	ipv4ChecksumOffset = 10
	maxIPv4PacketLen   = 0xffff
)

// Options returns the option area of the IPv4 header at the network offset
// of pkt.
func Options(pkt Buffer) ([]byte, error) {
	header := pkt.Bytes()[pkt.NetworkOffset():]
	if len(header) < ipv4.HeaderLen {
		return nil, fmt.Errorf("%w: short IPv4 header", ErrMalformed)
	}
	hdrLen := int(header[0]&0x0f) << 2
	if hdrLen < ipv4.HeaderLen || hdrLen > len(header) {
		return nil, fmt.Errorf("%w: invalid IPv4 header length %d", ErrMalformed, hdrLen)
	}
	return header[ipv4.HeaderLen:hdrLen], nil
}

// Rewrite replaces the option area of the IPv4 header in pkt with opts,
// whose length must be a multiple of 4 and at most MaxOptionsLen.
//
// The framing and the fixed header are moved to make room for the new
// options, header length and total length are adjusted and the header
// checksum is updated incrementally. Failures happen before the packet is
// touched.
func Rewrite(pkt Buffer, opts []byte) error {
	if len(opts)%4 != 0 || len(opts) > MaxOptionsLen {
		return fmt.Errorf("%w: option area of %d bytes", ErrMalformed, len(opts))
	}
	old, err := Options(pkt)
	if err != nil {
		return err
	}

	network := pkt.NetworkOffset()
	delta := len(opts) - len(old)

	header := pkt.Bytes()[network:]
	totalLen := int(binary.BigEndian.Uint16(header[ipv4TotalLenOffset:])) + delta
	if totalLen > maxIPv4PacketLen {
		return ErrNoHeadroom
	}

	csum := NewChecksum(binary.BigEndian.Uint16(header[ipv4ChecksumOffset:]))
	csum.RemoveBytes(header[:2])
	csum.RemoveBytes(header[ipv4TotalLenOffset : ipv4TotalLenOffset+2])
	csum.RemoveBytes(old)

	// Everything in front of the options is relocated.
	fixed := network + ipv4.HeaderLen
	switch {
	case delta > 0:
		if err := pkt.Push(delta); err != nil {
			return err
		}
		data := pkt.Bytes()
		copy(data, data[delta:delta+fixed])
	case delta < 0:
		data := pkt.Bytes()
		copy(data[-delta:], data[:fixed])
		pkt.Pull(-delta)
	}

	header = pkt.Bytes()[network:]
	copy(header[ipv4.HeaderLen:], opts)
	header[0] = header[0]&0xf0 | byte((ipv4.HeaderLen+len(opts))>>2)
	binary.BigEndian.PutUint16(header[ipv4TotalLenOffset:], uint16(totalLen))

	csum.AddBytes(header[:2])
	csum.AddBytes(header[ipv4TotalLenOffset : ipv4TotalLenOffset+2])
	csum.AddBytes(opts)
	binary.BigEndian.PutUint16(header[ipv4ChecksumOffset:], csum.Field())

	return nil
}
