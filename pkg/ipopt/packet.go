package ipopt

import (
	"errors"
)

// ErrNoHeadroom is returned when a buffer can not grow to fit a longer
// option area.
var ErrNoHeadroom = errors.New("no headroom to expand packet")

// Buffer is a packet whose IPv4 header is located at NetworkOffset of Bytes.
// The bytes before it are link layer framing, which is kept intact.
type Buffer interface {
	// Bytes returns the packet starting with its framing.
	Bytes() []byte
	// NetworkOffset returns the offset of the IPv4 header in Bytes.
	NetworkOffset() int
	// Push extends the packet by n bytes at the front. On error the buffer
	// is unchanged.
	Push(n int) error
	// Pull drops n bytes from the front of the packet.
	Pull(n int)
}

// DefaultHeadroom is reserved in front of packets created by NewPacket, it
// fits the largest possible option area.
const DefaultHeadroom = MaxOptionsLen

// Packet is an in-memory Buffer with headroom in front of the data.
type Packet struct {
	buf     []byte
	head    int
	network int
	limit   int
}

// NewPacket copies data into a new Packet with DefaultHeadroom. The IPv4
// header starts at network bytes into data. limit caps the packet length,
// zero means no limit beyond the IPv4 one.
func NewPacket(data []byte, network int, limit int) *Packet {
	buf := make([]byte, DefaultHeadroom+len(data))
	copy(buf[DefaultHeadroom:], data)
	if limit <= 0 {
		limit = network + maxIPv4PacketLen
	}
	return &Packet{
		buf:     buf,
		head:    DefaultHeadroom,
		network: network,
		limit:   limit,
	}
}

// Bytes implements Buffer.
func (m *Packet) Bytes() []byte {
	return m.buf[m.head:]
}

// NetworkOffset implements Buffer.
func (m *Packet) NetworkOffset() int {
	return m.network
}

// Network returns the packet starting with its IPv4 header.
func (m *Packet) Network() []byte {
	return m.buf[m.head+m.network:]
}

// Push implements Buffer. Storage is reallocated when the headroom is
// exhausted.
func (m *Packet) Push(n int) error {
	if n < 0 {
		return errors.New("negative push")
	}
	if len(m.buf)-m.head+n > m.limit {
		return ErrNoHeadroom
	}
	if n > m.head {
		buf := make([]byte, DefaultHeadroom+n+len(m.buf)-m.head)
		copy(buf[DefaultHeadroom+n:], m.buf[m.head:])
		m.buf = buf
		m.head = DefaultHeadroom
		return nil
	}
	m.head -= n
	return nil
}

// Pull implements Buffer.
func (m *Packet) Pull(n int) {
	m.head += n
}
