// Package icmp sends ICMP Parameter Problem messages for rejected packets.
package icmp

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
	log "go.uber.org/zap"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"github.com/yanet-platform/tripso/internal/monitoring/metrics"
)

// quotedPayloadLen is the number of payload bytes quoted after the IPv4
// header of the offending packet.
const quotedPayloadLen = 8

var ErrShortPacket = errors.New("packet is shorter than an IPv4 header")

// PacketWriter is the subset of [net.PacketConn] used for sending.
type PacketWriter interface {
	WriteTo(b []byte, dst net.Addr) (int, error)
	Close() error
}

// Sender builds Parameter Problem messages and writes them to a raw socket.
// It is safe for concurrent use.
type Sender struct {
	conn PacketWriter

	// mu makes the lookup and the insertion into limiter one step.
	mu      sync.Mutex
	limiter *expirable.LRU[netip.Addr, struct{}]

	sent    metrics.Counter
	limited metrics.Counter

	logger *log.Logger
}

// New opens a raw ICMP socket bound to config.Bind.
func New(config *Config, provider metrics.Provider, logger *log.Logger) (*Sender, error) {
	conn, err := icmp.ListenPacket("ip4:icmp", config.Bind)
	if err != nil {
		return nil, fmt.Errorf("failed to open ICMP socket: %w", err)
	}

	return NewWithConn(config, conn, provider, logger), nil
}

// NewWithConn creates a sender writing to conn.
func NewWithConn(config *Config, conn PacketWriter, provider metrics.Provider, logger *log.Logger) *Sender {
	if provider == nil {
		provider = &metrics.NopProvider{}
	}

	m := &Sender{
		conn: conn,
		sent: provider.GetCounter(
			"icmp_sent_total",
			metrics.WithDescription("Parameter Problem messages sent."),
		),
		limited: provider.GetCounter(
			"icmp_rate_limited_total",
			metrics.WithDescription("Parameter Problem messages suppressed by the rate limiter."),
		),
		logger: logger.With(log.String("event_type", "icmp")),
	}
	if config.RateLimitWindow > 0 && config.RateLimitSize > 0 {
		m.limiter = expirable.NewLRU[netip.Addr, struct{}](config.RateLimitSize, nil, config.RateLimitWindow)
	}

	return m
}

// ParameterProblem sends a Parameter Problem message to the source of packet,
// which starts with its IPv4 header. The message quotes the header and the
// first bytes of the payload.
func (m *Sender) ParameterProblem(packet []byte, pointer int) error {
	if len(packet) < ipv4.HeaderLen {
		return ErrShortPacket
	}

	src := netip.AddrFrom4([4]byte(packet[12:16]))
	if !src.IsValid() || src.IsUnspecified() || src.IsMulticast() || src == netip.AddrFrom4([4]byte{255, 255, 255, 255}) {
		return nil
	}

	if !m.allow(src) {
		m.limited.Inc()
		return nil
	}

	quoted := int(packet[0]&0x0f)<<2 + quotedPayloadLen
	if quoted > len(packet) {
		quoted = len(packet)
	}

	msg := icmp.Message{
		Type: ipv4.ICMPTypeParameterProblem,
		Code: 0,
		Body: &icmp.ParamProb{
			Pointer: uintptr(pointer),
			Data:    packet[:quoted],
		},
	}
	wire, err := msg.Marshal(nil)
	if err != nil {
		return fmt.Errorf("failed to marshal parameter problem: %w", err)
	}

	if _, err := m.conn.WriteTo(wire, &net.IPAddr{IP: src.AsSlice()}); err != nil {
		return fmt.Errorf("failed to send parameter problem to %s: %w", src, err)
	}
	m.sent.Inc()

	return nil
}

// allow reports whether a message may be sent to src and records it.
func (m *Sender) allow(src netip.Addr) bool {
	if m.limiter == nil {
		return true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limiter.Contains(src) {
		return false
	}
	m.limiter.Add(src, struct{}{})
	return true
}

// Close closes the underlying socket.
func (m *Sender) Close() {
	if err := m.conn.Close(); err != nil {
		m.logger.Error("failed to close ICMP socket", log.Error(err))
	}
}
