package icmp

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	log "go.uber.org/zap"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

type written struct {
	data []byte
	dst  net.Addr
}

type connMock struct {
	mu     sync.Mutex
	writes []written
}

func (m *connMock) WriteTo(b []byte, dst net.Addr) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, written{data: append([]byte(nil), b...), dst: dst})
	return len(b), nil
}

func (m *connMock) Close() error {
	return nil
}

// packetFrom returns an IPv4 packet with a 24 bytes header sent by src.
func packetFrom(src [4]byte) []byte {
	packet := make([]byte, 24+12)
	packet[0] = 0x46
	packet[9] = 17
	copy(packet[12:16], src[:])
	copy(packet[16:20], []byte{198, 51, 100, 1})
	copy(packet[20:], []byte{130, 4, 0x00, 0x02})
	for i := 24; i < len(packet); i++ {
		packet[i] = byte(i)
	}
	return packet
}

func newTestSender(window time.Duration) (*Sender, *connMock) {
	conn := &connMock{}
	config := &Config{}
	config.Default()
	config.RateLimitWindow = window
	return NewWithConn(config, conn, nil, log.NewNop()), conn
}

// TestParameterProblem checks the layout of the message.
func TestParameterProblem(t *testing.T) {
	sender, conn := newTestSender(0)
	packet := packetFrom([4]byte{192, 0, 2, 1})

	require.NoError(t, sender.ParameterProblem(packet, 22))
	require.Len(t, conn.writes, 1)
	assert.Equal(t, "192.0.2.1", conn.writes[0].dst.String())

	msg, err := icmp.ParseMessage(1, conn.writes[0].data)
	require.NoError(t, err)
	assert.Equal(t, ipv4.ICMPTypeParameterProblem, msg.Type)
	assert.Equal(t, 0, msg.Code)

	body, ok := msg.Body.(*icmp.ParamProb)
	require.True(t, ok)
	assert.Equal(t, uintptr(22), body.Pointer)
	// Header and 8 bytes of payload.
	assert.Equal(t, packet[:32], body.Data)
}

// TestParameterProblem_RateLimit checks that one message per host is sent
// within the window.
func TestParameterProblem_RateLimit(t *testing.T) {
	sender, conn := newTestSender(time.Hour)

	require.NoError(t, sender.ParameterProblem(packetFrom([4]byte{192, 0, 2, 1}), 20))
	require.NoError(t, sender.ParameterProblem(packetFrom([4]byte{192, 0, 2, 1}), 20))
	require.NoError(t, sender.ParameterProblem(packetFrom([4]byte{192, 0, 2, 7}), 20))

	require.Len(t, conn.writes, 2)
	assert.Equal(t, "192.0.2.7", conn.writes[1].dst.String())
}

// TestParameterProblem_Invalid checks packets that are not answered.
func TestParameterProblem_Invalid(t *testing.T) {
	sender, conn := newTestSender(0)

	assert.ErrorIs(t, sender.ParameterProblem(make([]byte, 10), 20), ErrShortPacket)
	assert.NoError(t, sender.ParameterProblem(packetFrom([4]byte{0, 0, 0, 0}), 20))
	assert.NoError(t, sender.ParameterProblem(packetFrom([4]byte{224, 0, 0, 1}), 20))
	assert.NoError(t, sender.ParameterProblem(packetFrom([4]byte{255, 255, 255, 255}), 20))
	assert.Empty(t, conn.writes)
}

// TestParameterProblem_ShortPayload checks that the quote is limited to the
// packet.
func TestParameterProblem_ShortPayload(t *testing.T) {
	sender, conn := newTestSender(0)
	packet := packetFrom([4]byte{192, 0, 2, 1})[:26]

	require.NoError(t, sender.ParameterProblem(packet, 20))
	require.Len(t, conn.writes, 1)
	msg, err := icmp.ParseMessage(1, conn.writes[0].data)
	require.NoError(t, err)
	assert.Equal(t, packet, msg.Body.(*icmp.ParamProb).Data)
}

// TestParameterProblem_ConcurrentRateLimit checks that concurrent senders
// share the per-host window.
func TestParameterProblem_ConcurrentRateLimit(t *testing.T) {
	sender, conn := newTestSender(time.Hour)
	packet := packetFrom([4]byte{192, 0, 2, 1})

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, sender.ParameterProblem(packet, 20))
		}()
	}
	wg.Wait()

	assert.Len(t, conn.writes, 1)
}
