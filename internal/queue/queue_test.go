package queue

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanet-platform/go-nfqueue/v2"
	"github.com/yanet-platform/netlink"
	log "go.uber.org/zap"

	"github.com/yanet-platform/tripso/internal/translator"
	"github.com/yanet-platform/tripso/pkg/ipopt"
)

type verdictCall struct {
	id      uint32
	verdict int
	packet  []byte
}

type verdictSetterMock struct {
	calls []verdictCall
	// errs are returned by the first calls.
	errs []error
}

func (m *verdictSetterMock) next(call verdictCall) error {
	m.calls = append(m.calls, call)
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return err
	}
	return nil
}

func (m *verdictSetterMock) SetVerdict(id uint32, verdict int) error {
	return m.next(verdictCall{id: id, verdict: verdict})
}

func (m *verdictSetterMock) SetVerdictModPacket(id uint32, verdict int, packet []byte) error {
	return m.next(verdictCall{id: id, verdict: verdict, packet: append([]byte(nil), packet...)})
}

// processorFunc adapts a function to Processor.
type processorFunc func(pkt ipopt.Buffer) translator.Verdict

func (f processorFunc) Process(pkt ipopt.Buffer) translator.Verdict {
	return f(pkt)
}

func newTestQueue(processor Processor, verdicts verdictSetter) *Queue {
	config := Config{}
	config.Default()
	return &Queue{
		config:    config,
		verdicts:  verdicts,
		processor: processor,
		logger:    log.NewNop(),
	}
}

func attribute(id uint32, payload []byte) nfqueue.Attribute {
	return nfqueue.Attribute{PacketID: &id, Payload: &payload}
}

// TestHandle_Verdicts checks the mapping of translator verdicts to netfilter
// verdicts.
func TestHandle_Verdicts(t *testing.T) {
	payload := []byte{0x45, 1, 2, 3}

	for _, c := range []struct {
		verdict translator.Verdict
		want    int
	}{
		{translator.VerdictAccept, nfqueue.NfAccept},
		{translator.VerdictDrop, nfqueue.NfDrop},
	} {
		verdicts := &verdictSetterMock{}
		queue := newTestQueue(processorFunc(func(ipopt.Buffer) translator.Verdict {
			return c.verdict
		}), verdicts)

		assert.Equal(t, 0, queue.handle(attribute(7, payload)))
		require.Len(t, verdicts.calls, 1)
		assert.Equal(t, verdictCall{id: 7, verdict: c.want}, verdicts.calls[0])
	}
}

// TestHandle_Modified checks that a rewritten packet is passed back to the
// kernel.
func TestHandle_Modified(t *testing.T) {
	verdicts := &verdictSetterMock{}
	queue := newTestQueue(processorFunc(func(pkt ipopt.Buffer) translator.Verdict {
		require.NoError(t, pkt.Push(2))
		copy(pkt.Bytes(), []byte{0xaa, 0xbb})
		return translator.VerdictModified
	}), verdicts)

	queue.handle(attribute(3, []byte{1, 2}))
	require.Len(t, verdicts.calls, 1)
	assert.Equal(t, verdictCall{id: 3, verdict: nfqueue.NfAccept, packet: []byte{0xaa, 0xbb, 1, 2}}, verdicts.calls[0])
}

// TestHandle_EmptyPayload checks that packets without payload are accepted
// without processing.
func TestHandle_EmptyPayload(t *testing.T) {
	verdicts := &verdictSetterMock{}
	queue := newTestQueue(processorFunc(func(ipopt.Buffer) translator.Verdict {
		t.Fatal("unexpected call")
		return translator.VerdictDrop
	}), verdicts)

	queue.handle(nfqueue.Attribute{})
	assert.Empty(t, verdicts.calls)

	queue.handle(attribute(1, nil))
	require.Len(t, verdicts.calls, 1)
	assert.Equal(t, nfqueue.NfAccept, verdicts.calls[0].verdict)
}

// TestSetVerdict_Retry checks that temporary errors are retried and
// permanent ones are returned.
func TestSetVerdict_Retry(t *testing.T) {
	verdicts := &verdictSetterMock{errs: []error{
		&netlink.OpError{Op: "send", Err: syscall.EAGAIN},
	}}
	queue := newTestQueue(nil, verdicts)
	require.NoError(t, queue.setVerdict(1, translator.VerdictDrop, nil))
	assert.Len(t, verdicts.calls, 2)

	permanent := errors.New("socket closed")
	verdicts = &verdictSetterMock{errs: []error{permanent}}
	queue = newTestQueue(nil, verdicts)
	assert.ErrorIs(t, queue.setVerdict(1, translator.VerdictAccept, nil), permanent)
	assert.Len(t, verdicts.calls, 1)
}
