// Package queue receives packets from a netfilter queue, passes them through
// the translator and returns the verdicts to the kernel.
package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/yanet-platform/go-nfqueue/v2"
	"github.com/yanet-platform/netlink"
	log "go.uber.org/zap"

	"github.com/yanet-platform/tripso/internal/translator"
	"github.com/yanet-platform/tripso/pkg/ipopt"
)

// Processor decides the fate of a packet and may rewrite it in place.
type Processor interface {
	Process(pkt ipopt.Buffer) translator.Verdict
}

// verdictSetter is the part of [nfqueue.Nfqueue] used to answer the kernel.
type verdictSetter interface {
	SetVerdict(id uint32, verdict int) error
	SetVerdictModPacket(id uint32, verdict int, packet []byte) error
}

type Queue struct {
	config    Config
	nf        *nfqueue.Nfqueue
	verdicts  verdictSetter
	processor Processor
	logger    *log.Logger
}

// New opens the netfilter queue described by config.
func New(config *Config, processor Processor, logger *log.Logger) (*Queue, error) {
	logger = logger.With(log.String("event_type", "queue"), log.Uint16("nfqueue", config.NfQueue))

	nfqConfig := &nfqueue.Config{
		NfQueue:       config.NfQueue,
		MaxPacketLen:  config.MaxPacketLen,
		MaxQueueLen:   config.MaxQueueLen,
		Copymode:      nfqueue.NfQnlCopyPacket,
		WriteTimeout:  config.WriteTimeout,
		WorkerNum:     config.WorkerNum,
		ReceiveBuffer: config.ReceiveBuffer,
	}

	nf, err := nfqueue.Open(nfqConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open nfqueue socket: %w", err)
	}

	if err := nf.Con.SetOption(netlink.NoENOBUFS, true); err != nil {
		_ = nf.Close()
		return nil, fmt.Errorf("failed to set option: %w", err)
	}

	if config.SocketBuffer > 0 {
		if err := nf.Con.SetReadBuffer(config.SocketBuffer); err != nil {
			_ = nf.Close()
			return nil, fmt.Errorf("failed to set read buffer: %w", err)
		}
	}

	return &Queue{
		config:    *config,
		nf:        nf,
		verdicts:  nf,
		processor: processor,
		logger:    logger,
	}, nil
}

// Run registers the packet handler and serves the queue until ctx is done.
func (m *Queue) Run(ctx context.Context) error {
	err := m.nf.RegisterWithErrorFunc(ctx, m.handle, func(err error) int {
		if isTemporary(err) {
			return 0
		}

		m.logger.Error("could not receive message", log.Error(err))
		return 0
	})
	if err != nil {
		return fmt.Errorf("failed to register function as callback: %w", err)
	}

	m.logger.Info("serving netfilter queue")
	<-ctx.Done()

	return nil
}

func (m *Queue) Stop() {
	if err := m.nf.Close(); err != nil {
		m.logger.Error("queue close", log.Error(err))
	}
}

// handle is called by the nfqueue workers for every queued packet.
func (m *Queue) handle(a nfqueue.Attribute) int {
	if a.PacketID == nil {
		return 0
	}
	id := *a.PacketID

	if a.Payload == nil || len(*a.Payload) == 0 {
		if err := m.setVerdict(id, translator.VerdictAccept, nil); err != nil {
			m.logger.Error("failed to set verdict", log.Uint32("packet_id", id), log.Error(err))
		}
		return 0
	}

	pkt := ipopt.NewPacket(*a.Payload, 0, int(m.config.MaxPacketLen))
	verdict := m.processor.Process(pkt)

	if err := m.setVerdict(id, verdict, pkt); err != nil {
		m.logger.Error(
			"failed to set verdict",
			log.Uint32("packet_id", id),
			log.Stringer("verdict", verdict),
			log.Error(err),
		)
	}

	return 0
}

// setVerdict passes the verdict to the kernel, retrying while the socket
// reports temporary errors.
func (m *Queue) setVerdict(id uint32, verdict translator.Verdict, pkt *ipopt.Packet) error {
	for {
		var err error
		switch verdict {
		case translator.VerdictModified:
			err = m.verdicts.SetVerdictModPacket(id, nfqueue.NfAccept, pkt.Bytes())
		case translator.VerdictAccept:
			err = m.verdicts.SetVerdict(id, nfqueue.NfAccept)
		default:
			err = m.verdicts.SetVerdict(id, nfqueue.NfDrop)
		}
		if err == nil {
			return nil
		}

		if !isTemporary(err) {
			return fmt.Errorf("failed to set verdict: %w", err)
		}
	}
}

func isTemporary(err error) bool {
	var opError *netlink.OpError
	if errors.As(err, &opError) {
		return opError.Timeout() || opError.Temporary()
	}
	return false
}
