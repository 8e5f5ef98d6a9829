// Package translator implements the per-packet pipeline: it locates the
// security label of an IPv4 packet, translates it, commits the rewritten
// header and decides the fate of the packet.
package translator

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/gopacket/layers"
	log "go.uber.org/zap"
	"golang.org/x/net/ipv4"

	"github.com/yanet-platform/tripso/internal/monitoring/metrics"
	"github.com/yanet-platform/tripso/pkg/ipopt"
)

// Verdict is the decision taken for a packet.
type Verdict int

const (
	// VerdictAccept passes the packet unchanged.
	VerdictAccept Verdict = iota
	// VerdictModified passes the packet with a rewritten header.
	VerdictModified
	// VerdictDrop discards the packet.
	VerdictDrop
)

func (m Verdict) String() string {
	switch m {
	case VerdictAccept:
		return "accept"
	case VerdictModified:
		return "modified"
	case VerdictDrop:
		return "drop"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Notifier reports rejected packets to their sender.
type Notifier interface {
	// ParameterProblem signals a problem at byte pointer of the IPv4 header
	// of packet, which starts with that header.
	ParameterProblem(packet []byte, pointer int) error
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) ParameterProblem([]byte, int) error { return nil }

// settings is the immutable state read by the packet path. It is replaced
// as a whole on reload.
type settings struct {
	config  Config
	scanner *ipopt.Translator
}

// Translator processes packets concurrently. Its configuration can be
// swapped at runtime with Update.
type Translator struct {
	settings atomic.Pointer[settings]
	notifier Notifier

	stats   stats
	metrics *translatorMetrics
	logger  *log.Logger
}

// New creates a translator. The configuration must have been prepared.
func New(config *Config, notifier Notifier, provider metrics.Provider, logger *log.Logger) (*Translator, error) {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if provider == nil {
		provider = &metrics.NopProvider{}
	}

	m := &Translator{
		notifier: notifier,
		metrics:  newTranslatorMetrics(provider),
		logger:   logger.With(log.String("event_type", "translator")),
	}
	if err := m.Update(config); err != nil {
		return nil, err
	}

	return m, nil
}

// Update validates config and makes it effective for the next packets.
func (m *Translator) Update(config *Config) error {
	if config == nil {
		return errors.New("translator: nil config")
	}
	cfg := *config
	if err := cfg.Prepare(); err != nil {
		return err
	}
	scanner, err := ipopt.NewTranslator(cfg.Mode, cfg.DOI)
	if err != nil {
		return fmt.Errorf("translator: %w", err)
	}

	m.settings.Store(&settings{config: cfg, scanner: scanner})
	m.logger.Info(
		"translator configured",
		log.Stringer("mode", cfg.Mode),
		log.Uint32("doi", cfg.DOI),
		log.Uint("debug", cfg.Debug),
		log.Bool("icmp", cfg.SendICMP()),
	)

	return nil
}

// Config returns the configuration in effect.
func (m *Translator) Config() Config {
	return m.settings.Load().config
}

// Process translates the security label of pkt in place and returns the
// verdict for it.
//
// Packets that are not IPv4 or carry no source label are accepted as is.
// Rejected packets are dropped after a Parameter Problem is sent, unless
// they are ICMP themselves or notifications are disabled. A failure to grow
// the buffer drops the packet silently.
func (m *Translator) Process(pkt ipopt.Buffer) Verdict {
	start := time.Now()
	verdict := m.process(pkt)

	m.metrics.duration.Observe(time.Since(start).Seconds())
	m.metrics.packets.GetMetricWith(metrics.Labels{"verdict": verdict.String()}).Inc()
	m.stats.add(verdict)

	return verdict
}

func (m *Translator) process(pkt ipopt.Buffer) Verdict {
	s := m.settings.Load()

	header := pkt.Bytes()[pkt.NetworkOffset():]
	if len(header) == 0 {
		m.reject(s, nil, ErrTruncated)
		return VerdictDrop
	}
	if header[0]>>4 != ipv4.Version {
		return VerdictAccept
	}

	opts, err := ipopt.Options(pkt)
	if err != nil {
		m.reject(s, nil, NewLabeledError(err, ErrTruncated.labelValue))
		return VerdictDrop
	}

	res, err := s.scanner.Translate(opts)
	if err != nil {
		m.reject(s, header, err)
		return VerdictDrop
	}
	if !res.Translated {
		return VerdictAccept
	}

	if s.config.Debug > 1 {
		m.logger.Info(
			"translating security label",
			log.Stringer("mode", s.config.Mode),
			log.Stringer("label", res.Label),
			log.Int("offset", res.Offset),
			log.String("options", hex.EncodeToString(opts)),
			log.String("translated", hex.EncodeToString(res.Options())),
		)
	}

	if err := ipopt.Rewrite(pkt, res.Options()); err != nil {
		// The packet content is valid, nothing is reported to the sender.
		m.reject(s, nil, labelError(err))
		return VerdictDrop
	}

	return VerdictModified
}

// reject accounts a dropped packet. A Parameter Problem is sent when header
// is set, notifications are enabled and the packet is not ICMP.
func (m *Translator) reject(s *settings, header []byte, err error) {
	labeled := labelError(err)
	m.metrics.rejected.GetMetricWith(labeled.Label()).Inc()

	if s.config.Debug > 1 {
		m.logger.Info("packet rejected", log.Error(err))
	}

	if header == nil || !s.config.SendICMP() {
		return
	}
	if len(header) > 9 && layers.IPProtocol(header[9]) == layers.IPProtocolICMPv4 {
		return
	}

	pointer := ipv4.HeaderLen
	var scanErr *ipopt.ScanError
	if errors.As(err, &scanErr) {
		pointer += scanErr.Offset
	}

	if err := m.notifier.ParameterProblem(header, pointer); err != nil {
		m.metrics.icmpErrors.Inc()
		m.logger.Warn("failed to send parameter problem", log.Error(err))
	}
}

// Status returns the running configuration and packet counters.
func (m *Translator) Status() Status {
	cfg := m.Config()
	return Status{
		Mode:     cfg.Mode,
		DOI:      cfg.DOI,
		Debug:    cfg.Debug,
		ICMP:     cfg.SendICMP(),
		Accepted: m.stats.accepted.Load(),
		Modified: m.stats.modified.Load(),
		Dropped:  m.stats.dropped.Load(),
	}
}
