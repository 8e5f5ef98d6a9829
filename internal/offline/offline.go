// Package offline translates the security labels of packets stored in pcap
// files.
package offline

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	log "go.uber.org/zap"

	"github.com/yanet-platform/tripso/internal/translator"
	"github.com/yanet-platform/tripso/pkg/ipopt"
)

// Processor decides the fate of a packet and may rewrite it in place.
type Processor interface {
	Process(pkt ipopt.Buffer) translator.Verdict
}

// Stats counts the packets of a capture by outcome.
type Stats struct {
	Packets  int `json:"packets"`
	Accepted int `json:"accepted"`
	Modified int `json:"modified"`
	Dropped  int `json:"dropped"`
	// Skipped packets carry no IPv4 header and are copied as is.
	Skipped int `json:"skipped"`
}

// Translate reads a pcap stream from r, processes every IPv4 packet and
// writes the accepted ones to w with the link type of the input. Dropped
// packets are left out.
func Translate(r io.Reader, w io.Writer, processor Processor, logger *log.Logger) (Stats, error) {
	var stats Stats

	reader, err := pcapgo.NewReader(r)
	if err != nil {
		return stats, fmt.Errorf("failed to read pcap header: %w", err)
	}
	linkType := reader.LinkType()

	writer := pcapgo.NewWriter(w)
	if err := writer.WriteFileHeader(reader.Snaplen(), linkType); err != nil {
		return stats, fmt.Errorf("failed to write pcap header: %w", err)
	}

	for {
		data, ci, err := reader.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("failed to read packet %d: %w", stats.Packets+1, err)
		}
		stats.Packets++

		network, ok := networkOffset(data, linkType)
		if !ok {
			stats.Skipped++
			if err := writer.WritePacket(ci, data); err != nil {
				return stats, fmt.Errorf("failed to write packet %d: %w", stats.Packets, err)
			}
			continue
		}

		pkt := ipopt.NewPacket(data, network, 0)
		verdict := processor.Process(pkt)
		switch verdict {
		case translator.VerdictDrop:
			stats.Dropped++
			logger.Debug("packet dropped", log.Int("packet", stats.Packets))
			continue
		case translator.VerdictModified:
			stats.Modified++
			out := pkt.Bytes()
			ci.Length += len(out) - len(data)
			ci.CaptureLength = len(out)
			data = out
		default:
			stats.Accepted++
		}

		if err := writer.WritePacket(ci, data); err != nil {
			return stats, fmt.Errorf("failed to write packet %d: %w", stats.Packets, err)
		}
	}

	return stats, nil
}

// networkOffset returns the offset of the IPv4 header in a frame of the
// given link type.
func networkOffset(data []byte, linkType layers.LinkType) (int, bool) {
	packet := gopacket.NewPacket(data, linkType, gopacket.DecodeOptions{Lazy: true, NoCopy: true})

	offset := 0
	for _, layer := range packet.Layers() {
		if layer.LayerType() == layers.LayerTypeIPv4 {
			return offset, true
		}
		offset += len(layer.LayerContents())
	}

	return 0, false
}
