package translator

import (
	"sync/atomic"

	"github.com/yanet-platform/tripso/pkg/ipopt"
)

// Status is a snapshot of the translator state.
type Status struct {
	Mode  ipopt.Mode `json:"mode"`
	DOI   uint32     `json:"doi"`
	Debug uint       `json:"debug"`
	ICMP  bool       `json:"icmp"`

	Accepted uint64 `json:"accepted"`
	Modified uint64 `json:"modified"`
	Dropped  uint64 `json:"dropped"`
}

type stats struct {
	accepted atomic.Uint64
	modified atomic.Uint64
	dropped  atomic.Uint64
}

func (m *stats) add(verdict Verdict) {
	switch verdict {
	case VerdictAccept:
		m.accepted.Add(1)
	case VerdictModified:
		m.modified.Add(1)
	case VerdictDrop:
		m.dropped.Add(1)
	}
}
