package translator

import (
	"errors"

	"github.com/yanet-platform/tripso/pkg/ipopt"
)

// Config is the configuration of the per-packet translation.
type Config struct {
	// Mode is the direction of the translation, required.
	Mode ipopt.Mode `yaml:"mode"`
	// DOI is the CIPSO domain of interpretation.
	DOI uint32 `yaml:"doi"`
	// Debug is the verbosity of packet traces. Starting from 2 every parsed
	// and translated label is logged.
	Debug uint `yaml:"debug"`
	// ICMP enables Parameter Problem messages for rejected packets.
	ICMP *bool `yaml:"icmp"`
}

// Default sets the default values for the configuration.
func (m *Config) Default() {
	icmp := true
	m.DOI = 1
	m.ICMP = &icmp
}

// Prepare validates the configuration and fills in omitted values.
func (m *Config) Prepare() error {
	if m.Mode != ipopt.ToCipso && m.Mode != ipopt.ToAstra {
		return errors.New("translator: mode must be one of to-cipso or to-astra")
	}
	if m.ICMP == nil {
		icmp := true
		m.ICMP = &icmp
	}
	return nil
}

// SendICMP reports whether Parameter Problem messages are enabled.
func (m *Config) SendICMP() bool {
	return m.ICMP == nil || *m.ICMP
}
