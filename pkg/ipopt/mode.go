package ipopt

import (
	"fmt"

	"github.com/yanet-platform/tripso/pkg/seclabel"
)

// Mode is the direction of the label translation.
type Mode int

const (
	// ModeUnset is the zero value, it is not a valid translation mode.
	ModeUnset Mode = iota
	// ToCipso translates Astra labels into CIPSO.
	ToCipso
	// ToAstra translates CIPSO labels into Astra.
	ToAstra
)

// ParseMode parses the textual form of a translation mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "to-cipso", "cipso":
		return ToCipso, nil
	case "to-astra", "astra":
		return ToAstra, nil
	default:
		return ModeUnset, fmt.Errorf("unknown translation mode %q: expected to-cipso or to-astra", s)
	}
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ToCipso:
		return "to-cipso"
	case ToAstra:
		return "to-astra"
	default:
		return "unset"
	}
}

// SourceType returns the IP option type that is translated in this mode.
func (m Mode) SourceType() byte {
	switch m {
	case ToCipso:
		return seclabel.OptionTypeSecurity
	case ToAstra:
		return seclabel.OptionTypeCipso
	default:
		return optEnd
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Mode) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	mode, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (m Mode) MarshalYAML() (any, error) {
	return m.String(), nil
}

// MarshalText implements encoding.TextMarshaler, so the mode reads well in
// JSON status output and structured logs.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
