// Package ipopt rebuilds the IPv4 option area with a translated security
// label and commits the result into a packet buffer.
package ipopt

import (
	"errors"
	"fmt"

	"github.com/yanet-platform/tripso/pkg/seclabel"
)

const (
	optEnd  byte = 0
	optNoop byte = 1

	// MaxOptionsLen is the size limit of the IPv4 option area.
	MaxOptionsLen = seclabel.MaxOptionsLen
)

var (
	// ErrMalformed is an alias for seclabel.ErrMalformed, it is also used
	// for inconsistent option lengths.
	ErrMalformed = seclabel.ErrMalformed
	// ErrDuplicateLabel reports a second label option of the source type.
	ErrDuplicateLabel = errors.New("duplicate security option")
	// ErrModeUnset reports a translator built without a translation mode.
	ErrModeUnset = errors.New("translation mode is not set")
)

// ScanError is returned by Translate when the option area is rejected.
type ScanError struct {
	// Offset of the offending option from the start of the option area.
	Offset int
	Err    error
}

func (m *ScanError) Error() string {
	return fmt.Sprintf("option at offset %d: %v", m.Offset, m.Err)
}

func (m *ScanError) Unwrap() error {
	return m.Err
}

// Result is a rebuilt option area.
type Result struct {
	// Translated is set when a label was found and translated. Otherwise
	// the packet must be left untouched.
	Translated bool
	// Label is the translated label.
	Label seclabel.Label
	// Offset of the label option in the original option area.
	Offset int

	buf [MaxOptionsLen]byte
	n   int
}

// Options returns the new option area, padded to a multiple of 4 bytes.
func (m *Result) Options() []byte {
	return m.buf[:m.n]
}

// Translator rewrites the security label of an option area. It is immutable
// and safe for concurrent use.
type Translator struct {
	mode Mode
	doi  uint32
}

// NewTranslator creates a translator for the given mode and CIPSO domain of
// interpretation.
func NewTranslator(mode Mode, doi uint32) (*Translator, error) {
	if mode != ToCipso && mode != ToAstra {
		return nil, ErrModeUnset
	}
	return &Translator{mode: mode, doi: doi}, nil
}

// Mode returns the translation mode.
func (m *Translator) Mode() Mode {
	return m.mode
}

// DOI returns the CIPSO domain of interpretation.
func (m *Translator) DOI() uint32 {
	return m.doi
}

// Translate walks the option area once and builds its translated copy.
//
// Opaque options are copied verbatim, NOOPs are dropped and the source label
// option is replaced by its translation. The walk ends at the End option or
// when less than two bytes are left. When no label is present the result is
// not translated and carries no options.
func (m *Translator) Translate(opts []byte) (Result, error) {
	var res Result
	src := m.mode.SourceType()

	off := 0
	for len(opts)-off >= 2 {
		typ := opts[off]
		if typ == optEnd {
			break
		}
		if typ == optNoop {
			off++
			continue
		}

		size := int(opts[off+1])
		if size < 2 || size > len(opts)-off {
			return Result{}, &ScanError{Offset: off, Err: ErrMalformed}
		}
		opt := opts[off : off+size]

		if typ == src {
			if res.Translated {
				return Result{}, &ScanError{Offset: off, Err: ErrDuplicateLabel}
			}
			if err := m.translate(&res, opt); err != nil {
				return Result{}, &ScanError{Offset: off, Err: err}
			}
			res.Translated = true
			res.Offset = off
		} else {
			if res.n+size > len(res.buf) {
				return Result{}, &ScanError{Offset: off, Err: seclabel.ErrOverflow}
			}
			res.n += copy(res.buf[res.n:], opt)
		}

		off += size
	}

	if !res.Translated {
		return Result{}, nil
	}

	for res.n%4 != 0 {
		res.buf[res.n] = optEnd
		res.n++
	}

	return res, nil
}

// translate decodes the source label option and appends the encoding of the
// target format to the result.
func (m *Translator) translate(res *Result, opt []byte) error {
	var (
		label seclabel.Label
		err   error
	)

	switch m.mode {
	case ToCipso:
		label, err = seclabel.ParseAstra(opt)
	case ToAstra:
		label, err = seclabel.ParseCipso(opt, m.doi)
	default:
		return ErrModeUnset
	}
	if err != nil {
		return err
	}

	out := res.buf[res.n:res.n]
	switch m.mode {
	case ToCipso:
		out, err = seclabel.AppendCipso(out, len(res.buf)-res.n, m.doi, label)
	case ToAstra:
		out, err = seclabel.AppendAstra(out, len(res.buf)-res.n, label)
	}
	if err != nil {
		return err
	}

	res.n += len(out)
	res.Label = label
	return nil
}
