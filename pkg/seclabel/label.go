// Package seclabel implements the two wire encodings of IPv4 security
// labels: the Astra flavour of the RFC 1108 Basic Security option and the
// CIPSO option with the restricted bitmap tag.
package seclabel

import (
	"errors"
	"fmt"
)

// IP option types carrying security labels.
const (
	OptionTypeSecurity byte = 130 // RFC 1108 (Astra)
	OptionTypeCipso    byte = 134
)

// MaxOptionsLen is the size of the IPv4 option area.
const MaxOptionsLen = 40

var (
	// ErrMalformed reports a label option whose framing does not match the
	// expected structure.
	ErrMalformed = errors.New("malformed security option")
	// ErrForeignDOI reports a CIPSO option from another domain of
	// interpretation.
	ErrForeignDOI = errors.New("foreign CIPSO DOI")
	// ErrOverflow reports a value that does not fit into the fixed width
	// representation.
	ErrOverflow = errors.New("security label overflow")
)

// Label is a classification level with a set of up to 64 categories.
// Category N is bit N of Categories.
type Label struct {
	Level      uint8
	Categories uint64
}

// String implements fmt.Stringer.
func (m Label) String() string {
	return fmt.Sprintf("level=%d categories=%#x", m.Level, m.Categories)
}
