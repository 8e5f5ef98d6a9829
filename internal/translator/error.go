package translator

import (
	"errors"

	"github.com/yanet-platform/tripso/internal/monitoring/metrics"
	"github.com/yanet-platform/tripso/pkg/ipopt"
	"github.com/yanet-platform/tripso/pkg/seclabel"
)

const ErrorLabel = "error"

var ErrorLabelUnknown = metrics.Labels{ErrorLabel: "unknown"}

type LabeledError interface {
	Label() metrics.Labels
}

// Error is a packet processing error carrying the value of the error label
// of the rejection metrics.
type Error struct {
	error
	labelValue string
}

func (m Error) Unwrap() error {
	return m.error
}

func (m Error) Label() metrics.Labels {
	return metrics.Labels{ErrorLabel: m.labelValue}
}

func NewLabeledError(err error, labelValue string) Error {
	return Error{
		error:      err,
		labelValue: labelValue,
	}
}

var (
	ErrTruncated  = NewLabeledError(errors.New("truncated IPv4 header"), "truncated")
	ErrNoHeadroom = NewLabeledError(ipopt.ErrNoHeadroom, "no_headroom")
)

// labelError attaches the metric label to an error returned by the option
// scanner.
func labelError(err error) Error {
	var labeled LabeledError
	if errors.As(err, &labeled) {
		return NewLabeledError(err, labeled.Label()[ErrorLabel])
	}
	if errors.Is(err, ipopt.ErrNoHeadroom) {
		return ErrNoHeadroom
	}

	var value string
	switch {
	case errors.Is(err, ipopt.ErrDuplicateLabel):
		value = "duplicate"
	case errors.Is(err, seclabel.ErrForeignDOI):
		value = "foreign_doi"
	case errors.Is(err, seclabel.ErrOverflow):
		value = "overflow"
	case errors.Is(err, seclabel.ErrMalformed):
		value = "malformed"
	default:
		value = "unknown"
	}
	return NewLabeledError(err, value)
}
