package execution

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the pipeline can report.
type Kind string

const (
	KindInvalidInstruction    Kind = "InvalidInstruction"
	KindInvalidAmount         Kind = "InvalidAmount"
	KindInsufficientBalance   Kind = "InsufficientBalance"
	KindRiskLimitExceeded     Kind = "RiskLimitExceeded"
	KindBalanceQueryFailed    Kind = "BalanceQueryFailed"
	KindNoRouteAvailable      Kind = "NoRouteAvailable"
	KindMalformedRoutePayload Kind = "MalformedRoutePayload"
	KindBroadcastFailed       Kind = "BroadcastFailed"
)

// Recoverable reports whether a caller may retry the same instruction.
func (k Kind) Recoverable() bool {
	switch k {
	case KindBalanceQueryFailed, KindNoRouteAvailable, KindBroadcastFailed:
		return true
	default:
		return false
	}
}

// ErrMalformedPayload is returned by route clients when the encoded
// transaction field cannot be decoded. It is never retried.
var ErrMalformedPayload = errors.New("malformed route payload")

// Error is a classified pipeline failure.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf extracts the classification of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
