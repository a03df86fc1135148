package record

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenCountMismatch means a line did not split into exactly one token
	// per header column.
	ErrTokenCountMismatch = errors.New("token count mismatch")
	// ErrMissingToken means a field reads a token the header does not define.
	ErrMissingToken = errors.New("missing source token")
	// ErrDerivation wraps a failed derivation such as a request without a URL.
	ErrDerivation = errors.New("derivation failed")
	// ErrInvalidNumber means a numeric column holds a non-numeric token.
	ErrInvalidNumber = errors.New("invalid number")
)

// DecodeError reports why one raw row could not become a LogRecord.
type DecodeError struct {
	Line   int
	Field  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = fmt.Sprintf("field %s: %s", e.Field, msg)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return "decode: " + msg
}

func (e *DecodeError) Unwrap() error { return e.Err }
