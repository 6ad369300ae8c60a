package wire

import (
	"errors"
	"fmt"
)

// ErrDecode matches every *DecodeError through errors.Is.
var ErrDecode = errors.New("wire: decode failed")

// DecodeError describes an inbound payload that cannot become a Message.
type DecodeError struct {
	Reason  string
	Wrapped error
}

func (e *DecodeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("wire: %s: %v", e.Reason, e.Wrapped)
	}
	return "wire: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Wrapped }

// Is lets errors.Is(err, ErrDecode) succeed for any DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func decodeErr(reason string, err error) *DecodeError {
	return &DecodeError{Reason: reason, Wrapped: err}
}
