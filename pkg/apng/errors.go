package apng

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the decode pipeline matches exactly
// one of these with errors.Is.
var (
	ErrInvalidFormat    = errors.New("apng: invalid format")
	ErrStructureFailure = errors.New("apng: decoder structure failure")
	ErrInternalDecode   = errors.New("apng: internal decode error")
	ErrSizeExceeded     = errors.New("apng: size exceeded")
)

// DecodeError carries the kind of failure, the operation that failed and an
// optional underlying cause.
type DecodeError struct {
	Kind error
	Op   string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Op)
}

// Unwrap exposes both the kind and the cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, op string, err error) error {
	return &DecodeError{Kind: kind, Op: op, Err: err}
}

// InvalidFormat returns an ErrInvalidFormat error for op.
func InvalidFormat(op string, err error) error { return newError(ErrInvalidFormat, op, err) }

// StructureFailure returns an ErrStructureFailure error for op.
func StructureFailure(op string, err error) error { return newError(ErrStructureFailure, op, err) }

// InternalDecode returns an ErrInternalDecode error for op.
func InternalDecode(op string, err error) error { return newError(ErrInternalDecode, op, err) }

// SizeExceeded returns an ErrSizeExceeded error for op.
func SizeExceeded(op string, err error) error { return newError(ErrSizeExceeded, op, err) }

// Kind returns the error kind of err, or nil when err is not a decode error.
func Kind(err error) error {
	for _, kind := range []error{ErrInvalidFormat, ErrStructureFailure, ErrInternalDecode, ErrSizeExceeded} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
