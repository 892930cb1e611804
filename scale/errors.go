package scale

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedInput is returned when the input ends before the value does
	ErrTruncatedInput = errors.New("truncated input")

	// ErrInvalidDiscriminant is returned for boolean, option or variant bytes outside their range
	ErrInvalidDiscriminant = errors.New("invalid discriminant")

	// ErrNonCanonicalCompact is returned when a compact integer is not in its shortest form
	ErrNonCanonicalCompact = errors.New("non-canonical compact encoding")

	// ErrOverflow is returned when a decoded magnitude does not fit the requested width
	ErrOverflow = errors.New("value overflows target width")

	// ErrValueOutOfRange is returned when a value cannot be represented in the target width
	ErrValueOutOfRange = errors.New("value out of range")
)

// DecodeError describes a failed decode operation and the byte offset
// at which the offending item starts
type DecodeError struct {
	Kind   error
	Offset int
	Msg    string
}

func (e *DecodeError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("scale: %v at offset %d", e.Kind, e.Offset)
	}

	return fmt.Sprintf("scale: %v at offset %d: %s", e.Kind, e.Offset, e.Msg)
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}

// EncodeError describes a value that could not be encoded
type EncodeError struct {
	Kind error
	Msg  string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("scale: %v: %s", e.Kind, e.Msg)
}

func (e *EncodeError) Unwrap() error {
	return e.Kind
}

func newDecodeError(kind error, offset int, format string, args ...interface{}) *DecodeError {
	return &DecodeError{
		Kind:   kind,
		Offset: offset,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func outOfRange(format string, args ...interface{}) *EncodeError {
	return &EncodeError{
		Kind: ErrValueOutOfRange,
		Msg:  fmt.Sprintf(format, args...),
	}
}
