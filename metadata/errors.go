package metadata

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMagic         = errors.New("invalid metadata magic number")
	ErrUnsupportedVersion   = errors.New("unsupported metadata version")
	ErrModuleNotFound       = errors.New("module not found")
	ErrCallNotFound         = errors.New("call not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrStorageEntryNotFound = errors.New("storage entry not found")
	ErrConstantNotFound     = errors.New("constant not found")
	ErrStorageKeyCount      = errors.New("wrong number of storage keys")
)

// Error reports a metadata blob that could not be decoded
type Error struct {
	Context string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("metadata: %s: %v", e.Context, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapDecode(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	var merr *Error
	if errors.As(err, &merr) {
		return err
	}

	return &Error{Context: fmt.Sprintf(format, args...), Err: err}
}
