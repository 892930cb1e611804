package call

import (
	"errors"
	"fmt"

	"github.com/0xPolygon/polygon-xt/registry"
)

var (
	// ErrUnknownCall is returned when the module or the call is absent from the metadata
	ErrUnknownCall = errors.New("unknown call")

	// ErrArgumentCountMismatch is returned when the number of supplied arguments
	// differs from the call's declared arity
	ErrArgumentCountMismatch = errors.New("argument count mismatch")

	// ErrTrailingBytes is returned when call bytes continue past the last argument
	ErrTrailingBytes = errors.New("trailing bytes after call")
)

// ArgumentError reports an argument that could not be encoded or decoded
type ArgumentError struct {
	Module string
	Call   string
	Index  int
	Name   string
	Type   registry.TypeName
	Err    error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s.%s argument %d (%s: %s): %v", e.Module, e.Call, e.Index, e.Name, e.Type, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}
