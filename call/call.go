package call

import (
	"fmt"

	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/0xPolygon/polygon-xt/metadata"
	"github.com/0xPolygon/polygon-xt/registry"
	"github.com/0xPolygon/polygon-xt/scale"
)

// Call is an encoded runtime call: the two index bytes followed by the
// encoded arguments in declaration order
type Call struct {
	ModuleIndex uint8
	CallIndex   uint8

	Module string
	Name   string
	Args   []registry.EncodedValue
}

// Bytes returns the wire form of the call
func (c *Call) Bytes() []byte {
	size := 2
	for _, a := range c.Args {
		size += a.Len()
	}

	out := make([]byte, 0, size)
	out = append(out, c.ModuleIndex, c.CallIndex)

	for _, a := range c.Args {
		out = append(out, a.Bytes()...)
	}

	return out
}

func (c *Call) EncodeSCALE(enc *scale.Encoder) error {
	enc.PushByte(c.ModuleIndex)
	enc.PushByte(c.CallIndex)

	for _, a := range c.Args {
		if err := a.EncodeSCALE(enc); err != nil {
			return err
		}
	}

	return nil
}

func (c *Call) Hex() string {
	return hex.EncodeToHex(c.Bytes())
}

func (c *Call) String() string {
	return fmt.Sprintf("%s.%s(%d args)", c.Module, c.Name, len(c.Args))
}

// Encoder turns named calls with Go argument values into call bytes,
// using a metadata snapshot for the layout and a registry for the values
type Encoder struct {
	meta *metadata.Metadata
	reg  *registry.Registry
}

func NewEncoder(meta *metadata.Metadata, reg *registry.Registry) *Encoder {
	return &Encoder{
		meta: meta,
		reg:  reg,
	}
}

func (e *Encoder) Metadata() *metadata.Metadata {
	return e.meta
}

func (e *Encoder) Registry() *registry.Registry {
	return e.reg
}

// Encode builds the call module.name with the given arguments. Nothing is
// returned unless every argument encodes.
func (e *Encoder) Encode(module, name string, args ...interface{}) (*Call, error) {
	moduleIndex, callIndex, declared, err := e.meta.FindModuleCall(module, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownCall, err)
	}

	if len(args) != len(declared) {
		return nil, fmt.Errorf(
			"%w: %s.%s takes %d arguments, got %d",
			ErrArgumentCountMismatch,
			module,
			name,
			len(declared),
			len(args),
		)
	}

	encoded := make([]registry.EncodedValue, len(args))

	for i, arg := range declared {
		v, err := e.reg.Encode(arg.Type, args[i])
		if err != nil {
			return nil, &ArgumentError{
				Module: module,
				Call:   name,
				Index:  i,
				Name:   arg.Name,
				Type:   arg.Type,
				Err:    err,
			}
		}

		encoded[i] = v
	}

	return &Call{
		ModuleIndex: moduleIndex,
		CallIndex:   callIndex,
		Module:      module,
		Name:        name,
		Args:        encoded,
	}, nil
}

// Decoded is a call read back from its wire form
type Decoded struct {
	*Call

	// Values holds the decoded argument values, parallel to Args
	Values []interface{}
}

// Decode reads call bytes back into module and call names and argument values
func (e *Encoder) Decode(b []byte) (*Decoded, error) {
	dec := scale.NewDecoder(b)

	d, err := e.DecodeFrom(dec)
	if err != nil {
		return nil, err
	}

	if dec.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d bytes after %s.%s", ErrTrailingBytes, dec.Remaining(), d.Module, d.Name)
	}

	return d, nil
}

// DecodeFrom reads exactly one call from dec
func (e *Encoder) DecodeFrom(dec *scale.Decoder) (*Decoded, error) {
	moduleIndex, err := dec.DecodeUint8()
	if err != nil {
		return nil, err
	}

	callIndex, err := dec.DecodeUint8()
	if err != nil {
		return nil, err
	}

	mod, c, err := e.meta.FindCallByIndex(moduleIndex, callIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownCall, err)
	}

	out := &Decoded{
		Call: &Call{
			ModuleIndex: moduleIndex,
			CallIndex:   callIndex,
			Module:      mod.Name,
			Name:        c.Name,
			Args:        make([]registry.EncodedValue, len(c.Args)),
		},
		Values: make([]interface{}, len(c.Args)),
	}

	for i, arg := range c.Args {
		start := dec.Offset()

		v, err := e.reg.Decode(arg.Type, dec)
		if err != nil {
			return nil, &ArgumentError{
				Module: mod.Name,
				Call:   c.Name,
				Index:  i,
				Name:   arg.Name,
				Type:   arg.Type,
				Err:    err,
			}
		}

		out.Args[i] = registry.NewEncodedValue(arg.Type, dec.Since(start))
		out.Values[i] = v
	}

	return out, nil
}
