package metadata

import (
	"fmt"

	"github.com/0xPolygon/polygon-xt/registry"
	"github.com/0xPolygon/polygon-xt/scale"
)

// Decode parses a metadata blob as returned by state_getMetadata
func Decode(b []byte) (*Metadata, error) {
	dec := scale.NewDecoder(b)

	magic, err := dec.DecodeUint32()
	if err != nil {
		return nil, wrapDecode(err, "magic")
	}

	if magic != MagicNumber {
		return nil, fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, magic)
	}

	version, err := dec.DecodeUint8()
	if err != nil {
		return nil, wrapDecode(err, "version")
	}

	if !isSupported(version) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	n, err := dec.DecodeLength()
	if err != nil {
		return nil, wrapDecode(err, "module count")
	}

	modules := make([]*Module, 0, capHint(n, dec))

	for i := 0; i < n; i++ {
		mod, err := decodeModule(dec, version)
		if err != nil {
			return nil, wrapDecode(err, "module %d", i)
		}

		modules = append(modules, mod)
	}

	var ext ExtrinsicInfo
	if ext.Version, err = dec.DecodeUint8(); err != nil {
		return nil, wrapDecode(err, "extrinsic version")
	}

	if ext.SignedExtensions, err = decodeStrings(dec); err != nil {
		return nil, wrapDecode(err, "signed extensions")
	}

	if dec.Remaining() != 0 {
		return nil, &Error{Context: "trailer", Err: fmt.Errorf("%d unexpected trailing bytes", dec.Remaining())}
	}

	return New(version, modules, ext)
}

// capHint bounds a preallocation by the bytes actually available
func capHint(n int, dec *scale.Decoder) int {
	if n > dec.Remaining() {
		return dec.Remaining()
	}

	return n
}

func decodeStrings(dec *scale.Decoder) ([]string, error) {
	n, err := dec.DecodeLength()
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, nil
	}

	out := make([]string, 0, capHint(n, dec))

	for i := 0; i < n; i++ {
		s, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

func decodeTypeName(dec *scale.Decoder) (registry.TypeName, error) {
	s, err := dec.DecodeString()

	return registry.TypeName(s), err
}

func decodeModule(dec *scale.Decoder, version uint8) (*Module, error) {
	var (
		mod = &Module{}
		err error
	)

	if mod.Name, err = dec.DecodeString(); err != nil {
		return nil, err
	}

	// storage
	present, err := dec.DecodeOption()
	if err != nil {
		return nil, wrapDecode(err, "%s storage", mod.Name)
	}

	if present {
		if mod.Storage, err = decodeStorage(dec); err != nil {
			return nil, wrapDecode(err, "%s storage", mod.Name)
		}
	}

	// calls
	if mod.HasCalls, err = dec.DecodeOption(); err != nil {
		return nil, wrapDecode(err, "%s calls", mod.Name)
	}

	if mod.HasCalls {
		if mod.Calls, err = decodeCalls(dec); err != nil {
			return nil, wrapDecode(err, "%s calls", mod.Name)
		}
	}

	// events
	if mod.HasEvents, err = dec.DecodeOption(); err != nil {
		return nil, wrapDecode(err, "%s events", mod.Name)
	}

	if mod.HasEvents {
		if mod.Events, err = decodeEvents(dec); err != nil {
			return nil, wrapDecode(err, "%s events", mod.Name)
		}
	}

	if mod.Constants, err = decodeConstants(dec); err != nil {
		return nil, wrapDecode(err, "%s constants", mod.Name)
	}

	if mod.Errors, err = decodeErrors(dec); err != nil {
		return nil, wrapDecode(err, "%s errors", mod.Name)
	}

	if version >= 12 {
		if mod.Index, err = dec.DecodeUint8(); err != nil {
			return nil, wrapDecode(err, "%s index", mod.Name)
		}
	}

	return mod, nil
}

func decodeStorage(dec *scale.Decoder) (*Storage, error) {
	var (
		s   = &Storage{}
		err error
	)

	if s.Prefix, err = dec.DecodeString(); err != nil {
		return nil, err
	}

	n, err := dec.DecodeLength()
	if err != nil {
		return nil, err
	}

	if n > 0 {
		s.Entries = make([]*StorageEntry, 0, capHint(n, dec))
	}

	for i := 0; i < n; i++ {
		e := &StorageEntry{}
		if err := e.DecodeSCALE(dec); err != nil {
			return nil, err
		}

		s.Entries = append(s.Entries, e)
	}

	return s, nil
}

func (e *StorageEntry) DecodeSCALE(dec *scale.Decoder) error {
	var err error

	if e.Name, err = dec.DecodeString(); err != nil {
		return err
	}

	modifier, err := dec.DecodeVariant(2)
	if err != nil {
		return err
	}

	e.Modifier = Modifier(modifier)

	kind, err := dec.DecodeVariant(3)
	if err != nil {
		return err
	}

	e.Kind = EntryKind(kind)

	switch e.Kind {
	case EntryPlain:
		if e.Value, err = decodeTypeName(dec); err != nil {
			return err
		}

	case EntryMap:
		if err := e.Hasher.DecodeSCALE(dec); err != nil {
			return err
		}

		if e.Key, err = decodeTypeName(dec); err != nil {
			return err
		}

		if e.Value, err = decodeTypeName(dec); err != nil {
			return err
		}

		if e.Unused, err = dec.DecodeBool(); err != nil {
			return err
		}

	case EntryDoubleMap:
		if err := e.Hasher.DecodeSCALE(dec); err != nil {
			return err
		}

		if e.Key, err = decodeTypeName(dec); err != nil {
			return err
		}

		if e.Key2, err = decodeTypeName(dec); err != nil {
			return err
		}

		if e.Value, err = decodeTypeName(dec); err != nil {
			return err
		}

		if err := e.Key2Hasher.DecodeSCALE(dec); err != nil {
			return err
		}
	}

	if e.Default, err = dec.DecodeBytes(); err != nil {
		return err
	}

	e.Docs, err = decodeStrings(dec)

	return err
}

func decodeCalls(dec *scale.Decoder) ([]*Call, error) {
	n, err := dec.DecodeLength()
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, nil
	}

	calls := make([]*Call, 0, capHint(n, dec))

	for i := 0; i < n; i++ {
		c := &Call{Index: uint8(i)}

		if c.Name, err = dec.DecodeString(); err != nil {
			return nil, err
		}

		argc, err := dec.DecodeLength()
		if err != nil {
			return nil, err
		}

		if argc > 0 {
			c.Args = make([]Arg, 0, capHint(argc, dec))
		}

		for j := 0; j < argc; j++ {
			var a Arg

			if a.Name, err = dec.DecodeString(); err != nil {
				return nil, err
			}

			if a.Type, err = decodeTypeName(dec); err != nil {
				return nil, err
			}

			c.Args = append(c.Args, a)
		}

		if c.Docs, err = decodeStrings(dec); err != nil {
			return nil, err
		}

		calls = append(calls, c)
	}

	return calls, nil
}

func decodeEvents(dec *scale.Decoder) ([]*Event, error) {
	n, err := dec.DecodeLength()
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, nil
	}

	events := make([]*Event, 0, capHint(n, dec))

	for i := 0; i < n; i++ {
		e := &Event{Index: uint8(i)}

		if e.Name, err = dec.DecodeString(); err != nil {
			return nil, err
		}

		args, err := decodeStrings(dec)
		if err != nil {
			return nil, err
		}

		for _, a := range args {
			e.Args = append(e.Args, registry.TypeName(a))
		}

		if e.Docs, err = decodeStrings(dec); err != nil {
			return nil, err
		}

		events = append(events, e)
	}

	return events, nil
}

func decodeConstants(dec *scale.Decoder) ([]*Constant, error) {
	n, err := dec.DecodeLength()
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, nil
	}

	constants := make([]*Constant, 0, capHint(n, dec))

	for i := 0; i < n; i++ {
		c := &Constant{}

		if c.Name, err = dec.DecodeString(); err != nil {
			return nil, err
		}

		if c.Type, err = decodeTypeName(dec); err != nil {
			return nil, err
		}

		if c.Value, err = dec.DecodeBytes(); err != nil {
			return nil, err
		}

		if c.Docs, err = decodeStrings(dec); err != nil {
			return nil, err
		}

		constants = append(constants, c)
	}

	return constants, nil
}

func decodeErrors(dec *scale.Decoder) ([]*ModuleError, error) {
	n, err := dec.DecodeLength()
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, nil
	}

	errs := make([]*ModuleError, 0, capHint(n, dec))

	for i := 0; i < n; i++ {
		e := &ModuleError{}

		if e.Name, err = dec.DecodeString(); err != nil {
			return nil, err
		}

		if e.Docs, err = decodeStrings(dec); err != nil {
			return nil, err
		}

		errs = append(errs, e)
	}

	return errs, nil
}
