package metadata

import (
	"github.com/0xPolygon/polygon-xt/registry"
	"github.com/0xPolygon/polygon-xt/scale"
)

// Encode serializes metadata in the layout of its version. Decode(Encode(m))
// reproduces m.
func Encode(m *Metadata) ([]byte, error) {
	enc := scale.AcquireEncoder()
	defer scale.ReleaseEncoder(enc)

	enc.EncodeUint32(MagicNumber)
	enc.EncodeUint8(m.Version)
	enc.EncodeLength(len(m.Modules))

	for _, mod := range m.Modules {
		if err := encodeModule(enc, mod, m.Version); err != nil {
			return nil, err
		}
	}

	enc.EncodeUint8(m.Extrinsic.Version)
	encodeStrings(enc, m.Extrinsic.SignedExtensions)

	return enc.CopyBytes(), nil
}

func encodeStrings(enc *scale.Encoder, ss []string) {
	enc.EncodeLength(len(ss))

	for _, s := range ss {
		enc.EncodeString(s)
	}
}

func encodeModule(enc *scale.Encoder, mod *Module, version uint8) error {
	enc.EncodeString(mod.Name)

	enc.EncodeOption(mod.Storage != nil)

	if mod.Storage != nil {
		enc.EncodeString(mod.Storage.Prefix)
		enc.EncodeLength(len(mod.Storage.Entries))

		for _, e := range mod.Storage.Entries {
			if err := e.EncodeSCALE(enc); err != nil {
				return err
			}
		}
	}

	enc.EncodeOption(mod.HasCalls)

	if mod.HasCalls {
		enc.EncodeLength(len(mod.Calls))

		for _, c := range mod.Calls {
			enc.EncodeString(c.Name)
			enc.EncodeLength(len(c.Args))

			for _, a := range c.Args {
				enc.EncodeString(a.Name)
				encodeTypeName(enc, a.Type)
			}

			encodeStrings(enc, c.Docs)
		}
	}

	enc.EncodeOption(mod.HasEvents)

	if mod.HasEvents {
		enc.EncodeLength(len(mod.Events))

		for _, e := range mod.Events {
			enc.EncodeString(e.Name)
			enc.EncodeLength(len(e.Args))

			for _, a := range e.Args {
				encodeTypeName(enc, a)
			}

			encodeStrings(enc, e.Docs)
		}
	}

	enc.EncodeLength(len(mod.Constants))

	for _, c := range mod.Constants {
		enc.EncodeString(c.Name)
		encodeTypeName(enc, c.Type)
		enc.EncodeBytes(c.Value)
		encodeStrings(enc, c.Docs)
	}

	enc.EncodeLength(len(mod.Errors))

	for _, e := range mod.Errors {
		enc.EncodeString(e.Name)
		encodeStrings(enc, e.Docs)
	}

	if version >= 12 {
		enc.EncodeUint8(mod.Index)
	}

	return nil
}

func encodeTypeName(enc *scale.Encoder, t registry.TypeName) {
	enc.EncodeString(string(t))
}

func (e *StorageEntry) EncodeSCALE(enc *scale.Encoder) error {
	enc.EncodeString(e.Name)

	if err := enc.EncodeVariant(int(e.Modifier)); err != nil {
		return err
	}

	if err := enc.EncodeVariant(int(e.Kind)); err != nil {
		return err
	}

	switch e.Kind {
	case EntryPlain:
		encodeTypeName(enc, e.Value)
	case EntryMap:
		if err := e.Hasher.EncodeSCALE(enc); err != nil {
			return err
		}

		encodeTypeName(enc, e.Key)
		encodeTypeName(enc, e.Value)
		enc.EncodeBool(e.Unused)
	case EntryDoubleMap:
		if err := e.Hasher.EncodeSCALE(enc); err != nil {
			return err
		}

		encodeTypeName(enc, e.Key)
		encodeTypeName(enc, e.Key2)
		encodeTypeName(enc, e.Value)

		if err := e.Key2Hasher.EncodeSCALE(enc); err != nil {
			return err
		}
	}

	enc.EncodeBytes(e.Default)
	encodeStrings(enc, e.Docs)

	return nil
}
