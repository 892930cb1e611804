package registry

import (
	"fmt"

	"github.com/0xPolygon/polygon-xt/scale"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/holiman/uint256"
)

// EnumValue selects a variant of an enum by name
type EnumValue struct {
	Variant string
	Value   interface{}
}

var primitives = map[TypeName]Strategy{
	"bool":      boolStrategy{},
	"u8":        uintStrategy{bits: 8},
	"u16":       uintStrategy{bits: 16},
	"u32":       uintStrategy{bits: 32},
	"u64":       uintStrategy{bits: 64},
	"u128":      uintStrategy{bits: 128},
	"i8":        intStrategy{bits: 8},
	"i16":       intStrategy{bits: 16},
	"i32":       intStrategy{bits: 32},
	"i64":       intStrategy{bits: 64},
	"Text":      textStrategy{},
	"String":    textStrategy{},
	"Bytes":     bytesStrategy{},
	"H256":      hashStrategy{},
	"AccountId": accountIDStrategy{},
}

type boolStrategy struct{}

func (boolStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	b, ok := v.(bool)
	if !ok {
		return incompatible("bool", v)
	}

	enc.EncodeBool(b)

	return nil
}

func (boolStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	return dec.DecodeBool()
}

// uintStrategy covers u8 through u128. Decoded values use the matching Go
// width, with *uint256.Int for u128.
type uintStrategy struct {
	bits int
}

func (s uintStrategy) name() string {
	return fmt.Sprintf("u%d", s.bits)
}

func (s uintStrategy) check(v interface{}) (*uint256.Int, error) {
	u, err := toUint256(s.name(), v)
	if err != nil {
		return nil, err
	}

	if u.BitLen() > s.bits {
		return nil, outOfRange(s.name(), v)
	}

	return u, nil
}

func (s uintStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	u, err := s.check(v)
	if err != nil {
		return err
	}

	switch s.bits {
	case 8:
		enc.EncodeUint8(uint8(u.Uint64()))
	case 16:
		enc.EncodeUint16(uint16(u.Uint64()))
	case 32:
		enc.EncodeUint32(uint32(u.Uint64()))
	case 64:
		enc.EncodeUint64(u.Uint64())
	default:
		return enc.EncodeUint128(u)
	}

	return nil
}

func (s uintStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	switch s.bits {
	case 8:
		return dec.DecodeUint8()
	case 16:
		return dec.DecodeUint16()
	case 32:
		return dec.DecodeUint32()
	case 64:
		return dec.DecodeUint64()
	default:
		return dec.DecodeUint128()
	}
}

// narrow converts a decoded compact magnitude to the Go type Decode would return
func (s uintStrategy) narrow(u *uint256.Int) interface{} {
	switch s.bits {
	case 8:
		return uint8(u.Uint64())
	case 16:
		return uint16(u.Uint64())
	case 32:
		return uint32(u.Uint64())
	case 64:
		return u.Uint64()
	default:
		return u
	}
}

type intStrategy struct {
	bits int
}

func (s intStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	name := fmt.Sprintf("i%d", s.bits)

	i, err := toInt64(name, v)
	if err != nil {
		return err
	}

	lim := int64(1) << (s.bits - 1)
	if s.bits < 64 && (i < -lim || i >= lim) {
		return outOfRange(name, v)
	}

	switch s.bits {
	case 8:
		enc.EncodeInt8(int8(i))
	case 16:
		enc.EncodeInt16(int16(i))
	case 32:
		enc.EncodeInt32(int32(i))
	default:
		enc.EncodeInt64(i)
	}

	return nil
}

func (s intStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	switch s.bits {
	case 8:
		return dec.DecodeInt8()
	case 16:
		return dec.DecodeInt16()
	case 32:
		return dec.DecodeInt32()
	default:
		return dec.DecodeInt64()
	}
}

type textStrategy struct{}

func (textStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	switch s := v.(type) {
	case string:
		enc.EncodeString(s)
	case []byte:
		enc.EncodeBytes(s)
	default:
		return incompatible("Text", v)
	}

	return nil
}

func (textStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	return dec.DecodeString()
}

type bytesStrategy struct{}

func (bytesStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	b, err := toBytes("Bytes", v)
	if err != nil {
		return err
	}

	enc.EncodeBytes(b)

	return nil
}

func (bytesStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	return dec.DecodeBytes()
}

type byteArrayStrategy struct {
	n int
}

func (s byteArrayStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	name := fmt.Sprintf("[u8; %d]", s.n)

	if str, ok := v.(string); ok && s.n == types.AccountIDLength {
		id, err := types.ParseAccountID(str)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIncompatibleValue, err)
		}

		enc.Write(id[:])

		return nil
	}

	b, err := toBytes(name, v)
	if err != nil {
		return err
	}

	if len(b) != s.n {
		return fmt.Errorf("%w: %d bytes for %s", ErrIncompatibleValue, len(b), name)
	}

	enc.Write(b)

	return nil
}

func (s byteArrayStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	return dec.Read(s.n)
}

type hashStrategy struct{}

func (hashStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	return byteArrayStrategy{n: types.HashLength}.Encode(enc, v)
}

func (hashStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	var h types.Hash
	if err := h.DecodeSCALE(dec); err != nil {
		return nil, err
	}

	return h, nil
}

type accountIDStrategy struct{}

func (accountIDStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	return byteArrayStrategy{n: types.AccountIDLength}.Encode(enc, v)
}

func (accountIDStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	var a types.AccountID
	if err := a.DecodeSCALE(dec); err != nil {
		return nil, err
	}

	return a, nil
}

type unitStrategy struct{}

func (unitStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	switch v.(type) {
	case nil, struct{}:
		return nil
	}

	return incompatible("()", v)
}

func (unitStrategy) Decode(*scale.Decoder) (interface{}, error) {
	return nil, nil
}

// compactStrategy encodes the integer named by its inner type in compact form.
// The inner width bounds the values accepted.
type compactStrategy struct {
	name  TypeName
	inner uintStrategy
}

func newCompactStrategy(name TypeName, inner Strategy) (Strategy, error) {
	u, ok := inner.(uintStrategy)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no compact form", ErrUnknownType, name)
	}

	return compactStrategy{name: name, inner: u}, nil
}

func (s compactStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	u, err := s.inner.check(v)
	if err != nil {
		return err
	}

	enc.EncodeCompactBig(u)

	return nil
}

func (s compactStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	start := dec.Offset()

	u, err := dec.DecodeCompactBig()
	if err != nil {
		return nil, err
	}

	if u.BitLen() > s.inner.bits {
		return nil, dec.Fail(scale.ErrOverflow, start, "%s exceeds %s", u.Dec(), s.inner.name())
	}

	return s.inner.narrow(u), nil
}

type vecStrategy struct {
	elem Strategy
}

func (s vecStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	items, err := toSlice("Vec", v)
	if err != nil {
		return err
	}

	enc.EncodeLength(len(items))

	for i, item := range items {
		if err := s.elem.Encode(enc, item); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	return nil
}

func (s vecStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	n, err := dec.DecodeLength()
	if err != nil {
		return nil, err
	}

	// every element takes at least one byte, except units
	if _, unit := s.elem.(unitStrategy); !unit && n > dec.Remaining() {
		return nil, dec.Fail(scale.ErrTruncatedInput, dec.Offset(), "%d elements, %d bytes left", n, dec.Remaining())
	}

	items := make([]interface{}, 0, n)

	for i := 0; i < n; i++ {
		item, err := s.elem.Decode(dec)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

type arrayStrategy struct {
	elem Strategy
	n    int
}

func (s arrayStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	items, err := toSlice("array", v)
	if err != nil {
		return err
	}

	if len(items) != s.n {
		return fmt.Errorf("%w: %d elements for array of %d", ErrIncompatibleValue, len(items), s.n)
	}

	for i, item := range items {
		if err := s.elem.Encode(enc, item); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	return nil
}

func (s arrayStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	if _, unit := s.elem.(unitStrategy); !unit && s.n > dec.Remaining() {
		return nil, dec.Fail(scale.ErrTruncatedInput, dec.Offset(), "%d elements, %d bytes left", s.n, dec.Remaining())
	}

	items := make([]interface{}, 0, s.n)

	for i := 0; i < s.n; i++ {
		item, err := s.elem.Decode(dec)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

// optionStrategy encodes nil as None and anything else as Some
type optionStrategy struct {
	elem Strategy
}

func (s optionStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	if v == nil {
		enc.EncodeOption(false)

		return nil
	}

	enc.EncodeOption(true)

	return s.elem.Encode(enc, v)
}

func (s optionStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	present, err := dec.DecodeOption()
	if err != nil || !present {
		return nil, err
	}

	return s.elem.Decode(dec)
}

// optionBoolStrategy packs Option<bool> into one byte: 0 None, 1 true, 2 false
type optionBoolStrategy struct{}

func (optionBoolStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	switch b := v.(type) {
	case nil:
		enc.PushByte(0)
	case bool:
		if b {
			enc.PushByte(1)
		} else {
			enc.PushByte(2)
		}
	default:
		return incompatible("Option<bool>", v)
	}

	return nil
}

func (optionBoolStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	idx, err := dec.DecodeVariant(3)
	if err != nil {
		return nil, err
	}

	switch idx {
	case 1:
		return true, nil
	case 2:
		return false, nil
	default:
		return nil, nil
	}
}

type tupleStrategy struct {
	elems []Strategy
}

func (s tupleStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	items, err := toSlice("tuple", v)
	if err != nil {
		return err
	}

	if len(items) != len(s.elems) {
		return fmt.Errorf("%w: %d values for tuple of %d", ErrIncompatibleValue, len(items), len(s.elems))
	}

	for i, elem := range s.elems {
		if err := elem.Encode(enc, items[i]); err != nil {
			return fmt.Errorf("tuple field %d: %w", i, err)
		}
	}

	return nil
}

func (s tupleStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	items := make([]interface{}, 0, len(s.elems))

	for _, elem := range s.elems {
		item, err := elem.Decode(dec)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

type resolvedField struct {
	name     string
	strategy Strategy
}

// structStrategy accepts a map keyed by field name or a positional slice,
// and decodes to a map keyed by field name
type structStrategy struct {
	name   TypeName
	fields []resolvedField
}

func (s structStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	if m, ok := v.(map[string]interface{}); ok {
		if len(m) != len(s.fields) {
			return fmt.Errorf("%w: %d fields for %s with %d", ErrIncompatibleValue, len(m), s.name, len(s.fields))
		}

		for _, f := range s.fields {
			fv, ok := m[f.name]
			if !ok {
				return fmt.Errorf("%w: %s is missing field %s", ErrIncompatibleValue, s.name, f.name)
			}

			if err := f.strategy.Encode(enc, fv); err != nil {
				return fmt.Errorf("%s.%s: %w", s.name, f.name, err)
			}
		}

		return nil
	}

	items, err := toSlice(string(s.name), v)
	if err != nil {
		return err
	}

	if len(items) != len(s.fields) {
		return fmt.Errorf("%w: %d values for %s with %d fields", ErrIncompatibleValue, len(items), s.name, len(s.fields))
	}

	for i, f := range s.fields {
		if err := f.strategy.Encode(enc, items[i]); err != nil {
			return fmt.Errorf("%s.%s: %w", s.name, f.name, err)
		}
	}

	return nil
}

func (s structStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	out := make(map[string]interface{}, len(s.fields))

	for _, f := range s.fields {
		v, err := f.strategy.Decode(dec)
		if err != nil {
			return nil, err
		}

		out[f.name] = v
	}

	return out, nil
}

type enumStrategy struct {
	name     TypeName
	variants []resolvedField
	fallback int
}

func (s enumStrategy) variant(name string) (int, bool) {
	for i, v := range s.variants {
		if v.name == name {
			return i, true
		}
	}

	return 0, false
}

func (s enumStrategy) Encode(enc *scale.Encoder, v interface{}) error {
	idx, value := -1, v

	switch ev := v.(type) {
	case EnumValue:
		i, ok := s.variant(ev.Variant)
		if !ok {
			return fmt.Errorf("%w: %s has no variant %s", ErrIncompatibleValue, s.name, ev.Variant)
		}

		idx, value = i, ev.Value
	case *EnumValue:
		return s.Encode(enc, *ev)
	case string:
		if i, ok := s.variant(ev); ok {
			if _, unit := s.variants[i].strategy.(unitStrategy); unit {
				idx, value = i, nil
			}
		}
	}

	if idx < 0 {
		if s.fallback < 0 {
			return incompatible(string(s.name), v)
		}

		idx = s.fallback
	}

	if err := enc.EncodeVariant(idx); err != nil {
		return err
	}

	if err := s.variants[idx].strategy.Encode(enc, value); err != nil {
		return fmt.Errorf("%s::%s: %w", s.name, s.variants[idx].name, err)
	}

	return nil
}

func (s enumStrategy) Decode(dec *scale.Decoder) (interface{}, error) {
	idx, err := dec.DecodeVariant(len(s.variants))
	if err != nil {
		return nil, err
	}

	v, err := s.variants[idx].strategy.Decode(dec)
	if err != nil {
		return nil, err
	}

	return EnumValue{Variant: s.variants[idx].name, Value: v}, nil
}
