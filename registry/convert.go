package registry

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/0xPolygon/polygon-xt/scale"
	"github.com/holiman/uint256"
)

func incompatible(typ string, v interface{}) error {
	return fmt.Errorf("%w: cannot encode %T as %s", ErrIncompatibleValue, v, typ)
}

func outOfRange(typ string, v interface{}) error {
	return fmt.Errorf("%w: %v does not fit %s", scale.ErrValueOutOfRange, v, typ)
}

// toUint256 converts the unsigned integer representations callers commonly
// hold into a 256-bit magnitude
func toUint256(typ string, v interface{}) (*uint256.Int, error) {
	switch n := v.(type) {
	case uint8:
		return uint256.NewInt(uint64(n)), nil
	case uint16:
		return uint256.NewInt(uint64(n)), nil
	case uint32:
		return uint256.NewInt(uint64(n)), nil
	case uint64:
		return uint256.NewInt(n), nil
	case uint:
		return uint256.NewInt(uint64(n)), nil
	case int, int8, int16, int32, int64:
		i := reflect.ValueOf(n).Int()
		if i < 0 {
			return nil, outOfRange(typ, v)
		}

		return uint256.NewInt(uint64(i)), nil
	case *big.Int:
		if n == nil {
			return nil, incompatible(typ, v)
		}

		u, overflow := uint256.FromBig(n)
		if overflow || n.Sign() < 0 {
			return nil, outOfRange(typ, v)
		}

		return u, nil
	case *uint256.Int:
		if n == nil {
			return nil, incompatible(typ, v)
		}

		return new(uint256.Int).Set(n), nil
	case uint256.Int:
		return new(uint256.Int).Set(&n), nil
	case string:
		return parseUint256(typ, n)
	}

	return nil, incompatible(typ, v)
}

func parseUint256(typ, s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "0x") {
		u, err := uint256.FromHex(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q as %s: %v", ErrIncompatibleValue, s, typ, err)
		}

		return u, nil
	}

	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a number", ErrIncompatibleValue, s)
	}

	return toUint256(typ, b)
}

func toInt64(typ string, v interface{}) (int64, error) {
	switch n := v.(type) {
	case int, int8, int16, int32, int64:
		return reflect.ValueOf(n).Int(), nil
	case uint, uint8, uint16, uint32, uint64:
		u := reflect.ValueOf(n).Uint()
		if u > 1<<63-1 {
			return 0, outOfRange(typ, v)
		}

		return int64(u), nil
	case *big.Int:
		if n == nil || !n.IsInt64() {
			return 0, outOfRange(typ, v)
		}

		return n.Int64(), nil
	case string:
		b, ok := new(big.Int).SetString(strings.TrimSpace(n), 10)
		if !ok {
			return 0, fmt.Errorf("%w: %q is not a number", ErrIncompatibleValue, n)
		}

		return toInt64(typ, b)
	}

	return 0, incompatible(typ, v)
}

type byteser interface {
	Bytes() []byte
}

// toBytes accepts byte slices, byte arrays, hex strings and values exposing Bytes()
func toBytes(typ string, v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		if strings.HasPrefix(b, "0x") {
			return hex.DecodeHex(b)
		}

		return []byte(b), nil
	case byteser:
		return b.Bytes(), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		out := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(out), rv)

		return out, nil
	}

	return nil, incompatible(typ, v)
}

// toSlice accepts any slice or array as a sequence of elements
func toSlice(typ string, v interface{}) ([]interface{}, error) {
	if items, ok := v.([]interface{}); ok {
		return items, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, incompatible(typ, v)
	}

	items := make([]interface{}, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}

	return items, nil
}
