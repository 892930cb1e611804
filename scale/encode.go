package scale

import (
	"encoding/binary"
	"math"
	"math/bits"
	"sync"

	"github.com/holiman/uint256"
)

const (
	compactSingleMax = 1<<6 - 1
	compactTwoMax    = 1<<14 - 1
	compactFourMax   = 1<<30 - 1
)

// Encodeable is implemented by values that know their own wire shape
type Encodeable interface {
	EncodeSCALE(enc *Encoder) error
}

// Encoder accumulates the encoding of a sequence of values.
// Fixed-shape writes cannot fail; only range checked writes return errors.
type Encoder struct {
	buf    []byte
	intBuf [8]byte
}

var encPool = sync.Pool{
	New: func() interface{} {
		return new(Encoder)
	},
}

func AcquireEncoder() *Encoder {
	return encPool.Get().(*Encoder)
}

func ReleaseEncoder(enc *Encoder) {
	enc.Reset()
	encPool.Put(enc)
}

// EncodeToBytes encodes a single value using a pooled encoder
func EncodeToBytes(v Encodeable) ([]byte, error) {
	enc := AcquireEncoder()
	defer ReleaseEncoder(enc)

	if err := v.EncodeSCALE(enc); err != nil {
		return nil, err
	}

	return enc.CopyBytes(), nil
}

func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the internal buffer, valid until the next write or Reset
func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) CopyBytes() []byte {
	buf := make([]byte, len(e.buf))
	copy(buf, e.buf)

	return buf
}

func (e *Encoder) Len() int {
	return len(e.buf)
}

func (e *Encoder) PushByte(b byte) {
	e.buf = append(e.buf, b)
}

// Write appends raw bytes with no length prefix (fixed-size arrays)
func (e *Encoder) Write(b []byte) {
	e.buf = append(e.buf, b...)
}

func (e *Encoder) Encode(v Encodeable) error {
	return v.EncodeSCALE(e)
}

func (e *Encoder) EncodeBool(v bool) {
	if v {
		e.PushByte(1)
	} else {
		e.PushByte(0)
	}
}

func (e *Encoder) EncodeUint8(v uint8) {
	e.PushByte(v)
}

func (e *Encoder) EncodeUint16(v uint16) {
	binary.LittleEndian.PutUint16(e.intBuf[:2], v)
	e.Write(e.intBuf[:2])
}

func (e *Encoder) EncodeUint32(v uint32) {
	binary.LittleEndian.PutUint32(e.intBuf[:4], v)
	e.Write(e.intBuf[:4])
}

func (e *Encoder) EncodeUint64(v uint64) {
	binary.LittleEndian.PutUint64(e.intBuf[:8], v)
	e.Write(e.intBuf[:8])
}

// EncodeUint128 writes v as 16 little-endian bytes
func (e *Encoder) EncodeUint128(v *uint256.Int) error {
	if v.BitLen() > 128 {
		return outOfRange("%s does not fit in u128", v.Dec())
	}

	be := v.Bytes32()
	for i := 31; i >= 16; i-- {
		e.PushByte(be[i])
	}

	return nil
}

func (e *Encoder) EncodeInt8(v int8) {
	e.EncodeUint8(uint8(v))
}

func (e *Encoder) EncodeInt16(v int16) {
	e.EncodeUint16(uint16(v))
}

func (e *Encoder) EncodeInt32(v int32) {
	e.EncodeUint32(uint32(v))
}

func (e *Encoder) EncodeInt64(v int64) {
	e.EncodeUint64(uint64(v))
}

// EncodeCompact writes v in its shortest compact form
func (e *Encoder) EncodeCompact(v uint64) {
	switch {
	case v <= compactSingleMax:
		e.PushByte(byte(v << 2))
	case v <= compactTwoMax:
		e.EncodeUint16(uint16(v<<2) | 0b01)
	case v <= compactFourMax:
		e.EncodeUint32(uint32(v<<2) | 0b10)
	default:
		n := (bits.Len64(v) + 7) / 8

		e.PushByte(byte(n-4)<<2 | 0b11)

		for i := 0; i < n; i++ {
			e.PushByte(byte(v >> (8 * i)))
		}
	}
}

// EncodeCompactBig writes an arbitrary 256-bit magnitude in its shortest compact form
func (e *Encoder) EncodeCompactBig(v *uint256.Int) {
	if v.IsUint64() {
		e.EncodeCompact(v.Uint64())

		return
	}

	be := v.Bytes()

	e.PushByte(byte(len(be)-4)<<2 | 0b11)

	for i := len(be) - 1; i >= 0; i-- {
		e.PushByte(be[i])
	}
}

// EncodeLength writes a sequence length prefix
func (e *Encoder) EncodeLength(n int) {
	e.EncodeCompact(uint64(n))
}

// EncodeBytes writes a compact length prefix followed by the bytes
func (e *Encoder) EncodeBytes(b []byte) {
	e.EncodeLength(len(b))
	e.Write(b)
}

func (e *Encoder) EncodeString(s string) {
	e.EncodeLength(len(s))
	e.buf = append(e.buf, s...)
}

// EncodeOption writes the presence byte of an optional value.
// The caller writes the value itself when present is true.
func (e *Encoder) EncodeOption(present bool) {
	e.EncodeBool(present)
}

// EncodeVariant writes the index byte of an enum variant
func (e *Encoder) EncodeVariant(index int) error {
	if index < 0 || index > math.MaxUint8 {
		return outOfRange("variant index %d", index)
	}

	e.PushByte(byte(index))

	return nil
}
