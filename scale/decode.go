package scale

import (
	"encoding/binary"
	"math"

	"github.com/holiman/uint256"
)

// Decodeable is implemented by values that can read their own wire shape
type Decodeable interface {
	DecodeSCALE(dec *Decoder) error
}

// Decoder reads values from a byte slice. The first failure is sticky:
// every later read returns the same error, so a partially decoded value
// can never be mistaken for a complete one.
type Decoder struct {
	buf []byte
	off int
	err error
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// DecodeFromBytes decodes a single value from b
func DecodeFromBytes(b []byte, v Decodeable) error {
	return NewDecoder(b).Decode(v)
}

// Offset returns the number of bytes consumed so far
func (d *Decoder) Offset() int {
	return d.off
}

// Remaining returns the number of unread bytes
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}

// Since returns a copy of the bytes consumed from offset from up to the current position
func (d *Decoder) Since(from int) []byte {
	if from < 0 || from > d.off {
		return nil
	}

	out := make([]byte, d.off-from)
	copy(out, d.buf[from:d.off])

	return out
}

// Err returns the first error the decoder hit, if any
func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) Decode(v Decodeable) error {
	if d.err != nil {
		return d.err
	}

	return v.DecodeSCALE(d)
}

// Fail marks the decoder as failed with the given kind at offset.
// Used by composite decoders that detect invalid data themselves.
func (d *Decoder) Fail(kind error, offset int, format string, args ...interface{}) error {
	return d.fail(newDecodeError(kind, offset, format, args...))
}

func (d *Decoder) fail(err *DecodeError) error {
	if d.err == nil {
		d.err = err
	}

	return d.err
}

func (d *Decoder) take(n int, what string) ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}

	if n < 0 || d.Remaining() < n {
		return nil, d.fail(newDecodeError(
			ErrTruncatedInput,
			d.off,
			"%s needs %d bytes, %d left",
			what,
			n,
			d.Remaining(),
		))
	}

	b := d.buf[d.off : d.off+n]
	d.off += n

	return b, nil
}

// ReadByte reads one raw byte
func (d *Decoder) ReadByte() (byte, error) {
	b, err := d.take(1, "byte")
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// Read reads n raw bytes (fixed-size arrays). The result is a copy.
func (d *Decoder) Read(n int) ([]byte, error) {
	b, err := d.take(n, "fixed array")
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, b)

	return out, nil
}

func (d *Decoder) DecodeBool() (bool, error) {
	start := d.off

	b, err := d.take(1, "bool")
	if err != nil {
		return false, err
	}

	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, d.fail(newDecodeError(ErrInvalidDiscriminant, start, "bool byte 0x%02x", b[0]))
	}
}

func (d *Decoder) DecodeUint8() (uint8, error) {
	b, err := d.take(1, "u8")
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (d *Decoder) DecodeUint16() (uint16, error) {
	b, err := d.take(2, "u16")
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) DecodeUint32() (uint32, error) {
	b, err := d.take(4, "u32")
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) DecodeUint64() (uint64, error) {
	b, err := d.take(8, "u64")
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) DecodeUint128() (*uint256.Int, error) {
	b, err := d.take(16, "u128")
	if err != nil {
		return nil, err
	}

	return leToUint256(b), nil
}

func (d *Decoder) DecodeInt8() (int8, error) {
	v, err := d.DecodeUint8()

	return int8(v), err
}

func (d *Decoder) DecodeInt16() (int16, error) {
	v, err := d.DecodeUint16()

	return int16(v), err
}

func (d *Decoder) DecodeInt32() (int32, error) {
	v, err := d.DecodeUint32()

	return int32(v), err
}

func (d *Decoder) DecodeInt64() (int64, error) {
	v, err := d.DecodeUint64()

	return int64(v), err
}

// DecodeCompactBig reads a compact integer of up to 256 bits,
// rejecting encodings that are not the shortest possible form
func (d *Decoder) DecodeCompactBig() (*uint256.Int, error) {
	start := d.off

	b0, err := d.take(1, "compact")
	if err != nil {
		return nil, err
	}

	switch b0[0] & 0b11 {
	case 0b00:
		return uint256.NewInt(uint64(b0[0] >> 2)), nil

	case 0b01:
		d.off = start

		b, err := d.take(2, "compact")
		if err != nil {
			return nil, err
		}

		v := uint64(binary.LittleEndian.Uint16(b) >> 2)
		if v <= compactSingleMax {
			return nil, d.fail(newDecodeError(ErrNonCanonicalCompact, start, "%d in two-byte mode", v))
		}

		return uint256.NewInt(v), nil

	case 0b10:
		d.off = start

		b, err := d.take(4, "compact")
		if err != nil {
			return nil, err
		}

		v := uint64(binary.LittleEndian.Uint32(b) >> 2)
		if v <= compactTwoMax {
			return nil, d.fail(newDecodeError(ErrNonCanonicalCompact, start, "%d in four-byte mode", v))
		}

		return uint256.NewInt(v), nil

	default:
		n := int(b0[0]>>2) + 4

		b, err := d.take(n, "compact")
		if err != nil {
			// report the truncation at the start of the compact value
			if derr, ok := err.(*DecodeError); ok && derr == d.err {
				derr.Offset = start
			}

			return nil, err
		}

		if n > 32 {
			return nil, d.fail(newDecodeError(ErrOverflow, start, "%d byte compact exceeds 256 bits", n))
		}

		if b[n-1] == 0 {
			return nil, d.fail(newDecodeError(ErrNonCanonicalCompact, start, "%d byte compact with zero high byte", n))
		}

		v := leToUint256(b)
		if n == 4 && v.Uint64() <= compactFourMax {
			return nil, d.fail(newDecodeError(ErrNonCanonicalCompact, start, "%d in big-integer mode", v.Uint64()))
		}

		return v, nil
	}
}

// DecodeCompact reads a compact integer that must fit in 64 bits
func (d *Decoder) DecodeCompact() (uint64, error) {
	start := d.off

	v, err := d.DecodeCompactBig()
	if err != nil {
		return 0, err
	}

	if !v.IsUint64() {
		return 0, d.fail(newDecodeError(ErrOverflow, start, "compact %s exceeds u64", v.Dec()))
	}

	return v.Uint64(), nil
}

// DecodeLength reads a sequence length prefix
func (d *Decoder) DecodeLength() (int, error) {
	start := d.off

	v, err := d.DecodeCompact()
	if err != nil {
		return 0, err
	}

	if v > math.MaxInt32 {
		return 0, d.fail(newDecodeError(ErrOverflow, start, "sequence length %d", v))
	}

	return int(v), nil
}

// DecodeBytes reads a length prefixed byte vector. The result is a copy.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	n, err := d.DecodeLength()
	if err != nil {
		return nil, err
	}

	return d.Read(n)
}

func (d *Decoder) DecodeString() (string, error) {
	b, err := d.DecodeBytes()
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// DecodeOption reads the presence byte of an optional value
func (d *Decoder) DecodeOption() (bool, error) {
	start := d.off

	b, err := d.take(1, "option")
	if err != nil {
		return false, err
	}

	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, d.fail(newDecodeError(ErrInvalidDiscriminant, start, "option byte 0x%02x", b[0]))
	}
}

// DecodeVariant reads an enum index that must be below count
func (d *Decoder) DecodeVariant(count int) (int, error) {
	start := d.off

	b, err := d.take(1, "variant")
	if err != nil {
		return 0, err
	}

	if int(b[0]) >= count {
		return 0, d.fail(newDecodeError(ErrInvalidDiscriminant, start, "variant %d of %d", b[0], count))
	}

	return int(b[0]), nil
}

func leToUint256(le []byte) *uint256.Int {
	be := make([]byte, len(le))
	for i := range le {
		be[len(le)-1-i] = le[i]
	}

	return new(uint256.Int).SetBytes(be)
}
