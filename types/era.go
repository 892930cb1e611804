package types

import (
	"fmt"
	"math/bits"

	"github.com/0xPolygon/polygon-xt/scale"
)

const (
	minEraPeriod = 4
	maxEraPeriod = 1 << 16
)

// Era is the validity window of a transaction. The zero value is immortal.
type Era struct {
	Mortal bool
	Period uint64
	Phase  uint64
}

// ImmortalEra is valid from genesis forever
var ImmortalEra = Era{}

// NewMortalEra creates an era that starts at the block current and lasts
// period blocks. The period is rounded up to a power of two within [4, 65536]
// and the phase is quantized so that it survives the two byte encoding.
func NewMortalEra(period, current uint64) Era {
	if period > maxEraPeriod {
		period = maxEraPeriod
	}

	if period < minEraPeriod {
		period = minEraPeriod
	}

	if period&(period-1) != 0 {
		period = 1 << bits.Len64(period)
	}

	phase := current % period
	quantize := quantizeFactor(period)

	return Era{
		Mortal: true,
		Period: period,
		Phase:  phase / quantize * quantize,
	}
}

func quantizeFactor(period uint64) uint64 {
	if f := period >> 12; f > 1 {
		return f
	}

	return 1
}

func (e Era) IsImmortal() bool {
	return !e.Mortal
}

// Birth returns the first block in which a transaction with this era is valid,
// given any block number inside the era
func (e Era) Birth(current uint64) uint64 {
	if !e.Mortal {
		return 0
	}

	if current < e.Phase {
		current = e.Phase
	}

	return (current-e.Phase)/e.Period*e.Period + e.Phase
}

// Death returns the first block in which the transaction is no longer valid
func (e Era) Death(current uint64) uint64 {
	if !e.Mortal {
		return ^uint64(0)
	}

	return e.Birth(current) + e.Period
}

func (e Era) String() string {
	if !e.Mortal {
		return "immortal"
	}

	return fmt.Sprintf("mortal(period=%d, phase=%d)", e.Period, e.Phase)
}

func (e Era) EncodeSCALE(enc *scale.Encoder) error {
	if !e.Mortal {
		enc.PushByte(0)

		return nil
	}

	if e.Period < minEraPeriod || e.Period > maxEraPeriod || e.Period&(e.Period-1) != 0 {
		return &scale.EncodeError{
			Kind: scale.ErrValueOutOfRange,
			Msg:  fmt.Sprintf("era period %d", e.Period),
		}
	}

	low := uint64(bits.TrailingZeros64(e.Period)) - 1
	if low < 1 {
		low = 1
	}

	if low > 15 {
		low = 15
	}

	encoded := low | (e.Phase/quantizeFactor(e.Period))<<4
	enc.EncodeUint16(uint16(encoded))

	return nil
}

func (e *Era) DecodeSCALE(dec *scale.Decoder) error {
	start := dec.Offset()

	first, err := dec.ReadByte()
	if err != nil {
		return err
	}

	if first == 0 {
		*e = ImmortalEra

		return nil
	}

	second, err := dec.ReadByte()
	if err != nil {
		return err
	}

	encoded := uint64(first) | uint64(second)<<8
	period := uint64(2) << (encoded % 16)
	phase := (encoded >> 4) * quantizeFactor(period)

	if period < minEraPeriod || phase >= period {
		return dec.Fail(scale.ErrInvalidDiscriminant, start, "era 0x%04x", encoded)
	}

	*e = Era{Mortal: true, Period: period, Phase: phase}

	return nil
}
