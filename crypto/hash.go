package crypto

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// Blake2b128 returns the 16 byte blake2b digest of data
func Blake2b128(data ...[]byte) []byte {
	h, _ := blake2b.New(16, nil)
	for _, d := range data {
		h.Write(d)
	}

	return h.Sum(nil)
}

// Blake2b256 returns the 32 byte blake2b digest of data
func Blake2b256(data ...[]byte) []byte {
	h, _ := blake2b.New256(nil)
	for _, d := range data {
		h.Write(d)
	}

	return h.Sum(nil)
}

// Twox64 is xxhash64 with seed 0, little-endian
func Twox64(data []byte) []byte {
	return twox(data, 1)
}

// Twox128 concatenates xxhash64 with seeds 0 and 1
func Twox128(data []byte) []byte {
	return twox(data, 2)
}

// Twox256 concatenates xxhash64 with seeds 0 through 3
func Twox256(data []byte) []byte {
	return twox(data, 4)
}

func twox(data []byte, rounds int) []byte {
	out := make([]byte, 0, 8*rounds)

	for seed := 0; seed < rounds; seed++ {
		d := xxhash.NewWithSeed(uint64(seed))
		d.Write(data) //nolint:errcheck

		out = binary.LittleEndian.AppendUint64(out, d.Sum64())
	}

	return out
}
