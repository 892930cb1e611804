package hex

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// EncodeToHex generates a hex string based on the byte representation, with the '0x' prefix
func EncodeToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// EncodeToString is a wrapper method for hex.EncodeToString
func EncodeToString(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex converts a hex string, with or without the 0x prefix, to a byte array
func DecodeHex(str string) ([]byte, error) {
	str = strings.TrimPrefix(strings.TrimPrefix(str, "0x"), "0X")

	return hex.DecodeString(str)
}

// MustDecodeHex type-checks and converts a hex string to a byte array
func MustDecodeHex(str string) []byte {
	buf, err := DecodeHex(str)
	if err != nil {
		panic(fmt.Errorf("could not decode hex: %w", err))
	}

	return buf
}

// DecodeHexInto decodes str into a fixed size destination
func DecodeHexInto(dst []byte, str string) error {
	buf, err := DecodeHex(str)
	if err != nil {
		return err
	}

	if len(buf) != len(dst) {
		return fmt.Errorf("expected %d bytes, got %d", len(dst), len(buf))
	}

	copy(dst, buf)

	return nil
}

// EncodeUint64 encodes a number as a hex string with 0x prefix.
func EncodeUint64(i uint64) string {
	enc := make([]byte, 2, 18)
	copy(enc, "0x")

	return string(strconv.AppendUint(enc, i, 16))
}

// DecodeUint64 decodes a hex string with 0x prefix to uint64
func DecodeUint64(hexStr string) (uint64, error) {
	// remove 0x suffix if found in the input string
	cleaned := strings.TrimPrefix(hexStr, "0x")

	return strconv.ParseUint(cleaned, 16, 64)
}
