package metadata

import (
	"fmt"

	"github.com/0xPolygon/polygon-xt/crypto"
	"github.com/0xPolygon/polygon-xt/scale"
)

// Hasher is the function applied to a storage map key
type Hasher uint8

const (
	Blake2_128 Hasher = iota
	Blake2_256
	Blake2_128Concat
	Twox128
	Twox256
	Twox64Concat
	Identity
)

var hasherNames = [...]string{
	Blake2_128:       "Blake2_128",
	Blake2_256:       "Blake2_256",
	Blake2_128Concat: "Blake2_128Concat",
	Twox128:          "Twox128",
	Twox256:          "Twox256",
	Twox64Concat:     "Twox64Concat",
	Identity:         "Identity",
}

func (h Hasher) String() string {
	if int(h) < len(hasherNames) {
		return hasherNames[h]
	}

	return fmt.Sprintf("Hasher(%d)", uint8(h))
}

// Hash applies the hasher to an encoded key. The Concat variants append the
// key itself so that it can be recovered from the storage key.
func (h Hasher) Hash(key []byte) []byte {
	switch h {
	case Blake2_128:
		return crypto.Blake2b128(key)
	case Blake2_256:
		return crypto.Blake2b256(key)
	case Blake2_128Concat:
		return append(crypto.Blake2b128(key), key...)
	case Twox128:
		return crypto.Twox128(key)
	case Twox256:
		return crypto.Twox256(key)
	case Twox64Concat:
		return append(crypto.Twox64(key), key...)
	default:
		return append([]byte(nil), key...)
	}
}

func (h Hasher) EncodeSCALE(enc *scale.Encoder) error {
	return enc.EncodeVariant(int(h))
}

func (h *Hasher) DecodeSCALE(dec *scale.Decoder) error {
	v, err := dec.DecodeVariant(len(hasherNames))
	if err != nil {
		return err
	}

	*h = Hasher(v)

	return nil
}

// KeyCount is the number of keys needed to address a value of the entry
func (e *StorageEntry) KeyCount() int {
	switch e.Kind {
	case EntryMap:
		return 1
	case EntryDoubleMap:
		return 2
	default:
		return 0
	}
}

// StorageKey builds the raw key of a storage value from the SCALE encoded map keys.
// The key is twox128(prefix) ++ twox128(entry) ++ the hashed keys.
func (m *Metadata) StorageKey(module, entry string, keys ...[]byte) ([]byte, error) {
	mod, e, err := m.findStorage(module, entry)
	if err != nil {
		return nil, err
	}

	if len(keys) != e.KeyCount() {
		return nil, fmt.Errorf("%w: %s.%s is a %s and takes %d, got %d",
			ErrStorageKeyCount, module, entry, e.Kind, e.KeyCount(), len(keys))
	}

	key := append(crypto.Twox128([]byte(mod.Storage.Prefix)), crypto.Twox128([]byte(e.Name))...)

	switch e.Kind {
	case EntryMap:
		key = append(key, e.Hasher.Hash(keys[0])...)
	case EntryDoubleMap:
		key = append(key, e.Hasher.Hash(keys[0])...)
		key = append(key, e.Key2Hasher.Hash(keys[1])...)
	}

	return key, nil
}
