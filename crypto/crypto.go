package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/0xPolygon/polygon-xt/helper/keystore"
	"github.com/0xPolygon/polygon-xt/secrets"
	"github.com/btcsuite/btcd/btcec/v2"
	btc_ecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

var (
	errHashOfInvalidLength = errors.New("message hash of invalid length")
	errInvalidSignature    = errors.New("invalid signature")

	// ErrUnsupportedKeyType is returned for key types other than ed25519 and ecdsa
	ErrUnsupportedKeyType = errors.New("unsupported key type")
)

type KeyType string

const (
	KeyEd25519 KeyType = "ed25519"
	KeyECDSA   KeyType = "ecdsa"
)

// ParseKeyType accepts the names used in config files and flags
func ParseKeyType(s string) (KeyType, error) {
	switch KeyType(s) {
	case KeyEd25519, KeyECDSA:
		return KeyType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKeyType, s)
	}
}

const (
	// ECDSASignatureLength indicates the byte length required to carry a signature with recovery id.
	// (64 bytes ECDSA signature + 1 byte recovery id)
	ECDSASignatureLength = 64 + 1

	// recoveryID is ECDSA signature recovery id
	recoveryID = byte(27)

	// recoveryIDOffset points to the byte offset within the signature that contains the recovery id.
	recoveryIDOffset = 64

	// seedLength is the size of the secret of both supported schemes
	seedLength = 32
)

func ParseECDSAPrivateKey(buf []byte) (*ecdsa.PrivateKey, error) {
	if len(buf) != seedLength {
		return nil, fmt.Errorf("invalid key length (%dB), should be %dB", len(buf), seedLength)
	}

	prv, _ := btcec.PrivKeyFromBytes(buf)

	return prv.ToECDSA(), nil
}

// MarshalECDSAPrivateKey serializes the private key's D value to a []byte
func MarshalECDSAPrivateKey(priv *ecdsa.PrivateKey) ([]byte, error) {
	btcPriv, err := convertToBtcPrivKey(priv)
	if err != nil {
		return nil, err
	}

	defer btcPriv.Zero()

	return btcPriv.Serialize(), nil
}

// GenerateECDSAPrivateKey generates a new key based on the secp256k1 elliptic curve.
func GenerateECDSAPrivateKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(btcec.S256(), rand.Reader)
}

// CompressPublicKey returns the 33 byte compressed form of a secp256k1 public key
func CompressPublicKey(pub *ecdsa.PublicKey) ([]byte, error) {
	var x, y btcec.FieldVal

	if overflow := x.SetByteSlice(pub.X.Bytes()); overflow {
		return nil, errors.New("public key x overflows the field")
	}

	if overflow := y.SetByteSlice(pub.Y.Bytes()); overflow {
		return nil, errors.New("public key y overflows the field")
	}

	return btcec.NewPublicKey(&x, &y).SerializeCompressed(), nil
}

// RecoverPubKey recovers the signer of hash from an [R || S || V] signature
func RecoverPubKey(signature, hash []byte) (*ecdsa.PublicKey, error) {
	if len(hash) != 32 {
		return nil, errHashOfInvalidLength
	}

	signatureSize := len(signature)
	if signatureSize != ECDSASignatureLength {
		return nil, errInvalidSignature
	}

	// Convert to btcec input format with 'recovery id' v at the beginning.
	btcsig := make([]byte, signatureSize)
	btcsig[0] = signature[signatureSize-1] + recoveryID
	copy(btcsig[1:], signature)

	pub, _, err := btc_ecdsa.RecoverCompact(btcsig, hash)
	if err != nil {
		return nil, err
	}

	return pub.ToECDSA(), nil
}

// Sign produces an ECDSA signature of the data in hash with the given
// private key on the secp256k1 curve.
// The produced signature is in the [R || S || V] format where V is 0 or 1.
func Sign(priv *ecdsa.PrivateKey, hash []byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("hash is required to be exactly 32 bytes (%d)", len(hash))
	}

	if priv.Curve != btcec.S256() {
		return nil, errors.New("private key curve is not secp256k1")
	}

	btcPrivKey, err := convertToBtcPrivKey(priv)
	if err != nil {
		return nil, err
	}

	defer btcPrivKey.Zero()

	sig, err := btc_ecdsa.SignCompact(btcPrivKey, hash, false)
	if err != nil {
		return nil, err
	}

	// move the recovery id to the end
	v := sig[0] - recoveryID
	copy(sig, sig[1:])
	sig[recoveryIDOffset] = v

	return sig, nil
}

// GenerateKey creates a fresh key of the given type
func GenerateKey(keyType KeyType) (Key, error) {
	switch keyType {
	case KeyEd25519:
		return GenerateEd25519Key()
	case KeyECDSA:
		return GenerateECDSAKey()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKeyType, keyType)
	}
}

// KeyFromSeed rebuilds a key of the given type from its 32 byte secret
func KeyFromSeed(keyType KeyType, seed []byte) (Key, error) {
	switch keyType {
	case KeyEd25519:
		return NewEd25519KeyFromSeed(seed)
	case KeyECDSA:
		return NewECDSAKeyFromRawPrivECDSA(seed)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKeyType, keyType)
	}
}

// BytesToKey reads the hex encoded secret of a key file
func BytesToKey(keyType KeyType, input []byte) (Key, error) {
	decoded, err := hex.DecodeHex(string(input))
	if err != nil {
		return nil, err
	}

	if len(decoded) != seedLength {
		return nil, fmt.Errorf("invalid key length (%dB), should be %dB", len(decoded), seedLength)
	}

	return KeyFromSeed(keyType, decoded)
}

// GenerateOrReadKey generates a key at the specified path,
// or reads it if a key file is present
func GenerateOrReadKey(path string, keyType KeyType) (Key, error) {
	keyBuff, err := keystore.CreateIfNotExists(path, func() ([]byte, error) {
		k, err := GenerateKey(keyType)
		if err != nil {
			return nil, err
		}

		return k.MarshalPrivateKey()
	})
	if err != nil {
		return nil, err
	}

	key, err := BytesToKey(keyType, keyBuff)
	if err != nil {
		return nil, fmt.Errorf("unable to execute byte array -> private key conversion, %w", err)
	}

	return key, nil
}

// GenerateAndStoreSignerKey creates a signer key and stores its secret and type
// in the secrets manager
func GenerateAndStoreSignerKey(manager secrets.SecretsManager, keyType KeyType) (Key, error) {
	key, err := GenerateKey(keyType)
	if err != nil {
		return nil, err
	}

	seed, err := key.MarshalPrivateKey()
	if err != nil {
		return nil, err
	}

	if err := manager.SetSecret(secrets.SignerKey, []byte(hex.EncodeToString(seed))); err != nil {
		return nil, err
	}

	if err := manager.SetSecret(secrets.SignerKeyType, []byte(keyType)); err != nil {
		return nil, err
	}

	return key, nil
}

// ReadSignerKey loads the signer key from the secrets manager. A stored key
// type takes precedence over fallback.
func ReadSignerKey(manager secrets.SecretsManager, fallback KeyType) (Key, error) {
	seed, err := manager.GetSecret(secrets.SignerKey)
	if err != nil {
		return nil, err
	}

	keyType := fallback

	if manager.HasSecret(secrets.SignerKeyType) {
		raw, err := manager.GetSecret(secrets.SignerKeyType)
		if err != nil {
			return nil, err
		}

		if keyType, err = ParseKeyType(string(raw)); err != nil {
			return nil, err
		}
	}

	return BytesToKey(keyType, seed)
}

// convertToBtcPrivKey converts provided ECDSA private key to btc private key format
// used by btcec library
func convertToBtcPrivKey(priv *ecdsa.PrivateKey) (*btcec.PrivateKey, error) {
	var btcPriv btcec.PrivateKey

	overflow := btcPriv.Key.SetByteSlice(priv.D.Bytes())
	if overflow || btcPriv.Key.IsZero() {
		return nil, errors.New("invalid private key")
	}

	return &btcPriv, nil
}
