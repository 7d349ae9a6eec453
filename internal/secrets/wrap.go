package secrets

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"

	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
)

// WrappedKey is a content key encrypted for one recipient public key.
type WrappedKey struct {
	EphemeralPublicKey *btcec.PublicKey
	Ciphertext         []byte
}

// wrappedKeyJSON is the stored form. Ciphertext is base64 through encoding/json.
type wrappedKeyJSON struct {
	EphemeralPubKey string `json:"ephemeralPubKey"`
	Ciphertext      []byte `json:"ciphertext"`
}

// Encode serializes the wrapped key as a single JSON document.
func (w *WrappedKey) Encode() (string, error) {
	if w == nil || w.EphemeralPublicKey == nil || len(w.Ciphertext) == 0 {
		return "", fmt.Errorf("wrapped key is incomplete")
	}
	data, err := json.Marshal(wrappedKeyJSON{
		EphemeralPubKey: EncodePublicKey(w.EphemeralPublicKey),
		Ciphertext:      w.Ciphertext,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeWrappedKey parses the output of Encode. A malformed document is
// reported as ErrUnwrapFailed like any other unwrap failure.
func DecodeWrappedKey(s string) (*WrappedKey, error) {
	var raw wrappedKeyJSON
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, kerrors.ErrUnwrapFailed
	}
	pub, err := ParsePublicKey(raw.EphemeralPubKey)
	if err != nil || len(raw.Ciphertext) == 0 {
		return nil, kerrors.ErrUnwrapFailed
	}
	return &WrappedKey{EphemeralPublicKey: pub, Ciphertext: raw.Ciphertext}, nil
}

// KeyWrapper wraps content keys ECIES-style: a fresh ephemeral keypair per
// call, SHA-256 over the ECDH x-coordinate as the wrapping key, and the
// Cipher to seal the content key under it.
type KeyWrapper struct {
	Cipher *Cipher
	// Rand supplies ephemeral scalars. Defaults to crypto/rand.
	Rand io.Reader
}

func NewKeyWrapper(c *Cipher) *KeyWrapper {
	return &KeyWrapper{Cipher: c}
}

func (w *KeyWrapper) random() io.Reader {
	if w.Rand != nil {
		return w.Rand
	}
	return rand.Reader
}

// Wrap encrypts contentKey for recipient. The ephemeral private key is
// zeroed before returning.
func (w *KeyWrapper) Wrap(recipient *btcec.PublicKey, contentKey []byte) (*WrappedKey, error) {
	if recipient == nil {
		return nil, fmt.Errorf("%w: missing recipient key", kerrors.ErrInvalidPublicKey)
	}
	if len(contentKey) == 0 {
		return nil, fmt.Errorf("%w: empty content key", kerrors.ErrInvalidKeyLength)
	}

	ephemeral, err := GenerateKeyPair(w.random())
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %v", kerrors.ErrEncryptFailed, err)
	}
	defer ephemeral.Zero()

	wrappingKey := ecdhKey(ephemeral.priv, recipient)
	defer zeroBytes(wrappingKey)

	ciphertext, err := w.Cipher.Encrypt(wrappingKey, contentKey)
	if err != nil {
		return nil, err
	}

	return &WrappedKey{
		EphemeralPublicKey: ephemeral.PublicKey(),
		Ciphertext:         ciphertext,
	}, nil
}

// Unwrap recovers the content key with the recipient's keypair. Every
// failure is ErrUnwrapFailed.
func (w *KeyWrapper) Unwrap(recipient *KeyPair, wrapped *WrappedKey) ([]byte, error) {
	if recipient == nil || recipient.priv == nil {
		return nil, kerrors.ErrNoSession
	}
	if wrapped == nil || wrapped.EphemeralPublicKey == nil {
		return nil, kerrors.ErrUnwrapFailed
	}

	wrappingKey := ecdhKey(recipient.priv, wrapped.EphemeralPublicKey)
	defer zeroBytes(wrappingKey)

	contentKey, err := w.Cipher.Decrypt(wrappingKey, wrapped.Ciphertext)
	if err != nil {
		return nil, kerrors.ErrUnwrapFailed
	}
	return contentKey, nil
}
