package secrets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"

	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
)

// maxKeygenAttempts bounds candidate rejection during key generation. A
// candidate is rejected with probability about 2^-128, so hitting the bound
// means the generator is broken rather than unlucky.
const maxKeygenAttempts = 64

// KeyPair is a secp256k1 keypair. It lives in memory for one session and is
// never persisted.
type KeyPair struct {
	priv *btcec.PrivateKey
	pub  *btcec.PublicKey
}

// DeriveKeyPair deterministically derives a keypair from a wallet signature.
//
// The signature text is hashed with SHA-256 and the lowercase hex of that
// digest seeds an HMAC-DRBG whose nonce is the curve order, the same
// construction elliptic's genKeyPair uses with an explicit entropy option.
// Candidates above n-2 are rejected and the accepted value is shifted by
// one, so the scalar always lies in [1, n-1].
func DeriveKeyPair(signature string) (*KeyPair, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, fmt.Errorf("%w: empty signature", kerrors.ErrKeyDerivation)
	}
	if strings.HasPrefix(signature, "0x") || strings.HasPrefix(signature, "0X") {
		raw := signature[2:]
		if raw == "" {
			return nil, fmt.Errorf("%w: empty hex signature", kerrors.ErrKeyDerivation)
		}
		if _, err := hex.DecodeString(raw); err != nil {
			return nil, fmt.Errorf("%w: malformed hex signature", kerrors.ErrKeyDerivation)
		}
	}

	digest := sha256.Sum256([]byte(signature))
	entropy := []byte(hex.EncodeToString(digest[:]))

	n := btcec.S256().N
	drbg := newHMACDRBG(entropy, n.FillBytes(make([]byte, 32)), nil)
	defer drbg.zero()

	limit := new(big.Int).Sub(n, big.NewInt(2))
	for i := 0; i < maxKeygenAttempts; i++ {
		candidate := new(big.Int).SetBytes(drbg.generate(32))
		if candidate.Cmp(limit) > 0 {
			continue
		}
		candidate.Add(candidate, big.NewInt(1))

		scalar := candidate.FillBytes(make([]byte, 32))
		priv, pub := btcec.PrivKeyFromBytes(scalar)
		zeroBytes(scalar)
		candidate.SetInt64(0)

		return &KeyPair{priv: priv, pub: pub}, nil
	}

	return nil, fmt.Errorf("%w: no valid scalar after %d attempts", kerrors.ErrKeyDerivation, maxKeygenAttempts)
}

// GenerateKeyPair creates a random keypair from r. Used for ephemeral keys.
func GenerateKeyPair(r io.Reader) (*KeyPair, error) {
	n := btcec.S256().N
	buf := make([]byte, 32)
	defer zeroBytes(buf)

	for i := 0; i < maxKeygenAttempts; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("failed to read random scalar: %w", err)
		}
		d := new(big.Int).SetBytes(buf)
		if d.Sign() == 0 || d.Cmp(n) >= 0 {
			continue
		}
		priv, pub := btcec.PrivKeyFromBytes(buf)
		d.SetInt64(0)
		return &KeyPair{priv: priv, pub: pub}, nil
	}

	return nil, fmt.Errorf("random source produced no valid scalar after %d attempts", maxKeygenAttempts)
}

// ParsePrivateKey parses a 64-character hex scalar.
func ParsePrivateKey(privHex string) (*KeyPair, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(privHex, "0x"))
	if err != nil || len(raw) != 32 {
		return nil, kerrors.ErrInvalidPrivateKey
	}
	defer zeroBytes(raw)

	d := new(big.Int).SetBytes(raw)
	if d.Sign() == 0 || d.Cmp(btcec.S256().N) >= 0 {
		return nil, kerrors.ErrInvalidPrivateKey
	}
	d.SetInt64(0)

	priv, pub := btcec.PrivKeyFromBytes(raw)
	return &KeyPair{priv: priv, pub: pub}, nil
}

// ParsePublicKey parses a hex encoded SEC1 point, compressed or uncompressed.
func ParsePublicKey(pubHex string) (*btcec.PublicKey, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(pubHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: not hex", kerrors.ErrInvalidPublicKey)
	}
	pub, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidPublicKey, err)
	}
	return pub, nil
}

// EncodePublicKey returns the uncompressed 65-byte SEC1 encoding as hex.
func EncodePublicKey(pub *btcec.PublicKey) string {
	return hex.EncodeToString(pub.SerializeUncompressed())
}

// SamePublicKey reports whether two hex encodings name the same point.
func SamePublicKey(a, b string) bool {
	pa, err := ParsePublicKey(a)
	if err != nil {
		return false
	}
	pb, err := ParsePublicKey(b)
	if err != nil {
		return false
	}
	return pa.IsEqual(pb)
}

func (k *KeyPair) PublicKey() *btcec.PublicKey {
	return k.pub
}

// PublicKeyHex is the uncompressed public key, 130 hex characters.
func (k *KeyPair) PublicKeyHex() string {
	return EncodePublicKey(k.pub)
}

// PrivateKeyHex is the scalar as 64 hex characters.
func (k *KeyPair) PrivateKeyHex() string {
	b := k.priv.Serialize()
	defer zeroBytes(b)
	return hex.EncodeToString(b)
}

// Equal reports whether both keypairs hold the same scalar.
func (k *KeyPair) Equal(other *KeyPair) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.priv.Key.Equals(&other.priv.Key)
}

// Clone returns an independent copy. Zeroing either keypair leaves the
// other intact.
func (k *KeyPair) Clone() *KeyPair {
	if k == nil {
		return nil
	}
	b := k.priv.Serialize()
	defer zeroBytes(b)
	priv, pub := btcec.PrivKeyFromBytes(b)
	return &KeyPair{priv: priv, pub: pub}
}

// Zero clears the private scalar. The keypair is unusable afterwards.
func (k *KeyPair) Zero() {
	if k == nil || k.priv == nil {
		return
	}
	k.priv.Zero()
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
