package secrets

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
)

// SharedKeySize is the length of keys produced by ECDH key derivation.
const SharedKeySize = sha256.Size

// ecdhKey hashes the 32-byte x-coordinate of priv*pub. Wrap/Unwrap and
// DeriveSharedKey share it so both paths agree on the serialization.
func ecdhKey(priv *btcec.PrivateKey, pub *btcec.PublicKey) []byte {
	x := btcec.GenerateSharedSecret(priv, pub)
	defer zeroBytes(x)
	sum := sha256.Sum256(x)
	return sum[:]
}

// DeriveSharedKey computes the static shared key between mine and theirs.
// DeriveSharedKey(a, B) == DeriveSharedKey(b, A) for any two keypairs.
func DeriveSharedKey(mine *KeyPair, theirs *btcec.PublicKey) ([]byte, error) {
	if mine == nil || mine.priv == nil {
		return nil, kerrors.ErrNoSession
	}
	if theirs == nil {
		return nil, fmt.Errorf("%w: missing counterparty key", kerrors.ErrInvalidPublicKey)
	}
	return ecdhKey(mine.priv, theirs), nil
}
