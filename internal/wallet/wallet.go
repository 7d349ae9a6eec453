package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
)

// KeyEnv names the environment variable that may carry a hex private key.
const KeyEnv = "SECURECHAIN_WALLET_KEY"

// KeyWallet signs with a local secp256k1 account key, the way a browser
// wallet answers personal_sign.
type KeyWallet struct {
	key *ecdsa.PrivateKey
}

// NewKeyWallet loads a hex private key, with or without 0x.
func NewKeyWallet(hexKey string) (*KeyWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrWalletUnavailable, err)
	}
	return &KeyWallet{key: key}, nil
}

// OpenKeystore decrypts a keystore v3 file.
func OpenKeystore(path string, passphrase []byte) (*KeyWallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrWalletUnavailable, err)
	}
	key, err := keystore.DecryptKey(data, string(passphrase))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to unlock keystore %s: %v", kerrors.ErrWalletUnavailable, path, err)
	}
	return &KeyWallet{key: key.PrivateKey}, nil
}

// FromEnv loads the wallet from KeyEnv. ok is false when the variable is unset.
func FromEnv() (w *KeyWallet, ok bool, err error) {
	v := os.Getenv(KeyEnv)
	if v == "" {
		return nil, false, nil
	}
	w, err = NewKeyWallet(v)
	return w, true, err
}

func (w *KeyWallet) Address(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(w.key.PublicKey).Hex(), nil
}

// Sign produces an EIP-191 personal_sign signature, 0x-hex with v in {27, 28}.
func (w *KeyWallet) Sign(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), w.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrWalletUnavailable, err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// Static returns a fixed address and signature. Its signatures are not
// recoverable; sign-in skips the recovery check for it.
type Static struct {
	Addr      string
	Signature string
}

func (s Static) Address(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !common.IsHexAddress(s.Addr) {
		return "", fmt.Errorf("%w: invalid address %q", kerrors.ErrWalletUnavailable, s.Addr)
	}
	return common.HexToAddress(s.Addr).Hex(), nil
}

func (s Static) Sign(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Signature, nil
}

// Unverified marks wallets whose signatures do not recover to their address.
func (Static) Unverified() bool { return true }

// VerifySignature reports whether sig is a personal_sign signature of
// message by address.
func VerifySignature(address, message, sig string) (bool, error) {
	raw, err := hexutil.Decode(sig)
	if err != nil {
		return false, fmt.Errorf("malformed signature: %w", err)
	}
	if len(raw) != crypto.SignatureLength {
		return false, fmt.Errorf("malformed signature: expected %d bytes, got %d", crypto.SignatureLength, len(raw))
	}
	if raw[crypto.RecoveryIDOffset] >= 27 {
		raw[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), raw)
	if err != nil {
		return false, nil
	}
	if !common.IsHexAddress(address) {
		return false, nil
	}
	return crypto.PubkeyToAddress(*pub) == common.HexToAddress(address), nil
}
