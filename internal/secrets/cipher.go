package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"

	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
)

// Blob layout:
//
//	magic "SCB1" | kdf id (1) | time (4, BE) | memory KiB (4, BE) | threads (1) | salt (16) | AES-256-GCM(ct || tag)
//
// The header is authenticated as additional data. The GCM key and nonce are
// both drawn from the KDF output, which is unique per blob because the salt is.
const (
	blobMagic      = "SCB1"
	kdfArgon2id    = 0x01
	saltSize       = 16
	headerSize     = len(blobMagic) + 1 + 4 + 4 + 1 + saltSize
	cipherKeySize  = 32
	gcmNonceSize   = 12
	gcmTagSize     = 16
	maxKDFTime     = 16
	maxKDFMemory   = 1 << 20 // 1 GiB in KiB
	minBlobSize    = headerSize + gcmTagSize
	derivedKeySize = cipherKeySize + gcmNonceSize
)

// Params are the argon2id cost parameters written into every blob.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultParams follow the argon2 RFC's second recommended profile, scaled
// down in time since the input key already carries 256 bits of entropy.
var DefaultParams = Params{Time: 1, MemoryKiB: 64 * 1024, Threads: 4}

// Validate checks the parameters against the bounds Decrypt accepts.
func (p Params) Validate() error {
	if p.Time == 0 || p.Time > maxKDFTime {
		return fmt.Errorf("kdf time %d out of range", p.Time)
	}
	if p.Threads == 0 {
		return fmt.Errorf("kdf threads must be positive")
	}
	if p.MemoryKiB < 8*uint32(p.Threads) || p.MemoryKiB > maxKDFMemory {
		return fmt.Errorf("kdf memory %d KiB out of range", p.MemoryKiB)
	}
	return nil
}

// Cipher encrypts payloads under passphrase-style keys. The key handed to
// Encrypt is not used directly: a password KDF with a fresh salt turns it
// into the AES key and nonce, and the salt travels inside the blob.
type Cipher struct {
	Params Params
	// Rand supplies salts. Defaults to crypto/rand.
	Rand io.Reader
}

func NewCipher(p Params) *Cipher {
	return &Cipher{Params: p}
}

func (c *Cipher) random() io.Reader {
	if c.Rand != nil {
		return c.Rand
	}
	return rand.Reader
}

// Encrypt seals plaintext under key. Two calls with the same inputs produce
// different blobs.
func (c *Cipher) Encrypt(key, plaintext []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: empty key", kerrors.ErrInvalidKeyLength)
	}
	if err := c.Params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}

	header := make([]byte, headerSize, headerSize+len(plaintext)+gcmTagSize)
	copy(header, blobMagic)
	header[4] = kdfArgon2id
	binary.BigEndian.PutUint32(header[5:9], c.Params.Time)
	binary.BigEndian.PutUint32(header[9:13], c.Params.MemoryKiB)
	header[13] = c.Params.Threads
	salt := header[14:headerSize]
	if _, err := io.ReadFull(c.random(), salt); err != nil {
		return nil, fmt.Errorf("%w: failed to generate salt: %v", kerrors.ErrEncryptFailed, err)
	}

	aead, nonce, err := deriveAEAD(key, salt, c.Params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}
	defer zeroBytes(nonce)

	aad := append([]byte(nil), header...)
	return aead.Seal(header, nonce, plaintext, aad), nil
}

// Decrypt opens a blob produced by Encrypt. Wrong key, corrupted bytes and
// truncated input all return ErrDecryptFailed with no further detail.
func (c *Cipher) Decrypt(key, blob []byte) ([]byte, error) {
	if len(key) == 0 || len(blob) < minBlobSize || string(blob[:4]) != blobMagic || blob[4] != kdfArgon2id {
		return nil, kerrors.ErrDecryptFailed
	}

	p := Params{
		Time:      binary.BigEndian.Uint32(blob[5:9]),
		MemoryKiB: binary.BigEndian.Uint32(blob[9:13]),
		Threads:   blob[13],
	}
	if p.Validate() != nil {
		return nil, kerrors.ErrDecryptFailed
	}

	header := blob[:headerSize]
	aead, nonce, err := deriveAEAD(key, header[14:], p)
	if err != nil {
		return nil, kerrors.ErrDecryptFailed
	}
	defer zeroBytes(nonce)

	plaintext, err := aead.Open(nil, nonce, blob[headerSize:], header)
	if err != nil {
		return nil, kerrors.ErrDecryptFailed
	}
	return plaintext, nil
}

func deriveAEAD(key, salt []byte, p Params) (cipher.AEAD, []byte, error) {
	derived := argon2.IDKey(key, salt, p.Time, p.MemoryKiB, p.Threads, derivedKeySize)
	defer zeroBytes(derived[:cipherKeySize])

	block, err := aes.NewCipher(derived[:cipherKeySize])
	if err != nil {
		return nil, nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce := make([]byte, gcmNonceSize)
	copy(nonce, derived[cipherKeySize:])
	zeroBytes(derived[cipherKeySize:])
	return aead, nonce, nil
}
