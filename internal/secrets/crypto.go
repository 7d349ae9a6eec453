package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
)

// ContentKeySize is the length of per-file content keys (AES-256).
const ContentKeySize = 32

// CreateContentKey generates a new random content key from r, or from
// crypto/rand when r is nil.
func CreateContentKey(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	key := make([]byte, ContentKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to generate content key: %w", err)
	}
	return key, nil
}

// Zero overwrites key material in place.
func Zero(b []byte) {
	zeroBytes(b)
}

// Digest is a SHA-256 content digest.
type Digest [sha256.Size]byte

// HashContent computes the digest of raw content bytes.
func HashContent(content []byte) Digest {
	return Digest(sha256.Sum256(content))
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Matches compares in constant time against a hex digest.
func (d Digest) Matches(other string) bool {
	o, err := ParseDigest(other)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(d[:], o[:]) == 1
}

// ParseDigest parses the hex form produced by String.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest: %w", err)
	}
	if len(raw) != len(d) {
		return d, fmt.Errorf("invalid digest length: expected %d bytes, got %d bytes", len(d), len(raw))
	}
	copy(d[:], raw)
	return d, nil
}
