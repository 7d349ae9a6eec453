package secrets

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// testParams keep argon2 cheap so the suite stays fast.
var testParams = Params{Time: 1, MemoryKiB: 64, Threads: 1}

func testCipher() *Cipher {
	return NewCipher(testParams)
}

// counterReader is a deterministic byte stream for injecting randomness.
type counterReader struct {
	seed    string
	counter uint64
	buf     []byte
}

func (r *counterReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.buf) == 0 {
			var ctr [8]byte
			binary.BigEndian.PutUint64(ctr[:], r.counter)
			r.counter++
			sum := sha256.Sum256(append([]byte(r.seed), ctr[:]...))
			r.buf = sum[:]
		}
		c := copy(p[n:], r.buf)
		r.buf = r.buf[c:]
		n += c
	}
	return n, nil
}

func mustDerive(t *testing.T, sig string) *KeyPair {
	t.Helper()
	kp, err := DeriveKeyPair(sig)
	require.NoError(t, err)
	return kp
}
