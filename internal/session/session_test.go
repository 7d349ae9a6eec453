package session

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	"github.com/akhil-is-watching/securechain/internal/secrets"
)

func TestSession_Lifecycle(t *testing.T) {
	kp, err := secrets.DeriveKeyPair("sig-A")
	require.NoError(t, err)
	pub := kp.PublicKeyHex()

	s, err := New("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", kp)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd").Hex(), s.Address())
	assert.Equal(t, pub, s.PublicKeyHex())

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.NotSame(t, kp, keys)
	assert.True(t, kp.Equal(keys))

	s.Close()
	s.Close()

	_, err = s.Keys()
	assert.ErrorIs(t, err, kerrors.ErrNoSession)
	assert.Empty(t, s.PublicKeyHex())
	assert.Equal(t, strings.Repeat("00", 32), kp.PrivateKeyHex())
}

func TestSession_CloseLeavesHandedOutKeysIntact(t *testing.T) {
	kp, err := secrets.DeriveKeyPair("sig-A")
	require.NoError(t, err)
	want := kp.PrivateKeyHex()

	s, err := New("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", kp)
	require.NoError(t, err)
	inFlight, err := s.Keys()
	require.NoError(t, err)

	s.Close()

	assert.Equal(t, want, inFlight.PrivateKeyHex())
	w := secrets.NewKeyWrapper(secrets.NewCipher(secrets.Params{Time: 1, MemoryKiB: 64, Threads: 1}))
	contentKey := bytes.Repeat([]byte{7}, 32)
	wrapped, err := w.Wrap(inFlight.PublicKey(), contentKey)
	require.NoError(t, err)
	unwrapped, err := w.Unwrap(inFlight, wrapped)
	require.NoError(t, err)
	assert.Equal(t, contentKey, unwrapped)

	inFlight.Zero()
	assert.Equal(t, strings.Repeat("00", 32), inFlight.PrivateKeyHex())
}

func TestSession_Invalid(t *testing.T) {
	kp, err := secrets.DeriveKeyPair("sig-A")
	require.NoError(t, err)

	_, err = New("alice", kp)
	assert.ErrorIs(t, err, kerrors.ErrInvalidRecord)

	_, err = New("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", nil)
	assert.ErrorIs(t, err, kerrors.ErrNoSession)

	var nilSession *Session
	_, err = nilSession.Keys()
	assert.ErrorIs(t, err, kerrors.ErrNoSession)
}
