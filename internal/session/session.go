package session

import (
	"sync"

	"github.com/akhil-is-watching/securechain/internal/documents"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	"github.com/akhil-is-watching/securechain/internal/secrets"
)

// Session is the signed-in identity: the wallet address and the keypair
// derived from its login signature. Workflows read it; only Close mutates it.
type Session struct {
	mu      sync.RWMutex
	address string
	keys    *secrets.KeyPair
}

// New binds keys to address. The session takes ownership of keys.
func New(address string, keys *secrets.KeyPair) (*Session, error) {
	addr, err := documents.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	if keys == nil {
		return nil, kerrors.ErrNoSession
	}
	return &Session{address: addr, keys: keys}, nil
}

// Address returns the checksummed wallet address.
func (s *Session) Address() string {
	return s.address
}

// Keys returns a copy of the session keypair, or ErrNoSession once closed.
// The caller owns the copy and should Zero it when done; Close does not
// reach it.
func (s *Session) Keys() (*secrets.KeyPair, error) {
	if s == nil {
		return nil, kerrors.ErrNoSession
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.keys == nil {
		return nil, kerrors.ErrNoSession
	}
	return s.keys.Clone(), nil
}

// PublicKeyHex returns the session public key, or "" once closed.
func (s *Session) PublicKeyHex() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.keys == nil {
		return ""
	}
	return s.keys.PublicKeyHex()
}

// Close zeroes the private scalar. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys != nil {
		s.keys.Zero()
		s.keys = nil
	}
}
