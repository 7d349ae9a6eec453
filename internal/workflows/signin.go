package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/akhil-is-watching/securechain/internal/audit"
	"github.com/akhil-is-watching/securechain/internal/configs"
	"github.com/akhil-is-watching/securechain/internal/documents"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	"github.com/akhil-is-watching/securechain/internal/secrets"
	"github.com/akhil-is-watching/securechain/internal/session"
	"github.com/akhil-is-watching/securechain/internal/wallet"
)

// SignInOptions configures the sign-in workflow.
type SignInOptions struct {
	Wallet Wallet

	// Message is the login message to sign. Defaults to configs.DefaultLoginMessage.
	Message string
}

// SignInResult contains the signed-in session.
type SignInResult struct {
	Session   *session.Session
	Address   string
	PublicKey string
}

// unverified is implemented by wallets whose signatures do not recover to
// their address.
type unverified interface {
	Unverified() bool
}

// SignIn asks the wallet for its address and a signature over the login
// message, then derives the session keypair from that signature.
//
// Returns ErrWalletUnavailable if the wallet cannot answer.
// Returns ErrKeyDerivation if the signature is empty, malformed, or does not
// recover to the wallet address.
func (s *Services) SignIn(ctx context.Context, opts SignInOptions) (*SignInResult, error) {
	r := s.begin("signin")
	if opts.Wallet == nil {
		return nil, r.fail(kerrors.ErrWalletUnavailable)
	}
	message := opts.Message
	if message == "" {
		message = configs.DefaultLoginMessage
	}

	address, err := opts.Wallet.Address(ctx)
	if err != nil {
		return nil, r.fail(walletError(err))
	}
	sig, err := opts.Wallet.Sign(ctx, message)
	if err != nil {
		return nil, r.fail(walletError(err))
	}

	r.enter(StageKeying)
	if u, ok := opts.Wallet.(unverified); !ok || !u.Unverified() {
		valid, err := wallet.VerifySignature(address, message, sig)
		if err != nil {
			return nil, r.fail(fmt.Errorf("%w: %v", kerrors.ErrKeyDerivation, err))
		}
		if !valid {
			return nil, r.fail(fmt.Errorf("%w: signature does not recover to %s", kerrors.ErrKeyDerivation, address))
		}
	}

	keys, err := secrets.DeriveKeyPair(sig)
	if err != nil {
		return nil, r.fail(err)
	}
	sess, err := session.New(address, keys)
	if err != nil {
		keys.Zero()
		return nil, r.fail(err)
	}

	r.done()
	s.Logger.Debugf("Signed in as %s", sess.Address())
	return &SignInResult{
		Session:   sess,
		Address:   sess.Address(),
		PublicKey: keys.PublicKeyHex(),
	}, nil
}

func walletError(err error) error {
	if errors.Is(err, kerrors.ErrWalletUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", kerrors.ErrWalletUnavailable, err)
}

// RegisterOptions configures the register workflow.
type RegisterOptions struct {
	Session *session.Session
}

// RegisterResult contains the outcome of a key registration.
type RegisterResult struct {
	Address   string
	PublicKey string

	// Bound is true when this call created the binding, false when the same
	// key was already bound.
	Bound bool
	RunID string
}

// RegisterKey binds the session public key to the session address in the
// registry unless it is already bound.
//
// Returns ErrNoSession if the session is missing or closed.
// Returns ErrPublicKeyExists if a different key is bound to the address.
func (s *Services) RegisterKey(ctx context.Context, opts RegisterOptions) (*RegisterResult, error) {
	r := s.begin("register")
	address, keys, err := sessionKeys(opts.Session)
	if err != nil {
		return nil, r.fail(err)
	}
	defer keys.Zero()
	result := &RegisterResult{Address: address, PublicKey: keys.PublicKeyHex(), RunID: r.id}

	has, err := s.Registry.HasPublicKey(ctx, address)
	if err != nil {
		return nil, r.fail(kerrors.Step("check public key", err))
	}
	if has {
		bound, err := s.Registry.PublicKey(ctx, address)
		if err != nil {
			return nil, r.fail(kerrors.Step("read public key", err))
		}
		if !secrets.SamePublicKey(bound, result.PublicKey) {
			return nil, r.fail(fmt.Errorf("%w: %s", kerrors.ErrPublicKeyExists, address))
		}
		r.done()
		return result, nil
	}

	if err := r.checkpoint(ctx); err != nil {
		return nil, err
	}
	if err := s.Registry.BindPublicKey(ctx, address, result.PublicKey); err != nil {
		return nil, r.fail(kerrors.Step("bind public key", err))
	}
	result.Bound = true

	r.done()
	s.record(r, audit.Entry{Address: address})
	return result, nil
}

// LookupPublicKey returns the public key bound to address.
//
// Returns ErrPublicKeyNotBound if the address has no key in the registry.
func (s *Services) LookupPublicKey(ctx context.Context, address string) (string, error) {
	addr, err := documents.NormalizeAddress(address)
	if err != nil {
		return "", err
	}
	pub, err := s.Registry.PublicKey(ctx, addr)
	if err != nil {
		return "", kerrors.Step("lookup public key", err)
	}
	return pub, nil
}
