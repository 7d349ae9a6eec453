package errors

import (
	"errors"
	"fmt"
)

// Key errors indicate a keypair could not be produced or parsed.
var (
	// ErrKeyDerivation indicates a keypair could not be derived from a signature.
	ErrKeyDerivation = errors.New("failed to derive keypair from signature")

	// ErrInvalidPublicKey indicates a public key is malformed or not on the curve.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrInvalidPrivateKey indicates the private key is malformed or out of range.
	ErrInvalidPrivateKey = errors.New("invalid or unsupported private key format")

	// ErrInvalidKeyLength indicates a symmetric key has an unexpected length.
	ErrInvalidKeyLength = errors.New("invalid symmetric key length")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
//
// ErrUnwrapFailed wraps ErrDecryptFailed so both satisfy errors.Is(err, ErrDecryptFailed).
// Neither carries the reason decryption failed.
var (
	// ErrDecryptFailed indicates a blob could not be decrypted.
	ErrDecryptFailed = errors.New("failed to decrypt")

	// ErrUnwrapFailed indicates a wrapped content key could not be unwrapped.
	ErrUnwrapFailed = fmt.Errorf("failed to unwrap content key: %w", ErrDecryptFailed)

	// ErrEncryptFailed indicates content encryption failed.
	ErrEncryptFailed = errors.New("failed to encrypt")
)

// Access errors indicate the caller lacks the session or the role required.
var (
	// ErrAccessDenied indicates the caller is neither the owner nor the recipient of a document.
	ErrAccessDenied = errors.New("access denied")

	// ErrNoSession indicates a workflow was started without a signed-in keypair.
	ErrNoSession = errors.New("no active session keypair")

	// ErrWalletUnavailable indicates the wallet could not provide an address or signature.
	ErrWalletUnavailable = errors.New("wallet unavailable")
)

// Record errors indicate issues with documents, blobs, or registry entries.
var (
	// ErrNotFound indicates a document or blob does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRecord indicates a document record violates its variant's invariants.
	ErrInvalidRecord = errors.New("invalid document record")

	// ErrIntegrityMismatch indicates content does not hash to the recorded digest.
	ErrIntegrityMismatch = errors.New("content digest does not match recorded digest")

	// ErrPublicKeyExists indicates a different public key is already bound to the address.
	ErrPublicKeyExists = errors.New("public key already exists")

	// ErrPublicKeyNotBound indicates no public key is bound to the address.
	ErrPublicKeyNotBound = errors.New("public key not bound for address")
)

// Input errors indicate malformed command input.
var (
	// ErrInvalidDateFormat indicates a date filter is not in YYYY-MM-DD form.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrFileExists indicates an output file is already present and
	// overwriting was not requested.
	ErrFileExists = errors.New("file already exists")
)

// ErrCollaborator is matched by every StepError.
var ErrCollaborator = errors.New("collaborator failure")

// StepError records which collaborator step of a workflow failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrCollaborator so callers can separate I/O failures
// from cryptographic ones.
func (e *StepError) Is(target error) bool {
	return target == ErrCollaborator
}

// Step wraps err as a collaborator failure of the named step. Not-found
// conditions, including an address with no bound key, keep their own kind
// and are not reported as collaborator errors.
func Step(step string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", step, ErrNotFound)
	}
	if errors.Is(err, ErrPublicKeyNotBound) {
		return fmt.Errorf("%s: %w", step, err)
	}
	return &StepError{Step: step, Err: err}
}
