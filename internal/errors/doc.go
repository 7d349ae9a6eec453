// Package errors provides typed error values for securechain.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Key errors: a keypair could not be derived or parsed (ErrKeyDerivation, ErrInvalidPublicKey)
//   - Crypto errors: decryption failures (ErrDecryptFailed, ErrUnwrapFailed)
//   - Access errors: missing session or role (ErrAccessDenied, ErrNoSession)
//   - Record errors: documents, blobs and registry entries (ErrNotFound, ErrIntegrityMismatch)
//   - Collaborator errors: storage, registry or catalog I/O, wrapped in StepError
//
// ErrUnwrapFailed wraps ErrDecryptFailed, so a wrong-key unwrap and a
// wrong-key decrypt are the same kind to a caller checking ErrDecryptFailed.
//
// # Usage
//
//	doc, err := catalog.GetDocument(ctx, id)
//	if err != nil {
//	    return nil, kerrors.Step("get document", err)
//	}
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Download(ctx, svc, opts)
//	if errors.Is(err, kerrors.ErrAccessDenied) {
//	    // Show user-friendly message
//	}
package errors
