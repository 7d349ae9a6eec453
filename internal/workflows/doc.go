// Package workflows provides high-level orchestration for securechain commands.
//
// Workflows sequence the primitives in internal/secrets around three external
// collaborators: a content store, a registry and a catalog. Each workflow
// handles a single command's business logic, independent of CLI concerns
// like flag parsing, spinners, and output formatting.
//
// # Services
//
// Collaborators are carried by a Services value rather than package state, so
// tests can run every workflow against in-memory backends:
//
//	svc := &workflows.Services{
//	    Store:    storage.NewMemory(),
//	    Registry: registry.NewMemory(),
//	    Catalog:  catalog.NewMemory(),
//	}
//	in, err := svc.SignIn(ctx, workflows.SignInOptions{Wallet: w})
//	up, err := svc.Upload(ctx, workflows.UploadOptions{Session: in.Session, FileName: "a.txt", Content: data})
//
// # Available Workflows
//
//   - SignIn: Derives the session keypair from a wallet signature
//   - RegisterKey: Binds the session public key in the registry
//   - Upload: Encrypts a file for its owner and publishes an upload record
//   - Download: Decrypts an upload or share record for the caller's role
//   - Share: Re-encrypts an upload for one recipient as a share record
//   - Verify: Checks a document against the registry, optionally by content
//   - List: Returns the records owned by or shared with an address
//   - Log: Reads and filters the audit trail
//
// # Lifecycle
//
// Every run gets a uuid and moves through init, keying, transforming and
// then done or failed; transitions are logged at debug level. Cancellation is
// observed between collaborator calls, never inside a cryptographic step.
// Upload and share create the catalog entry last, so a failed or canceled run
// never leaves a visible document whose blob cannot be fetched.
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package. Collaborator
// failures are wrapped in a StepError naming the step and match
// ErrCollaborator; cryptographic failures never do. Missing records and
// addresses with no bound key keep their own kinds (ErrNotFound,
// ErrPublicKeyNotBound):
//
//	_, err := svc.Download(ctx, opts)
//	if errors.Is(err, kerrors.ErrAccessDenied) {
//	    // caller is not a party to the share
//	}
//
// Nothing is retried internally.
package workflows
