package workflows

import (
	"context"
	"fmt"

	"github.com/akhil-is-watching/securechain/internal/audit"
	"github.com/akhil-is-watching/securechain/internal/documents"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	"github.com/akhil-is-watching/securechain/internal/secrets"
	"github.com/akhil-is-watching/securechain/internal/session"
)

// UploadOptions configures the upload workflow.
type UploadOptions struct {
	Session *session.Session

	// FileName is recorded in the document; only its base name is kept.
	FileName string

	// Content is the plaintext file.
	Content []byte
}

// UploadResult contains the outcome of an upload.
type UploadResult struct {
	// DocumentID is the locator of the stored record.
	DocumentID string

	// Locator addresses the encrypted blob.
	Locator string

	// FileHash is the hex SHA-256 of the plaintext.
	FileHash string

	Document *documents.Document
	RunID    string
}

// Upload encrypts a file under a fresh content key, wraps that key for the
// session's own public key, and publishes the blob and an upload record.
//
// The catalog entry is created last; if any earlier step fails or ctx is
// canceled no document becomes visible. An orphaned blob may remain.
//
// Returns ErrNoSession if the session is missing or closed.
// Returns a StepError (ErrCollaborator) naming the failed collaborator step.
func (s *Services) Upload(ctx context.Context, opts UploadOptions) (*UploadResult, error) {
	r := s.begin("upload")
	address, keys, err := sessionKeys(opts.Session)
	if err != nil {
		return nil, r.fail(err)
	}
	defer keys.Zero()
	name, ext := documents.SplitFileName(opts.FileName)
	if name == "" || name == "." || name == "/" {
		return nil, r.fail(fmt.Errorf("%w: missing file name", kerrors.ErrInvalidRecord))
	}

	r.enter(StageKeying)
	digest := secrets.HashContent(opts.Content)
	contentKey, err := secrets.CreateContentKey(s.Rand)
	if err != nil {
		return nil, r.fail(err)
	}
	defer secrets.Zero(contentKey)

	r.enter(StageTransforming)
	blob, err := s.cipher().Encrypt(contentKey, opts.Content)
	if err != nil {
		return nil, r.fail(err)
	}
	wrapped, err := s.wrapper().Wrap(keys.PublicKey(), contentKey)
	if err != nil {
		return nil, r.fail(err)
	}
	encodedKey, err := wrapped.Encode()
	if err != nil {
		return nil, r.fail(err)
	}

	now := s.now()
	doc := &documents.Document{
		Type:           documents.KindUpload,
		FileName:       name,
		Extension:      ext,
		OwnerPublicKey: keys.PublicKeyHex(),
		OwnerAddress:   address,
		WrappedKey:     encodedKey,
		FileHash:       digest.String(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.publish(ctx, r, blob, doc); err != nil {
		return nil, err
	}

	r.done()
	s.Logger.Infof("Uploaded %s as %s", doc.FileName, doc.ID)
	s.record(r, audit.Entry{
		Address:  address,
		Document: doc.ID,
		Locator:  doc.Locator,
		FileName: doc.FileName,
	})
	return &UploadResult{
		DocumentID: doc.ID,
		Locator:    doc.Locator,
		FileHash:   doc.FileHash,
		Document:   doc,
		RunID:      r.id,
	}, nil
}
