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

// ShareOptions configures the share workflow.
type ShareOptions struct {
	Session *session.Session

	// DocumentID is the owner's upload record.
	DocumentID string

	RecipientAddress string

	// RecipientPublicKey is the recipient's hex public key. When empty it is
	// looked up in the registry by RecipientAddress.
	RecipientPublicKey string
}

// ShareResult contains the new share record.
type ShareResult struct {
	DocumentID string
	Locator    string
	Document   *documents.Document
	RunID      string
}

// Share decrypts the owner's upload, re-encrypts it under the key shared
// between owner and recipient, and publishes the copy as a share record.
// The original upload stays valid and untouched.
//
// Returns ErrNoSession if the session is missing or closed.
// Returns ErrInvalidRecord if the source is not an upload or the recipient
// address is malformed.
// Returns ErrAccessDenied if the caller does not own the source.
// Returns ErrPublicKeyNotBound if no recipient key was given and the
// registry has none.
func (s *Services) Share(ctx context.Context, opts ShareOptions) (*ShareResult, error) {
	r := s.begin("share")
	address, keys, err := sessionKeys(opts.Session)
	if err != nil {
		return nil, r.fail(err)
	}
	defer keys.Zero()
	recipient, err := documents.NormalizeAddress(opts.RecipientAddress)
	if err != nil {
		return nil, r.fail(err)
	}

	source, err := s.Catalog.GetDocument(ctx, opts.DocumentID)
	if err != nil {
		return nil, r.fail(kerrors.Step("get document", err))
	}
	if source.Type != documents.KindUpload {
		return nil, r.fail(fmt.Errorf("%w: %s is a %s record, only uploads can be shared", kerrors.ErrInvalidRecord, source.ID, source.Type))
	}
	if source.RoleOf(address) != documents.RoleOwner {
		return nil, r.fail(fmt.Errorf("%w: %s does not own %s", kerrors.ErrAccessDenied, address, source.ID))
	}

	recipientKey := opts.RecipientPublicKey
	if recipientKey == "" {
		if err := r.checkpoint(ctx); err != nil {
			return nil, err
		}
		recipientKey, err = s.Registry.PublicKey(ctx, recipient)
		if err != nil {
			return nil, r.fail(kerrors.Step("lookup recipient key", err))
		}
	}
	recipientPub, err := secrets.ParsePublicKey(recipientKey)
	if err != nil {
		return nil, r.fail(err)
	}

	plaintext, _, err := s.open(ctx, r, address, keys, source)
	if err != nil {
		return nil, err
	}
	defer secrets.Zero(plaintext)

	r.enter(StageKeying)
	shared, err := secrets.DeriveSharedKey(keys, recipientPub)
	if err != nil {
		return nil, r.fail(err)
	}
	defer secrets.Zero(shared)

	r.enter(StageTransforming)
	blob, err := s.cipher().Encrypt(shared, plaintext)
	if err != nil {
		return nil, r.fail(err)
	}

	now := s.now()
	doc := &documents.Document{
		Type:               documents.KindShare,
		FileName:           source.FileName,
		Extension:          source.Extension,
		OwnerPublicKey:     keys.PublicKeyHex(),
		RecipientPublicKey: secrets.EncodePublicKey(recipientPub),
		OwnerAddress:       address,
		RecipientAddress:   recipient,
		FileHash:           source.FileHash,
		SourceDocument:     source.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.publish(ctx, r, blob, doc); err != nil {
		return nil, err
	}

	r.done()
	s.Logger.Infof("Shared %s with %s as %s", source.ID, recipient, doc.ID)
	s.record(r, audit.Entry{
		Address:   address,
		Document:  doc.ID,
		Locator:   doc.Locator,
		Source:    source.ID,
		Recipient: recipient,
	})
	return &ShareResult{DocumentID: doc.ID, Locator: doc.Locator, Document: doc, RunID: r.id}, nil
}
