package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/akhil-is-watching/securechain/internal/audit"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	"github.com/akhil-is-watching/securechain/internal/secrets"
	"github.com/akhil-is-watching/securechain/internal/session"
)

// VerifyOptions configures the verify workflow.
type VerifyOptions struct {
	DocumentID string

	// Content, when set, is hashed and compared with the recorded digest.
	Content []byte

	// Session, when set and Content is nil, is used to download and decrypt
	// the stored copy for comparison.
	Session *session.Session
}

// VerifyResult contains the registry's answer for a document.
type VerifyResult struct {
	Verified bool

	// Digest is the recorded hex SHA-256 of the plaintext.
	Digest     string
	Owner      string
	Recipient  string
	FileName   string
	RecordedAt time.Time

	// ContentChecked reports whether plaintext was hashed and compared.
	ContentChecked bool
	RunID          string
}

// Verify asks the registry whether a document is recorded. A document that
// is not recorded yields Verified false without an error.
//
// Returns ErrIntegrityMismatch if checked content does not hash to the
// recorded digest. The result is returned alongside that error.
func (s *Services) Verify(ctx context.Context, opts VerifyOptions) (*VerifyResult, error) {
	r := s.begin("verify")
	result := &VerifyResult{RunID: r.id}

	ok, err := s.Registry.VerifyFile(ctx, opts.DocumentID)
	if err != nil {
		return nil, r.fail(kerrors.Step("verify file", err))
	}
	if !ok {
		r.done()
		return result, nil
	}

	rec, err := s.Registry.FileRecord(ctx, opts.DocumentID)
	if err != nil {
		return nil, r.fail(kerrors.Step("read file record", err))
	}
	result.Verified = true
	result.Digest = rec.FileHash
	result.Owner = rec.Owner
	result.Recipient = rec.Recipient
	result.FileName = rec.FileName
	result.RecordedAt = rec.RecordedAt

	var address string
	content := opts.Content
	checked := content != nil
	if !checked && opts.Session != nil {
		var keys *secrets.KeyPair
		address, keys, err = sessionKeys(opts.Session)
		if err != nil {
			return nil, r.fail(err)
		}
		defer keys.Zero()
		doc, err := s.Catalog.GetDocument(ctx, opts.DocumentID)
		if err != nil {
			return nil, r.fail(kerrors.Step("get document", err))
		}
		content, _, err = s.open(ctx, r, address, keys, doc)
		if err != nil {
			return nil, err
		}
		// An empty upload opens to nil content.
		checked = true
	}

	if checked {
		result.ContentChecked = true
		if !secrets.HashContent(content).Matches(rec.FileHash) {
			result.Verified = false
			return result, r.fail(fmt.Errorf("%w: %s", kerrors.ErrIntegrityMismatch, opts.DocumentID))
		}
	}

	r.done()
	verified := result.Verified
	s.record(r, audit.Entry{Address: address, Document: opts.DocumentID, Verified: &verified})
	return result, nil
}
