package workflows

import (
	"context"

	"github.com/akhil-is-watching/securechain/internal/audit"
	"github.com/akhil-is-watching/securechain/internal/documents"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	"github.com/akhil-is-watching/securechain/internal/session"
)

// DownloadOptions configures the download workflow.
type DownloadOptions struct {
	Session    *session.Session
	DocumentID string
}

// DownloadResult contains the decrypted file.
type DownloadResult struct {
	Content  []byte
	Document *documents.Document

	// Role is the caller's relation to the record.
	Role  documents.Role
	RunID string
}

// Download fetches a record and decrypts its blob with the key implied by
// the record kind and the caller's role. Upload records are opened by
// unwrapping the content key with the session private key. Share records are
// opened with the key shared between owner and recipient.
//
// Returns ErrNoSession if the session is missing or closed.
// Returns ErrNotFound if the record or its blob does not exist.
// Returns ErrAccessDenied if the caller is not a party to a share record.
// Returns ErrDecryptFailed (ErrUnwrapFailed for upload records held by
// another key) if the content cannot be decrypted.
func (s *Services) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error) {
	r := s.begin("download")
	address, keys, err := sessionKeys(opts.Session)
	if err != nil {
		return nil, r.fail(err)
	}
	defer keys.Zero()

	doc, err := s.Catalog.GetDocument(ctx, opts.DocumentID)
	if err != nil {
		return nil, r.fail(kerrors.Step("get document", err))
	}

	content, role, err := s.open(ctx, r, address, keys, doc)
	if err != nil {
		return nil, err
	}

	r.done()
	s.Logger.Debugf("Downloaded %s as %s", doc.ID, role)
	s.record(r, audit.Entry{Address: address, Document: doc.ID, Locator: doc.Locator})
	return &DownloadResult{Content: content, Document: doc, Role: role, RunID: r.id}, nil
}
