package workflows

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/akhil-is-watching/securechain/internal/audit"
	"github.com/akhil-is-watching/securechain/internal/documents"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	logger "github.com/akhil-is-watching/securechain/internal/logging"
	"github.com/akhil-is-watching/securechain/internal/registry"
	"github.com/akhil-is-watching/securechain/internal/secrets"
	"github.com/akhil-is-watching/securechain/internal/session"
)

// ContentStore keeps opaque bytes under content locators.
type ContentStore interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, locator string) ([]byte, error)
}

// Registry is the ledger binding addresses to public keys and recording
// which files exist.
type Registry interface {
	BindPublicKey(ctx context.Context, address, publicKey string) error
	HasPublicKey(ctx context.Context, address string) (bool, error)
	PublicKey(ctx context.Context, address string) (string, error)
	RecordFile(ctx context.Context, record registry.FileRecord) error
	VerifyFile(ctx context.Context, id string) (bool, error)
	FileRecord(ctx context.Context, id string) (*registry.FileRecord, error)
}

// Catalog persists document records.
type Catalog interface {
	CreateDocument(ctx context.Context, doc *documents.Document) error
	GetDocument(ctx context.Context, id string) (*documents.Document, error)
	ListDocuments(ctx context.Context, address string) (*documents.Listing, error)
}

// Wallet answers address and personal_sign requests.
type Wallet interface {
	Address(ctx context.Context) (string, error)
	Sign(ctx context.Context, message string) (string, error)
}

// Services bundles the collaborators every workflow runs against. Independent
// workflow runs may share one Services value.
type Services struct {
	Store    ContentStore
	Registry Registry
	Catalog  Catalog

	// Cipher seals content and wrapped keys. Defaults to secrets.DefaultParams.
	Cipher *secrets.Cipher

	// Rand supplies content keys and ephemeral wrap keys. Defaults to crypto/rand.
	Rand io.Reader

	Logger logger.Logger

	// Now stamps records. Defaults to time.Now.
	Now func() time.Time

	// Audit receives one entry per completed workflow. Nil disables auditing.
	Audit func(audit.Entry)
}

func (s *Services) cipher() *secrets.Cipher {
	if s.Cipher != nil {
		return s.Cipher
	}
	return secrets.NewCipher(secrets.DefaultParams)
}

func (s *Services) wrapper() *secrets.KeyWrapper {
	w := secrets.NewKeyWrapper(s.cipher())
	w.Rand = s.Rand
	return w
}

func (s *Services) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Stage is the lifecycle position of one workflow run.
type Stage string

const (
	StageInit         Stage = "init"
	StageKeying       Stage = "keying"
	StageTransforming Stage = "transforming"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// run tracks one workflow instance.
type run struct {
	id    string
	op    string
	stage Stage
	log   logger.Logger
}

func (s *Services) begin(op string) *run {
	r := &run{id: uuid.NewString(), op: op, stage: StageInit, log: s.Logger}
	r.log.Debugf("%s %s: %s", r.op, r.id, r.stage)
	return r
}

func (r *run) enter(stage Stage) {
	r.stage = stage
	r.log.Debugf("%s %s: %s", r.op, r.id, stage)
}

// checkpoint is called at every suspension point. A canceled run stops there.
func (r *run) checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return r.fail(err)
	}
	return nil
}

func (r *run) fail(err error) error {
	r.stage = StageFailed
	r.log.Debugf("%s %s: failed: %v", r.op, r.id, err)
	return err
}

func (r *run) done() {
	r.enter(StageDone)
}

func (s *Services) record(r *run, entry audit.Entry) {
	if s.Audit == nil {
		return
	}
	entry.Operation = r.op
	entry.RunID = r.id
	s.Audit(entry)
}

// sessionKeys returns the session address and a private copy of its
// keypair, or ErrNoSession. Callers zero the copy when done.
func sessionKeys(sess *session.Session) (string, *secrets.KeyPair, error) {
	keys, err := sess.Keys()
	if err != nil {
		return "", nil, err
	}
	return sess.Address(), keys, nil
}

// open resolves the content key for the caller's role on doc, fetches the
// blob and decrypts it. Role checks happen before any cryptography.
func (s *Services) open(ctx context.Context, r *run, address string, keys *secrets.KeyPair, doc *documents.Document) ([]byte, documents.Role, error) {
	r.enter(StageKeying)
	role := doc.RoleOf(address)

	var key []byte
	switch doc.Type {
	case documents.KindUpload:
		wrapped, err := secrets.DecodeWrappedKey(doc.WrappedKey)
		if err != nil {
			return nil, role, r.fail(err)
		}
		key, err = s.wrapper().Unwrap(keys, wrapped)
		if err != nil {
			return nil, role, r.fail(err)
		}
	case documents.KindShare:
		theirs, err := doc.Counterparty(address)
		if err != nil {
			return nil, role, r.fail(err)
		}
		pub, err := secrets.ParsePublicKey(theirs)
		if err != nil {
			return nil, role, r.fail(err)
		}
		key, err = secrets.DeriveSharedKey(keys, pub)
		if err != nil {
			return nil, role, r.fail(err)
		}
	default:
		return nil, role, r.fail(doc.Validate())
	}
	defer secrets.Zero(key)

	if err := r.checkpoint(ctx); err != nil {
		return nil, role, err
	}
	blob, err := s.Store.Get(ctx, doc.Locator)
	if err != nil {
		return nil, role, r.fail(kerrors.Step("fetch content", err))
	}

	r.enter(StageTransforming)
	plaintext, err := s.cipher().Decrypt(key, blob)
	if err != nil {
		return nil, role, r.fail(err)
	}
	return plaintext, role, nil
}

// publish stores the encrypted blob and the record, registers the file and
// finally creates the catalog entry. The catalog is written last so a failure
// at any earlier step leaves no visible document.
func (s *Services) publish(ctx context.Context, r *run, blob []byte, doc *documents.Document) error {
	if err := r.checkpoint(ctx); err != nil {
		return err
	}
	locator, err := s.Store.Put(ctx, blob)
	if err != nil {
		return r.fail(kerrors.Step("store content", err))
	}
	doc.Locator = locator
	if err := doc.Validate(); err != nil {
		return r.fail(err)
	}

	meta, err := doc.Marshal()
	if err != nil {
		return r.fail(err)
	}
	if err := r.checkpoint(ctx); err != nil {
		return err
	}
	id, err := s.Store.Put(ctx, meta)
	if err != nil {
		return r.fail(kerrors.Step("store metadata", err))
	}
	doc.ID = id

	if err := r.checkpoint(ctx); err != nil {
		return err
	}
	err = s.Registry.RecordFile(ctx, registry.FileRecord{
		ID:         id,
		FileHash:   doc.FileHash,
		Owner:      doc.OwnerAddress,
		Recipient:  doc.RecipientAddress,
		FileName:   doc.FileName,
		RecordedAt: doc.CreatedAt,
	})
	if err != nil {
		return r.fail(kerrors.Step("record file", err))
	}

	if err := r.checkpoint(ctx); err != nil {
		return err
	}
	if err := s.Catalog.CreateDocument(ctx, doc); err != nil {
		return r.fail(kerrors.Step("create document", err))
	}
	return nil
}
