package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/akhil-is-watching/securechain/internal/documents"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	"github.com/akhil-is-watching/securechain/internal/kv"
)

func checkCreate(doc *documents.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if doc.ID == "" {
		return fmt.Errorf("%w: document without id", kerrors.ErrInvalidRecord)
	}
	return nil
}

func sameDocument(a, b *documents.Document) bool {
	return a.ID == b.ID && a.Type == b.Type && a.Locator == b.Locator && a.FileHash == b.FileHash
}

func sortListing(l *documents.Listing) {
	for _, docs := range [][]*documents.Document{l.Owned, l.Shared} {
		sort.SliceStable(docs, func(i, j int) bool {
			if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
				return docs[i].CreatedAt.Before(docs[j].CreatedAt)
			}
			return docs[i].ID < docs[j].ID
		})
	}
}

// Memory is an in-process catalog. Safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]*documents.Document
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]*documents.Document)}
}

// CreateDocument stores doc under doc.ID. Creating an identical record again
// is a no-op; a different record under the same id is rejected.
func (m *Memory) CreateDocument(ctx context.Context, doc *documents.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkCreate(doc); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.docs[doc.ID]; ok {
		if sameDocument(existing, doc) {
			return nil
		}
		return fmt.Errorf("%w: document %s already exists", kerrors.ErrInvalidRecord, doc.ID)
	}
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *Memory) GetDocument(ctx context.Context, id string) (*documents.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", kerrors.ErrNotFound, id)
	}
	cp := *doc
	return &cp, nil
}

// ListDocuments returns the records owned by address and the shares
// addressed to it.
func (m *Memory) ListDocuments(ctx context.Context, address string) (*documents.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := documents.NormalizeAddress(address); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	listing := &documents.Listing{Owned: []*documents.Document{}, Shared: []*documents.Document{}}
	for _, doc := range m.docs {
		cp := *doc
		switch doc.RoleOf(address) {
		case documents.RoleOwner:
			listing.Owned = append(listing.Owned, &cp)
		case documents.RoleRecipient:
			listing.Shared = append(listing.Shared, &cp)
		}
	}
	sortListing(listing)
	return listing, nil
}

// Badger persists the catalog in a kv.Store. Each document is stored once
// under "doc/<id>" with index rows under "owner/<addr>/<id>" and
// "recipient/<addr>/<id>".
type Badger struct {
	store *kv.Store
}

func NewBadger(store *kv.Store) *Badger {
	return &Badger{store: store}
}

func (b *Badger) CreateDocument(ctx context.Context, doc *documents.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkCreate(doc); err != nil {
		return err
	}
	owner, err := documents.NormalizeAddress(doc.OwnerAddress)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode document")
	}

	return b.store.Update(func(txn *badger.Txn) error {
		key := kv.Key("doc", doc.ID)
		existing, err := kv.Lookup(txn, key)
		switch {
		case err == nil:
			var prev documents.Document
			if err := json.Unmarshal(existing, &prev); err != nil {
				return errors.Wrap(err, "decode document")
			}
			if sameDocument(&prev, doc) {
				return nil
			}
			return fmt.Errorf("%w: document %s already exists", kerrors.ErrInvalidRecord, doc.ID)
		case !errors.Is(err, kerrors.ErrNotFound):
			return errors.Wrap(err, "read document")
		}

		if err := txn.Set(key, data); err != nil {
			return errors.Wrap(err, "write document")
		}
		if err := txn.Set(kv.Key("owner", owner, doc.ID), nil); err != nil {
			return errors.Wrap(err, "index owner")
		}
		if doc.Type == documents.KindShare {
			recipient, err := documents.NormalizeAddress(doc.RecipientAddress)
			if err != nil {
				return err
			}
			if err := txn.Set(kv.Key("recipient", recipient, doc.ID), nil); err != nil {
				return errors.Wrap(err, "index recipient")
			}
		}
		return nil
	})
}

func (b *Badger) GetDocument(ctx context.Context, id string) (*documents.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := b.store.Get(kv.Key("doc", id))
	if errors.Is(err, kerrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: document %s", kerrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return documents.Unmarshal(data)
}

func (b *Badger) ListDocuments(ctx context.Context, address string) (*documents.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr, err := documents.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	owned, err := b.collect(ctx, kv.Key("owner", addr, ""))
	if err != nil {
		return nil, err
	}
	shared, err := b.collect(ctx, kv.Key("recipient", addr, ""))
	if err != nil {
		return nil, err
	}

	listing := &documents.Listing{Owned: owned, Shared: shared}
	sortListing(listing)
	return listing, nil
}

func (b *Badger) collect(ctx context.Context, prefix []byte) ([]*documents.Document, error) {
	rows, err := b.store.Scan(prefix)
	if err != nil {
		return nil, err
	}
	docs := make([]*documents.Document, 0, len(rows))
	for _, row := range rows {
		id := string(row.Key[len(prefix):])
		doc, err := b.GetDocument(ctx, id)
		if err != nil {
			return nil, errors.Wrapf(err, "index row %s", row.Key)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
