package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/akhil-is-watching/securechain/internal/documents"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	"github.com/akhil-is-watching/securechain/internal/kv"
	"github.com/akhil-is-watching/securechain/internal/secrets"
)

// FileRecord is the ledger entry for one uploaded or shared file.
type FileRecord struct {
	ID         string    `json:"id"`
	FileHash   string    `json:"fileHash"`
	Owner      string    `json:"owner"`
	Recipient  string    `json:"recipient,omitempty"`
	FileName   string    `json:"fileName"`
	RecordedAt time.Time `json:"recordedAt"`
}

func (r *FileRecord) validate() error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("%w: file record without id", kerrors.ErrInvalidRecord)
	}
	if _, err := secrets.ParseDigest(r.FileHash); err != nil {
		return fmt.Errorf("%w: file record %s: %v", kerrors.ErrInvalidRecord, r.ID, err)
	}
	if _, err := documents.NormalizeAddress(r.Owner); err != nil {
		return err
	}
	if r.Recipient != "" {
		if _, err := documents.NormalizeAddress(r.Recipient); err != nil {
			return err
		}
	}
	return nil
}

func (r *FileRecord) same(o *FileRecord) bool {
	return r.ID == o.ID && r.FileHash == o.FileHash &&
		documents.SameAddress(r.Owner, o.Owner) &&
		(r.Recipient == o.Recipient || documents.SameAddress(r.Recipient, o.Recipient))
}

func checkBind(address, publicKey string) (string, error) {
	addr, err := documents.NormalizeAddress(address)
	if err != nil {
		return "", err
	}
	if _, err := secrets.ParsePublicKey(publicKey); err != nil {
		return "", err
	}
	return addr, nil
}

// Memory is an in-process registry. Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	keys  map[string]string
	files map[string]*FileRecord
}

func NewMemory() *Memory {
	return &Memory{keys: make(map[string]string), files: make(map[string]*FileRecord)}
}

// BindPublicKey binds publicKey to address. Binding the same key again is a
// no-op; binding a different one fails with ErrPublicKeyExists.
func (m *Memory) BindPublicKey(ctx context.Context, address, publicKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr, err := checkBind(address, publicKey)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.keys[addr]; ok {
		if secrets.SamePublicKey(existing, publicKey) {
			return nil
		}
		return fmt.Errorf("%w: %s", kerrors.ErrPublicKeyExists, addr)
	}
	m.keys[addr] = publicKey
	return nil
}

func (m *Memory) HasPublicKey(ctx context.Context, address string) (bool, error) {
	_, err := m.PublicKey(ctx, address)
	if errors.Is(err, kerrors.ErrPublicKeyNotBound) {
		return false, nil
	}
	return err == nil, err
}

func (m *Memory) PublicKey(ctx context.Context, address string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	addr, err := documents.NormalizeAddress(address)
	if err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.keys[addr]
	if !ok {
		return "", fmt.Errorf("%w: %s", kerrors.ErrPublicKeyNotBound, addr)
	}
	return key, nil
}

// RecordFile stores the record. Re-recording an identical record is a no-op.
func (m *Memory) RecordFile(ctx context.Context, record FileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.files[record.ID]; ok {
		if existing.same(&record) {
			return nil
		}
		return fmt.Errorf("%w: file %s already recorded", kerrors.ErrInvalidRecord, record.ID)
	}
	m.files[record.ID] = &record
	return nil
}

func (m *Memory) VerifyFile(ctx context.Context, id string) (bool, error) {
	_, err := m.FileRecord(ctx, id)
	if errors.Is(err, kerrors.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *Memory) FileRecord(ctx context.Context, id string) (*FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: file %s", kerrors.ErrNotFound, id)
	}
	cp := *r
	return &cp, nil
}

// Badger is a registry persisted in a kv.Store under the "key/" and
// "file/" prefixes.
type Badger struct {
	store *kv.Store
}

func NewBadger(store *kv.Store) *Badger {
	return &Badger{store: store}
}

func (b *Badger) BindPublicKey(ctx context.Context, address, publicKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr, err := checkBind(address, publicKey)
	if err != nil {
		return err
	}

	return b.store.Update(func(txn *badger.Txn) error {
		key := kv.Key("key", addr)
		existing, err := kv.Lookup(txn, key)
		switch {
		case err == nil:
			if secrets.SamePublicKey(string(existing), publicKey) {
				return nil
			}
			return fmt.Errorf("%w: %s", kerrors.ErrPublicKeyExists, addr)
		case !errors.Is(err, kerrors.ErrNotFound):
			return errors.Wrap(err, "read bound key")
		}
		return errors.Wrap(txn.Set(key, []byte(publicKey)), "bind key")
	})
}

func (b *Badger) HasPublicKey(ctx context.Context, address string) (bool, error) {
	_, err := b.PublicKey(ctx, address)
	if errors.Is(err, kerrors.ErrPublicKeyNotBound) {
		return false, nil
	}
	return err == nil, err
}

func (b *Badger) PublicKey(ctx context.Context, address string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	addr, err := documents.NormalizeAddress(address)
	if err != nil {
		return "", err
	}

	v, err := b.store.Get(kv.Key("key", addr))
	if errors.Is(err, kerrors.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", kerrors.ErrPublicKeyNotBound, addr)
	}
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (b *Badger) RecordFile(ctx context.Context, record FileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.validate(); err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "encode file record")
	}

	return b.store.Update(func(txn *badger.Txn) error {
		key := kv.Key("file", record.ID)
		existing, err := kv.Lookup(txn, key)
		switch {
		case err == nil:
			var prev FileRecord
			if err := json.Unmarshal(existing, &prev); err != nil {
				return errors.Wrap(err, "decode file record")
			}
			if prev.same(&record) {
				return nil
			}
			return fmt.Errorf("%w: file %s already recorded", kerrors.ErrInvalidRecord, record.ID)
		case !errors.Is(err, kerrors.ErrNotFound):
			return errors.Wrap(err, "read file record")
		}
		return errors.Wrap(txn.Set(key, data), "record file")
	})
}

func (b *Badger) VerifyFile(ctx context.Context, id string) (bool, error) {
	_, err := b.FileRecord(ctx, id)
	if errors.Is(err, kerrors.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (b *Badger) FileRecord(ctx context.Context, id string) (*FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := b.store.Get(kv.Key("file", id))
	if errors.Is(err, kerrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: file %s", kerrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var r FileRecord
	if err := json.Unmarshal(v, &r); err != nil {
		return nil, errors.Wrapf(err, "decode file record %s", id)
	}
	return &r, nil
}
