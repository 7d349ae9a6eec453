package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"

	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
)

// prefix produces CIDv1 raw-codec sha2-256 locators, the form an IPFS node
// returns for a single raw block.
var prefix = cid.Prefix{
	Version:  1,
	Codec:    cid.Raw,
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

// Locate computes the content locator of data.
func Locate(data []byte) (string, error) {
	c, err := prefix.Sum(data)
	if err != nil {
		return "", errors.Wrap(err, "compute cid")
	}
	return c.String(), nil
}

func parseLocator(locator string) (cid.Cid, error) {
	c, err := cid.Decode(locator)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: malformed locator %q", kerrors.ErrNotFound, locator)
	}
	return c, nil
}

// Memory is a content store held in a map. Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	locator, err := Locate(data)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[locator] = append([]byte(nil), data...)
	return locator, nil
}

func (m *Memory) Get(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[locator]
	if !ok {
		return nil, fmt.Errorf("%w: blob %s", kerrors.ErrNotFound, locator)
	}
	return append([]byte(nil), data...), nil
}

// Len reports the number of stored blobs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// Filesystem stores each blob as a file named by its CID under Root.
type Filesystem struct {
	Root string
}

func NewFilesystem(root string) (*Filesystem, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, errors.Wrapf(err, "create blob directory %s", root)
	}
	return &Filesystem{Root: root}, nil
}

func (f *Filesystem) path(c cid.Cid) string {
	name := c.String()
	return filepath.Join(f.Root, name[len(name)-2:], name)
}

// Put writes data atomically. Storing the same bytes twice is a no-op.
func (f *Filesystem) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c, err := prefix.Sum(data)
	if err != nil {
		return "", errors.Wrap(err, "compute cid")
	}

	dest := f.path(c)
	if _, err := os.Stat(dest); err == nil {
		return c.String(), nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
		return "", errors.Wrap(err, "create shard directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".put-*")
	if err != nil {
		return "", errors.Wrap(err, "create temp blob")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "write temp blob")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "sync temp blob")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "close temp blob")
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", errors.Wrap(err, "commit blob")
	}
	return c.String(), nil
}

// Get reads a blob back. The bytes are returned as stored; authenticity is
// left to the cipher.
func (f *Filesystem) Get(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := parseLocator(locator)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path(c))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: blob %s", kerrors.ErrNotFound, locator)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read blob %s", locator)
	}
	return data, nil
}
