package workflows

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhil-is-watching/securechain/internal/audit"
	"github.com/akhil-is-watching/securechain/internal/catalog"
	"github.com/akhil-is-watching/securechain/internal/documents"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	"github.com/akhil-is-watching/securechain/internal/registry"
	"github.com/akhil-is-watching/securechain/internal/secrets"
	"github.com/akhil-is-watching/securechain/internal/session"
	"github.com/akhil-is-watching/securechain/internal/storage"
	"github.com/akhil-is-watching/securechain/internal/wallet"
)

const (
	addrA = "0x1111111111111111111111111111111111111111"
	addrB = "0x2222222222222222222222222222222222222222"
	addrC = "0x3333333333333333333333333333333333333333"

	walletKey  = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	walletAddr = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
)

type fixture struct {
	svc      *Services
	store    *countingStore
	registry *registry.Memory
	catalog  *catalog.Memory

	mu      sync.Mutex
	entries []audit.Entry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    &countingStore{ContentStore: storage.NewMemory()},
		registry: registry.NewMemory(),
		catalog:  catalog.NewMemory(),
	}
	f.svc = &Services{
		Store:    f.store,
		Registry: f.registry,
		Catalog:  f.catalog,
		Cipher:   secrets.NewCipher(secrets.Params{Time: 1, MemoryKiB: 64, Threads: 1}),
		Now:      func() time.Time { return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) },
		Audit: func(e audit.Entry) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.entries = append(f.entries, e)
		},
	}
	return f
}

func (f *fixture) operations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ops []string
	for _, e := range f.entries {
		ops = append(ops, e.Operation)
	}
	return ops
}

func (f *fixture) signIn(t *testing.T, sig, addr string) *session.Session {
	t.Helper()
	res, err := f.svc.SignIn(context.Background(), SignInOptions{
		Wallet: wallet.Static{Addr: addr, Signature: sig},
	})
	require.NoError(t, err)
	t.Cleanup(res.Session.Close)
	return res.Session
}

func (f *fixture) register(t *testing.T, sess *session.Session) {
	t.Helper()
	_, err := f.svc.RegisterKey(context.Background(), RegisterOptions{Session: sess})
	require.NoError(t, err)
}

func (f *fixture) upload(t *testing.T, sess *session.Session, name string, content []byte) *UploadResult {
	t.Helper()
	res, err := f.svc.Upload(context.Background(), UploadOptions{Session: sess, FileName: name, Content: content})
	require.NoError(t, err)
	return res
}

type countingStore struct {
	ContentStore
	gets atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, locator string) ([]byte, error) {
	c.gets.Add(1)
	return c.ContentStore.Get(ctx, locator)
}

// tamperStore flips one byte of every blob it returns for locator.
type tamperStore struct {
	ContentStore
	locator string
	offset  int
}

func (s *tamperStore) Get(ctx context.Context, locator string) ([]byte, error) {
	data, err := s.ContentStore.Get(ctx, locator)
	if err == nil && locator == s.locator {
		data[s.offset%len(data)] ^= 0x01
	}
	return data, err
}

type failingRegistry struct {
	*registry.Memory
	err error
}

func (f failingRegistry) RecordFile(context.Context, registry.FileRecord) error {
	return f.err
}

type failingCatalog struct {
	*catalog.Memory
	err error
}

func (f failingCatalog) CreateDocument(context.Context, *documents.Document) error {
	return f.err
}

// failingStore fails every Put after the first n.
type failingStore struct {
	ContentStore
	n    int
	puts int
}

func (f *failingStore) Put(ctx context.Context, data []byte) (string, error) {
	f.puts++
	if f.puts > f.n {
		return "", errors.New("connection reset")
	}
	return f.ContentStore.Put(ctx, data)
}

// cancelingStore cancels the run's context once a blob has been stored.
type cancelingStore struct {
	ContentStore
	cancel context.CancelFunc
}

func (c *cancelingStore) Put(ctx context.Context, data []byte) (string, error) {
	locator, err := c.ContentStore.Put(ctx, data)
	c.cancel()
	return locator, err
}

func TestSignIn_StaticWalletIsDeterministic(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.SignIn(context.Background(), SignInOptions{Wallet: wallet.Static{Addr: addrA, Signature: "sig-A"}})
	require.NoError(t, err)
	second, err := f.svc.SignIn(context.Background(), SignInOptions{Wallet: wallet.Static{Addr: addrA, Signature: "sig-A"}})
	require.NoError(t, err)

	expected, err := secrets.DeriveKeyPair("sig-A")
	require.NoError(t, err)
	assert.Equal(t, expected.PublicKeyHex(), first.PublicKey)
	assert.Equal(t, first.PublicKey, second.PublicKey)
	assert.True(t, documents.SameAddress(addrA, first.Address))
}

func TestSignIn_KeyWallet(t *testing.T) {
	f := newFixture(t)
	w, err := wallet.NewKeyWallet(walletKey)
	require.NoError(t, err)

	first, err := f.svc.SignIn(context.Background(), SignInOptions{Wallet: w})
	require.NoError(t, err)
	assert.Equal(t, walletAddr, first.Address)

	second, err := f.svc.SignIn(context.Background(), SignInOptions{Wallet: w})
	require.NoError(t, err)
	assert.Equal(t, first.PublicKey, second.PublicKey)

	other, err := f.svc.SignIn(context.Background(), SignInOptions{Wallet: w, Message: "another app"})
	require.NoError(t, err)
	assert.NotEqual(t, first.PublicKey, other.PublicKey)
}

type foreignWallet struct {
	*wallet.KeyWallet
}

func (foreignWallet) Address(context.Context) (string, error) {
	return addrB, nil
}

func TestSignIn_RejectsSignatureFromAnotherAccount(t *testing.T) {
	f := newFixture(t)
	w, err := wallet.NewKeyWallet(walletKey)
	require.NoError(t, err)

	_, err = f.svc.SignIn(context.Background(), SignInOptions{Wallet: foreignWallet{w}})
	assert.ErrorIs(t, err, kerrors.ErrKeyDerivation)
}

func TestSignIn_Failures(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SignIn(context.Background(), SignInOptions{})
	assert.ErrorIs(t, err, kerrors.ErrWalletUnavailable)

	_, err = f.svc.SignIn(context.Background(), SignInOptions{Wallet: wallet.Static{Addr: "nope", Signature: "sig"}})
	assert.ErrorIs(t, err, kerrors.ErrWalletUnavailable)

	_, err = f.svc.SignIn(context.Background(), SignInOptions{Wallet: wallet.Static{Addr: addrA, Signature: ""}})
	assert.ErrorIs(t, err, kerrors.ErrKeyDerivation)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.svc.SignIn(ctx, SignInOptions{Wallet: wallet.Static{Addr: addrA, Signature: "sig-A"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUploadDownload_SameParty(t *testing.T) {
	f := newFixture(t)
	alice := f.signIn(t, "sig-A", addrA)
	content := []byte("hello secure!")
	require.Len(t, content, 13)

	up := f.upload(t, alice, "/home/alice/notes.txt", content)
	assert.Equal(t, secrets.HashContent(content).String(), up.FileHash)
	assert.Equal(t, "notes.txt", up.Document.FileName)
	assert.Equal(t, "txt", up.Document.Extension)
	assert.NotEmpty(t, up.Document.WrappedKey)
	assert.NotEqual(t, up.DocumentID, up.Locator)

	// The document id addresses the stored record.
	meta, err := f.store.Get(context.Background(), up.DocumentID)
	require.NoError(t, err)
	stored, err := documents.Unmarshal(meta)
	require.NoError(t, err)
	assert.Equal(t, up.Locator, stored.Locator)

	// The blob is not the plaintext.
	blob, err := f.store.Get(context.Background(), up.Locator)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "hello secure!")

	down, err := f.svc.Download(context.Background(), DownloadOptions{Session: alice, DocumentID: up.DocumentID})
	require.NoError(t, err)
	assert.Equal(t, content, down.Content)
	assert.Equal(t, documents.RoleOwner, down.Role)

	assert.Equal(t, []string{"upload", "download"}, f.operations())
}

func TestUpload_RegistersFile(t *testing.T) {
	f := newFixture(t)
	alice := f.signIn(t, "sig-A", addrA)
	up := f.upload(t, alice, "a.txt", []byte("data"))

	rec, err := f.registry.FileRecord(context.Background(), up.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, up.FileHash, rec.FileHash)
	assert.True(t, documents.SameAddress(addrA, rec.Owner))
	assert.Empty(t, rec.Recipient)
}

func TestUpload_EmptyFile(t *testing.T) {
	f := newFixture(t)
	alice := f.signIn(t, "sig-A", addrA)
	up := f.upload(t, alice, "empty", nil)

	down, err := f.svc.Download(context.Background(), DownloadOptions{Session: alice, DocumentID: up.DocumentID})
	require.NoError(t, err)
	assert.Empty(t, down.Content)
	assert.Equal(t, "", down.Document.Extension)
}

func TestShareDownload_TwoParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signIn(t, "sig-A", addrA)
	bob := f.signIn(t, "sig-B", addrB)
	carol := f.signIn(t, "sig-C", addrC)
	f.register(t, bob)

	content := []byte("quarterly numbers, do not forward")
	up := f.upload(t, alice, "q3.xlsx", content)

	shared, err := f.svc.Share(ctx, ShareOptions{Session: alice, DocumentID: up.DocumentID, RecipientAddress: addrB})
	require.NoError(t, err)
	assert.NotEqual(t, up.Locator, shared.Locator)
	assert.Equal(t, documents.KindShare, shared.Document.Type)
	assert.Empty(t, shared.Document.WrappedKey)
	assert.Equal(t, bob.PublicKeyHex(), shared.Document.RecipientPublicKey)
	assert.Equal(t, up.DocumentID, shared.Document.SourceDocument)
	assert.Equal(t, up.FileHash, shared.Document.FileHash)

	got, err := f.svc.Download(ctx, DownloadOptions{Session: bob, DocumentID: shared.DocumentID})
	require.NoError(t, err)
	assert.Equal(t, content, got.Content)
	assert.Equal(t, documents.RoleRecipient, got.Role)

	got, err = f.svc.Download(ctx, DownloadOptions{Session: alice, DocumentID: shared.DocumentID})
	require.NoError(t, err)
	assert.Equal(t, content, got.Content)
	assert.Equal(t, documents.RoleOwner, got.Role)

	// Carol is rejected before any blob is fetched.
	gets := f.store.gets.Load()
	_, err = f.svc.Download(ctx, DownloadOptions{Session: carol, DocumentID: shared.DocumentID})
	assert.ErrorIs(t, err, kerrors.ErrAccessDenied)
	assert.False(t, errors.Is(err, kerrors.ErrCollaborator))
	assert.Equal(t, gets, f.store.gets.Load())

	// The original upload is untouched.
	orig, err := f.svc.Download(ctx, DownloadOptions{Session: alice, DocumentID: up.DocumentID})
	require.NoError(t, err)
	assert.Equal(t, content, orig.Content)
}

func TestShare_ExplicitRecipientKey(t *testing.T) {
	f := newFixture(t)
	alice := f.signIn(t, "sig-A", addrA)
	bob := f.signIn(t, "sig-B", addrB)
	up := f.upload(t, alice, "a.txt", []byte("payload"))

	shared, err := f.svc.Share(context.Background(), ShareOptions{
		Session:            alice,
		DocumentID:         up.DocumentID,
		RecipientAddress:   addrB,
		RecipientPublicKey: bob.PublicKeyHex(),
	})
	require.NoError(t, err)

	got, err := f.svc.Download(context.Background(), DownloadOptions{Session: bob, DocumentID: shared.DocumentID})
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got.Content)
}

func TestShare_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signIn(t, "sig-A", addrA)
	bob := f.signIn(t, "sig-B", addrB)
	f.register(t, bob)
	up := f.upload(t, alice, "a.txt", []byte("payload"))

	_, err := f.svc.Share(ctx, ShareOptions{Session: bob, DocumentID: up.DocumentID, RecipientAddress: addrA, RecipientPublicKey: alice.PublicKeyHex()})
	assert.ErrorIs(t, err, kerrors.ErrAccessDenied)

	shared, err := f.svc.Share(ctx, ShareOptions{Session: alice, DocumentID: up.DocumentID, RecipientAddress: addrB})
	require.NoError(t, err)
	_, err = f.svc.Share(ctx, ShareOptions{Session: alice, DocumentID: shared.DocumentID, RecipientAddress: addrB})
	assert.ErrorIs(t, err, kerrors.ErrInvalidRecord)

	_, err = f.svc.Share(ctx, ShareOptions{Session: alice, DocumentID: up.DocumentID, RecipientAddress: addrC})
	assert.ErrorIs(t, err, kerrors.ErrPublicKeyNotBound)
	assert.NotErrorIs(t, err, kerrors.ErrCollaborator)

	_, err = f.svc.Share(ctx, ShareOptions{Session: alice, DocumentID: up.DocumentID, RecipientAddress: "bob"})
	assert.ErrorIs(t, err, kerrors.ErrInvalidRecord)

	_, err = f.svc.Share(ctx, ShareOptions{Session: alice, DocumentID: up.DocumentID, RecipientAddress: addrB, RecipientPublicKey: "04zz"})
	assert.ErrorIs(t, err, kerrors.ErrInvalidPublicKey)

	_, err = f.svc.Share(ctx, ShareOptions{Session: alice, DocumentID: "bafkreimissing", RecipientAddress: addrB})
	assert.ErrorIs(t, err, kerrors.ErrNotFound)
}

func TestDownload_TamperedBlob(t *testing.T) {
	f := newFixture(t)
	alice := f.signIn(t, "sig-A", addrA)
	up := f.upload(t, alice, "a.txt", []byte("hello secure!"))

	for _, offset := range []int{0, 20, 40, 1 << 20} {
		f.svc.Store = &tamperStore{ContentStore: f.store, locator: up.Locator, offset: offset}
		_, err := f.svc.Download(context.Background(), DownloadOptions{Session: alice, DocumentID: up.DocumentID})
		assert.ErrorIs(t, err, kerrors.ErrDecryptFailed, "offset %d", offset)
		assert.False(t, errors.Is(err, kerrors.ErrCollaborator))
	}
}

func TestDownload_UploadHeldByAnotherKey(t *testing.T) {
	f := newFixture(t)
	alice := f.signIn(t, "sig-A", addrA)
	mallory := f.signIn(t, "sig-M", addrC)
	up := f.upload(t, alice, "a.txt", []byte("secret"))

	_, err := f.svc.Download(context.Background(), DownloadOptions{Session: mallory, DocumentID: up.DocumentID})
	assert.ErrorIs(t, err, kerrors.ErrUnwrapFailed)
	assert.ErrorIs(t, err, kerrors.ErrDecryptFailed)
}

func TestDownload_NotFound(t *testing.T) {
	f := newFixture(t)
	alice := f.signIn(t, "sig-A", addrA)

	_, err := f.svc.Download(context.Background(), DownloadOptions{Session: alice, DocumentID: "bafkreimissing"})
	assert.ErrorIs(t, err, kerrors.ErrNotFound)
	assert.False(t, errors.Is(err, kerrors.ErrCollaborator))
}

func TestUpload_CollaboratorFailureLeavesNoDocument(t *testing.T) {
	boom := errors.New("boom")

	cases := map[string]func(f *fixture){
		"store content": func(f *fixture) {
			f.svc.Store = &failingStore{ContentStore: f.store, n: 0}
		},
		"store metadata": func(f *fixture) {
			f.svc.Store = &failingStore{ContentStore: f.store, n: 1}
		},
		"record file": func(f *fixture) {
			f.svc.Registry = failingRegistry{Memory: f.registry, err: boom}
		},
		"create document": func(f *fixture) {
			f.svc.Catalog = failingCatalog{Memory: f.catalog, err: boom}
		},
	}

	for step, breakIt := range cases {
		t.Run(step, func(t *testing.T) {
			f := newFixture(t)
			alice := f.signIn(t, "sig-A", addrA)
			breakIt(f)

			_, err := f.svc.Upload(context.Background(), UploadOptions{Session: alice, FileName: "a.txt", Content: []byte("x")})
			require.Error(t, err)
			assert.ErrorIs(t, err, kerrors.ErrCollaborator)

			var stepErr *kerrors.StepError
			require.True(t, errors.As(err, &stepErr))
			assert.Equal(t, step, stepErr.Step)

			listing, err := f.catalog.ListDocuments(context.Background(), addrA)
			require.NoError(t, err)
			assert.Empty(t, listing.Owned)
			assert.Empty(t, f.operations())
		})
	}
}

func TestShare_CollaboratorFailureLeavesNoDocument(t *testing.T) {
	f := newFixture(t)
	alice := f.signIn(t, "sig-A", addrA)
	bob := f.signIn(t, "sig-B", addrB)
	up := f.upload(t, alice, "a.txt", []byte("x"))

	f.svc.Catalog = failingCatalog{Memory: f.catalog, err: errors.New("503")}
	_, err := f.svc.Share(context.Background(), ShareOptions{Session: alice, DocumentID: up.DocumentID, RecipientAddress: addrB, RecipientPublicKey: bob.PublicKeyHex()})
	assert.ErrorIs(t, err, kerrors.ErrCollaborator)

	listing, err := f.catalog.ListDocuments(context.Background(), addrB)
	require.NoError(t, err)
	assert.Empty(t, listing.Shared)
}

func TestUpload_CanceledLeavesNoDocument(t *testing.T) {
	f := newFixture(t)
	alice := f.signIn(t, "sig-A", addrA)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.svc.Store = &cancelingStore{ContentStore: f.store, cancel: cancel}

	_, err := f.svc.Upload(ctx, UploadOptions{Session: alice, FileName: "a.txt", Content: []byte("x")})
	assert.ErrorIs(t, err, context.Canceled)

	listing, err := f.catalog.ListDocuments(context.Background(), addrA)
	require.NoError(t, err)
	assert.Empty(t, listing.Owned)
}

func TestWorkflows_RequireSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signIn(t, "sig-A", addrA)
	up := f.upload(t, alice, "a.txt", []byte("x"))

	closed := f.signIn(t, "sig-Z", addrC)
	closed.Close()

	for _, sess := range []*session.Session{nil, closed} {
		_, err := f.svc.Upload(ctx, UploadOptions{Session: sess, FileName: "a.txt"})
		assert.ErrorIs(t, err, kerrors.ErrNoSession)

		_, err = f.svc.Download(ctx, DownloadOptions{Session: sess, DocumentID: up.DocumentID})
		assert.ErrorIs(t, err, kerrors.ErrNoSession)

		_, err = f.svc.Share(ctx, ShareOptions{Session: sess, DocumentID: up.DocumentID, RecipientAddress: addrB})
		assert.ErrorIs(t, err, kerrors.ErrNoSession)

		_, err = f.svc.RegisterKey(ctx, RegisterOptions{Session: sess})
		assert.ErrorIs(t, err, kerrors.ErrNoSession)
	}
}

func TestRegisterKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signIn(t, "sig-A", addrA)

	res, err := f.svc.RegisterKey(ctx, RegisterOptions{Session: alice})
	require.NoError(t, err)
	assert.True(t, res.Bound)

	res, err = f.svc.RegisterKey(ctx, RegisterOptions{Session: alice})
	require.NoError(t, err)
	assert.False(t, res.Bound)

	pub, err := f.svc.LookupPublicKey(ctx, addrA)
	require.NoError(t, err)
	assert.Equal(t, alice.PublicKeyHex(), pub)

	// Same address, different login signature.
	other := f.signIn(t, "sig-A2", addrA)
	_, err = f.svc.RegisterKey(ctx, RegisterOptions{Session: other})
	assert.ErrorIs(t, err, kerrors.ErrPublicKeyExists)

	_, err = f.svc.LookupPublicKey(ctx, addrB)
	assert.ErrorIs(t, err, kerrors.ErrPublicKeyNotBound)
	assert.NotErrorIs(t, err, kerrors.ErrCollaborator)

	assert.Equal(t, []string{"register"}, f.operations())
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signIn(t, "sig-A", addrA)
	content := []byte("hello secure!")
	up := f.upload(t, alice, "a.txt", content)

	res, err := f.svc.Verify(ctx, VerifyOptions{DocumentID: up.DocumentID})
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.False(t, res.ContentChecked)
	assert.Equal(t, up.FileHash, res.Digest)
	assert.Equal(t, "a.txt", res.FileName)

	res, err = f.svc.Verify(ctx, VerifyOptions{DocumentID: up.DocumentID, Content: content})
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.True(t, res.ContentChecked)

	res, err = f.svc.Verify(ctx, VerifyOptions{DocumentID: up.DocumentID, Session: alice})
	require.NoError(t, err)
	assert.True(t, res.ContentChecked)

	res, err = f.svc.Verify(ctx, VerifyOptions{DocumentID: up.DocumentID, Content: []byte("hello secure?")})
	assert.ErrorIs(t, err, kerrors.ErrIntegrityMismatch)
	require.NotNil(t, res)
	assert.False(t, res.Verified)

	res, err = f.svc.Verify(ctx, VerifyOptions{DocumentID: "bafkreiunknown"})
	require.NoError(t, err)
	assert.False(t, res.Verified)
}

func TestVerify_EmptyUploadThroughSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signIn(t, "sig-A", addrA)
	up := f.upload(t, alice, "empty.txt", []byte{})

	res, err := f.svc.Verify(ctx, VerifyOptions{DocumentID: up.DocumentID, Session: alice})
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.True(t, res.ContentChecked)
	assert.True(t, secrets.HashContent(nil).Matches(res.Digest))
}

func TestVerify_SharedCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signIn(t, "sig-A", addrA)
	bob := f.signIn(t, "sig-B", addrB)
	up := f.upload(t, alice, "a.txt", []byte("x"))

	shared, err := f.svc.Share(ctx, ShareOptions{Session: alice, DocumentID: up.DocumentID, RecipientAddress: addrB, RecipientPublicKey: bob.PublicKeyHex()})
	require.NoError(t, err)

	res, err := f.svc.Verify(ctx, VerifyOptions{DocumentID: shared.DocumentID, Session: bob})
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.True(t, documents.SameAddress(addrB, res.Recipient))
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signIn(t, "sig-A", addrA)
	bob := f.signIn(t, "sig-B", addrB)
	up := f.upload(t, alice, "a.txt", []byte("x"))
	f.upload(t, bob, "b.txt", []byte("y"))

	_, err := f.svc.Share(ctx, ShareOptions{Session: alice, DocumentID: up.DocumentID, RecipientAddress: addrB, RecipientPublicKey: bob.PublicKeyHex()})
	require.NoError(t, err)

	listing, err := f.svc.List(ctx, ListOptions{Address: addrA})
	require.NoError(t, err)
	assert.Len(t, listing.Owned, 2)
	assert.Empty(t, listing.Shared)

	listing, err = f.svc.List(ctx, ListOptions{Address: addrB})
	require.NoError(t, err)
	assert.Len(t, listing.Owned, 1)
	assert.Len(t, listing.Shared, 1)

	_, err = f.svc.List(ctx, ListOptions{Address: "nobody"})
	assert.ErrorIs(t, err, kerrors.ErrInvalidRecord)
}

func TestConcurrentUploads(t *testing.T) {
	f := newFixture(t)
	alice := f.signIn(t, "sig-A", addrA)

	var wg sync.WaitGroup
	ids := make([]string, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.Upload(context.Background(), UploadOptions{Session: alice, FileName: "same.txt", Content: []byte("same")})
			errs[i] = err
			if err == nil {
				ids[i] = res.DocumentID
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := range ids {
		require.NoError(t, errs[i])
		seen[ids[i]] = true
	}
	assert.Len(t, seen, len(ids))
}
