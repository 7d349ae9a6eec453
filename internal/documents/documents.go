package documents

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	"github.com/akhil-is-watching/securechain/internal/secrets"
)

// Kind discriminates the two record variants.
type Kind string

const (
	KindUpload Kind = "upload"
	KindShare  Kind = "share"
)

// Document is a catalog record. The field names on the wire match the
// catalog backend.
type Document struct {
	ID   string `json:"id,omitempty"`
	Type Kind   `json:"type"`

	FileName  string `json:"fileName"`
	Extension string `json:"extension"`

	OwnerPublicKey     string `json:"ownerPubKey"`
	RecipientPublicKey string `json:"recipientPubKey,omitempty"`
	OwnerAddress       string `json:"ownerEthereumAddr"`
	RecipientAddress   string `json:"recipientEthereumAddr,omitempty"`

	// WrappedKey is the content key wrapped for the owner. Upload only.
	WrappedKey string `json:"encryptionKey,omitempty"`
	Locator    string `json:"encryptedFileIpfsHash"`
	FileHash   string `json:"fileHash"`

	// SourceDocument is the upload a share was made from.
	SourceDocument string `json:"sourceDocument,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Listing groups the records visible to one address.
type Listing struct {
	Owned  []*Document `json:"documentsOwned"`
	Shared []*Document `json:"documentsShared"`
}

// Role is the caller's relation to a record.
type Role int

const (
	RoleNone Role = iota
	RoleOwner
	RoleRecipient
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleRecipient:
		return "recipient"
	default:
		return "none"
	}
}

// SplitFileName returns the base name and the extension without its dot.
func SplitFileName(path string) (name, ext string) {
	name = filepath.Base(path)
	ext = strings.TrimPrefix(filepath.Ext(name), ".")
	return name, ext
}

// SameAddress compares two hex addresses case-insensitively. Malformed
// addresses never match.
func SameAddress(a, b string) bool {
	if !common.IsHexAddress(a) || !common.IsHexAddress(b) {
		return false
	}
	return common.HexToAddress(a) == common.HexToAddress(b)
}

// NormalizeAddress returns the checksummed form of a hex address.
func NormalizeAddress(addr string) (string, error) {
	if !common.IsHexAddress(addr) {
		return "", fmt.Errorf("%w: invalid address %q", kerrors.ErrInvalidRecord, addr)
	}
	return common.HexToAddress(addr).Hex(), nil
}

// Validate checks that the record is internally consistent for its kind.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil document", kerrors.ErrInvalidRecord)
	}
	if d.Locator == "" {
		return fmt.Errorf("%w: missing content locator", kerrors.ErrInvalidRecord)
	}
	if _, err := secrets.ParsePublicKey(d.OwnerPublicKey); err != nil {
		return fmt.Errorf("%w: owner public key: %v", kerrors.ErrInvalidRecord, err)
	}
	if !common.IsHexAddress(d.OwnerAddress) {
		return fmt.Errorf("%w: owner address %q", kerrors.ErrInvalidRecord, d.OwnerAddress)
	}
	if _, err := secrets.ParseDigest(d.FileHash); err != nil {
		return fmt.Errorf("%w: file hash: %v", kerrors.ErrInvalidRecord, err)
	}

	switch d.Type {
	case KindUpload:
		if d.WrappedKey == "" {
			return fmt.Errorf("%w: upload record without wrapped key", kerrors.ErrInvalidRecord)
		}
		if d.RecipientPublicKey != "" || d.RecipientAddress != "" {
			return fmt.Errorf("%w: upload record with a recipient", kerrors.ErrInvalidRecord)
		}
	case KindShare:
		if d.WrappedKey != "" {
			return fmt.Errorf("%w: share record carries a wrapped key", kerrors.ErrInvalidRecord)
		}
		if _, err := secrets.ParsePublicKey(d.RecipientPublicKey); err != nil {
			return fmt.Errorf("%w: recipient public key: %v", kerrors.ErrInvalidRecord, err)
		}
		if !common.IsHexAddress(d.RecipientAddress) {
			return fmt.Errorf("%w: recipient address %q", kerrors.ErrInvalidRecord, d.RecipientAddress)
		}
	default:
		return fmt.Errorf("%w: unknown record type %q", kerrors.ErrInvalidRecord, d.Type)
	}
	return nil
}

// RoleOf resolves the caller's role by address. For a share to oneself the
// owner role wins.
func (d *Document) RoleOf(self string) Role {
	switch {
	case SameAddress(d.OwnerAddress, self):
		return RoleOwner
	case d.Type == KindShare && SameAddress(d.RecipientAddress, self):
		return RoleRecipient
	default:
		return RoleNone
	}
}

// Counterparty returns the public key the caller combines with its own
// private key to re-derive the shared key of a share record: the owner uses
// the recipient's key, the recipient the owner's. Anyone else gets
// ErrAccessDenied.
func (d *Document) Counterparty(self string) (string, error) {
	if d.Type != KindShare {
		return "", fmt.Errorf("%w: %s record has no counterparty", kerrors.ErrInvalidRecord, d.Type)
	}
	switch d.RoleOf(self) {
	case RoleOwner:
		return d.RecipientPublicKey, nil
	case RoleRecipient:
		return d.OwnerPublicKey, nil
	default:
		return "", fmt.Errorf("%w: %s is neither owner nor recipient of %s", kerrors.ErrAccessDenied, self, d.ID)
	}
}

// Marshal encodes the record as JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// Unmarshal decodes and validates a JSON record.
func Unmarshal(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidRecord, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
