package workflows

import (
	"context"

	"github.com/akhil-is-watching/securechain/internal/documents"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
)

// ListOptions configures the list workflow.
type ListOptions struct {
	Address string
}

// List returns the records owned by an address and the shares addressed to it.
func (s *Services) List(ctx context.Context, opts ListOptions) (*documents.Listing, error) {
	addr, err := documents.NormalizeAddress(opts.Address)
	if err != nil {
		return nil, err
	}
	listing, err := s.Catalog.ListDocuments(ctx, addr)
	if err != nil {
		return nil, kerrors.Step("list documents", err)
	}
	return listing, nil
}
