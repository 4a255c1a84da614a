package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/davisgreg1/valet-time-keeping/internal/docstore"
	"github.com/davisgreg1/valet-time-keeping/internal/repository"
)

// Resolver determines which account, if any, backs a credential-store
// identity.
type Resolver struct {
	admins repository.AdminRepository
	valets repository.ValetRepository
}

// NewResolver constructs a resolver over the two account collections.
func NewResolver(admins repository.AdminRepository, valets repository.ValetRepository) *Resolver {
	return &Resolver{admins: admins, valets: valets}
}

// Resolve looks the identifier up in the admins collection first, then in
// valets. The order is a security invariant: a dedicated administrator must
// never be shadowed by a stale or colliding valet record. A store failure
// resolves to Unknown wrapped in ErrLookupUnavailable.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*Resolution, error) {
	admin, err := r.admins.GetByID(ctx, userID)
	if err == nil {
		return &Resolution{Kind: RoleAdmin, Admin: admin}, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: admins lookup: %v", ErrLookupUnavailable, err)
	}

	valet, err := r.valets.GetByID(ctx, userID)
	if err == nil {
		return &Resolution{Kind: RoleValet, Valet: valet}, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: valets lookup: %v", ErrLookupUnavailable, err)
	}

	return &Resolution{Kind: RoleUnknown}, nil
}
