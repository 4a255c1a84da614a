package authz

import (
	"errors"

	"github.com/davisgreg1/valet-time-keeping/internal/domain"
)

// ErrLookupUnavailable marks a role lookup that failed for infrastructure
// reasons. Callers must treat the identity as unverified, never as granted.
var ErrLookupUnavailable = errors.New("role lookup unavailable")

// RoleKind classifies a user identifier.
type RoleKind int

const (
	RoleUnknown RoleKind = iota
	RoleAdmin
	RoleValet
)

func (k RoleKind) String() string {
	switch k {
	case RoleAdmin:
		return "admin"
	case RoleValet:
		return "valet"
	default:
		return "unknown"
	}
}

// AdminKind distinguishes the two representations of "admin". Only a
// promoted valet can be demoted back to a plain valet; a dedicated admin has
// no demotion path.
type AdminKind int

const (
	AdminNone AdminKind = iota
	DedicatedAdmin
	PromotedValet
)

// Resolution is the outcome of a role lookup: the kind plus the profile
// backing it. Exactly one of Admin/Valet is set for the admin/valet kinds.
type Resolution struct {
	Kind  RoleKind
	Admin *domain.AdministratorAccount
	Valet *domain.ValetAccount
}

// AdminKind reports which admin representation applies, if any.
func (r *Resolution) AdminKind() AdminKind {
	switch {
	case r == nil:
		return AdminNone
	case r.Kind == RoleAdmin:
		return DedicatedAdmin
	case r.Kind == RoleValet && r.Valet.Promoted():
		return PromotedValet
	default:
		return AdminNone
	}
}

// AdminEquivalent reports whether the identity holds the full admin
// capability set, through either representation.
func (r *Resolution) AdminEquivalent() bool {
	return r.AdminKind() != AdminNone
}

// ActiveValet reports whether the identity is a valet in active standing.
func (r *Resolution) ActiveValet() bool {
	return r != nil && r.Kind == RoleValet && r.Valet.IsActive
}

// AccountID returns the backing account's identifier, or "" for Unknown.
func (r *Resolution) AccountID() string {
	switch {
	case r == nil:
		return ""
	case r.Kind == RoleAdmin:
		return r.Admin.ID
	case r.Kind == RoleValet:
		return r.Valet.ID
	default:
		return ""
	}
}

// DisplayName returns the profile's full name for logging and responses.
func (r *Resolution) DisplayName() string {
	switch {
	case r == nil:
		return ""
	case r.Kind == RoleAdmin:
		return r.Admin.FullName
	case r.Kind == RoleValet:
		return r.Valet.FullName
	default:
		return ""
	}
}
