package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/davisgreg1/valet-time-keeping/internal/domain"
)

func TestResolveAdminWinsOverCollidingValet(t *testing.T) {
	admins := newFakeAdminRepo()
	valets := newFakeValetRepo()
	admins.admins["u1"] = &domain.AdministratorAccount{ID: "u1", FullName: "Dana"}
	valets.put(activeValet("u1"))

	res, err := NewResolver(admins, valets).Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Kind != RoleAdmin {
		t.Fatalf("expected RoleAdmin, got %v", res.Kind)
	}
	if res.AdminKind() != DedicatedAdmin {
		t.Fatalf("expected DedicatedAdmin, got %v", res.AdminKind())
	}
	if res.Valet != nil {
		t.Fatal("admin resolution must not carry the colliding valet record")
	}
}

func TestResolvePromotedValet(t *testing.T) {
	admins := newFakeAdminRepo()
	valets := newFakeValetRepo()
	valet := activeValet("u2")
	valet.IsAdmin = true
	valets.put(valet)

	res, err := NewResolver(admins, valets).Resolve(context.Background(), "u2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Kind != RoleValet {
		t.Fatalf("expected RoleValet, got %v", res.Kind)
	}
	if !res.AdminEquivalent() {
		t.Fatal("promoted active valet should be admin-equivalent")
	}
	if res.AdminKind() != PromotedValet {
		t.Fatalf("expected PromotedValet, got %v", res.AdminKind())
	}
}

func TestResolveDeactivatedPromotionDoesNotGrantAdmin(t *testing.T) {
	admins := newFakeAdminRepo()
	valets := newFakeValetRepo()
	valet := activeValet("u3")
	valet.IsAdmin = true
	valet.IsActive = false
	valets.put(valet)

	res, err := NewResolver(admins, valets).Resolve(context.Background(), "u3")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.AdminEquivalent() {
		t.Fatal("deactivated valet must lose admin-equivalent standing")
	}
	if res.ActiveValet() {
		t.Fatal("deactivated valet must not count as active")
	}
}

func TestResolveUnknown(t *testing.T) {
	res, err := NewResolver(newFakeAdminRepo(), newFakeValetRepo()).Resolve(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Kind != RoleUnknown {
		t.Fatalf("expected RoleUnknown, got %v", res.Kind)
	}
	if res.AdminEquivalent() || res.ActiveValet() {
		t.Fatal("unknown resolution must grant nothing")
	}
}

func TestResolveStoreFailure(t *testing.T) {
	admins := newFakeAdminRepo()
	admins.err = errors.New("connection reset")

	_, err := NewResolver(admins, newFakeValetRepo()).Resolve(context.Background(), "u1")
	if !errors.Is(err, ErrLookupUnavailable) {
		t.Fatalf("expected ErrLookupUnavailable, got %v", err)
	}
}

func TestResolveValetStoreFailure(t *testing.T) {
	valets := newFakeValetRepo()
	valets.setErr(errors.New("timeout"))

	_, err := NewResolver(newFakeAdminRepo(), valets).Resolve(context.Background(), "u1")
	if !errors.Is(err, ErrLookupUnavailable) {
		t.Fatalf("expected ErrLookupUnavailable, got %v", err)
	}
}
