package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/davisgreg1/valet-time-keeping/internal/domain"
	"github.com/davisgreg1/valet-time-keeping/internal/events"
	"github.com/davisgreg1/valet-time-keeping/internal/identity"
	apperrors "github.com/davisgreg1/valet-time-keeping/pkg/util"
)

type valetFixture struct {
	svc         *ValetService
	valets      *stubValetRepo
	admins      *stubAdminRepo
	clockIns    *stubClockInRepo
	provisioner *stubProvisioner
}

func newValetFixture() *valetFixture {
	valets := newStubValetRepo()
	admins := newStubAdminRepo()
	clockIns := &stubClockInRepo{}
	provisioner := &stubProvisioner{}
	svc := NewValetService(ValetDependencies{
		ValetRepo:   valets,
		AdminRepo:   admins,
		ClockInRepo: clockIns,
		Provisioner: provisioner,
		Dispatcher:  events.NewInMemoryDispatcher(),
		Logger:      zap.NewNop(),
	})
	return &valetFixture{svc: svc, valets: valets, admins: admins, clockIns: clockIns, provisioner: provisioner}
}

func TestCreateValetRequiresAdmin(t *testing.T) {
	fx := newValetFixture()
	_, _, err := fx.svc.CreateValet(context.Background(), valetActor(true), NewValetInput{
		Email:    "new@example.com",
		FullName: "New Valet",
	})
	if err == nil {
		t.Fatal("plain valet must not create accounts")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN, got %s", domainErr.Code)
	}
}

func TestCreateValetGeneratesTemporaryPassword(t *testing.T) {
	fx := newValetFixture()
	valet, password, err := fx.svc.CreateValet(context.Background(), adminActor(), NewValetInput{
		Email:    "new@example.com",
		FullName: "New Valet",
	})
	if err != nil {
		t.Fatalf("CreateValet: %v", err)
	}
	if len(password) != 8 {
		t.Fatalf("expected generated 8-char password, got %q", password)
	}
	if !valet.IsActive {
		t.Fatal("new valet starts active")
	}
	if valet.CreatedBy != "admin-1" {
		t.Fatalf("expected creating admin recorded, got %q", valet.CreatedBy)
	}
	if len(fx.provisioner.accounts) != 1 {
		t.Fatalf("expected one provisioned account, got %d", len(fx.provisioner.accounts))
	}
}

func TestCreateValetMapsProvisionerFailures(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{identity.ErrEmailExists, "CONFLICT"},
		{identity.ErrInvalidEmail, "VALIDATION_FAILED"},
		{identity.ErrWeakPassword, "VALIDATION_FAILED"},
	}
	for _, tc := range cases {
		fx := newValetFixture()
		fx.provisioner.err = tc.err
		_, _, err := fx.svc.CreateValet(context.Background(), adminActor(), NewValetInput{
			Email:    "new@example.com",
			FullName: "New Valet",
		})
		if err == nil {
			t.Fatalf("expected failure for %v", tc.err)
		}
		if got := apperrors.ToDomainError(err).Code; got != tc.code {
			t.Fatalf("expected %s for %v, got %s", tc.code, tc.err, got)
		}
	}
}

func TestWorkforceStatsRequiresAdmin(t *testing.T) {
	fx := newValetFixture()
	_, err := fx.svc.WorkforceStats(context.Background(), valetActor(true))
	if code := apperrors.ToDomainError(err).Code; code != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN, got %v", code)
	}
}

func TestWorkforceStatsAggregatesToday(t *testing.T) {
	fx := newValetFixture()
	ctx := context.Background()
	now := time.Now()

	fx.valets.Create(ctx, &domain.ValetAccount{ID: "v1", FullName: "Ada", IsActive: true})
	fx.valets.Create(ctx, &domain.ValetAccount{ID: "v2", FullName: "Vic", IsActive: true})
	fx.valets.Create(ctx, &domain.ValetAccount{ID: "v3", FullName: "Zoe", IsActive: false})

	// completed 6-minute shift for v1, open shift for v2, and yesterday's
	// clock-in that must fall outside today's window
	fx.clockIns.Create(ctx, &domain.ClockEvent{ID: "e1", ValetID: "v1", Type: domain.ClockEventIn, Timestamp: now.Add(-10 * time.Minute)})
	fx.clockIns.Create(ctx, &domain.ClockEvent{ID: "e2", ValetID: "v1", Type: domain.ClockEventOut, Timestamp: now.Add(-4 * time.Minute)})
	fx.clockIns.Create(ctx, &domain.ClockEvent{ID: "e3", ValetID: "v2", Type: domain.ClockEventIn, Timestamp: now.Add(-2 * time.Minute)})
	fx.clockIns.Create(ctx, &domain.ClockEvent{ID: "e4", ValetID: "v1", Type: domain.ClockEventIn, Timestamp: now.AddDate(0, 0, -1)})

	stats, err := fx.svc.WorkforceStats(ctx, adminActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalValets != 3 || stats.ActiveValets != 2 {
		t.Fatalf("expected 3 valets with 2 active, got %d/%d", stats.TotalValets, stats.ActiveValets)
	}
	if stats.TodayClockIns != 2 {
		t.Fatalf("expected 2 clock-ins today, got %d", stats.TodayClockIns)
	}
	if stats.HoursToday < 8*time.Minute || stats.HoursToday > 9*time.Minute {
		t.Fatalf("expected roughly 8 worked minutes, got %v", stats.HoursToday)
	}
}

func TestSetActiveRecordsAuditFields(t *testing.T) {
	fx := newValetFixture()
	fx.valets.valets["v1"] = &domain.ValetAccount{ID: "v1", IsActive: true}

	if err := fx.svc.SetActive(context.Background(), adminActor(), "v1", false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	update := fx.valets.lastUpdate()
	if active, ok := update["isActive"].(bool); !ok || active {
		t.Fatal("expected isActive=false in update")
	}
	if update["deactivatedBy"] != "admin-1" {
		t.Fatalf("expected deactivating admin recorded, got %v", update["deactivatedBy"])
	}
	if _, ok := update["deactivatedAt"]; !ok {
		t.Fatal("expected deactivation timestamp")
	}
	if _, ok := update["activatedAt"]; ok {
		t.Fatal("deactivation must not stamp activation fields")
	}
}

func TestSetActiveReactivationAudit(t *testing.T) {
	fx := newValetFixture()
	fx.valets.valets["v1"] = &domain.ValetAccount{ID: "v1", IsActive: false}

	if err := fx.svc.SetActive(context.Background(), adminActor(), "v1", true); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	update := fx.valets.lastUpdate()
	if update["activatedBy"] != "admin-1" {
		t.Fatalf("expected activating admin recorded, got %v", update["activatedBy"])
	}
}

func TestSetActiveMissingValet(t *testing.T) {
	fx := newValetFixture()
	err := fx.svc.SetActive(context.Background(), adminActor(), "ghost", false)
	if got := apperrors.ToDomainError(err).Code; got != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", got)
	}
}

func TestPromoteSetsAdminFlag(t *testing.T) {
	fx := newValetFixture()
	fx.valets.valets["v1"] = &domain.ValetAccount{ID: "v1", IsActive: true}

	if err := fx.svc.Promote(context.Background(), adminActor(), "v1"); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if !fx.valets.valets["v1"].IsAdmin {
		t.Fatal("promotion should set isAdmin")
	}
	update := fx.valets.lastUpdate()
	if update["promotedBy"] != "admin-1" {
		t.Fatalf("expected promoting admin recorded, got %v", update["promotedBy"])
	}
}

func TestDemoteOnlyAppliesToPromotedValets(t *testing.T) {
	fx := newValetFixture()
	fx.valets.valets["v1"] = &domain.ValetAccount{ID: "v1", IsActive: true}

	err := fx.svc.Demote(context.Background(), adminActor(), "v1")
	if got := apperrors.ToDomainError(err).Code; got != "CONFLICT" {
		t.Fatalf("expected CONFLICT for unpromoted valet, got %s", got)
	}

	fx.valets.valets["v1"].IsAdmin = true
	if err := fx.svc.Demote(context.Background(), adminActor(), "v1"); err != nil {
		t.Fatalf("Demote: %v", err)
	}
	if fx.valets.valets["v1"].IsAdmin {
		t.Fatal("demotion should clear isAdmin")
	}
}

func TestBootstrapAdminRunsOnce(t *testing.T) {
	fx := newValetFixture()
	input := BootstrapInput{Email: "boss@example.com", Password: "secret!1", FullName: "Boss"}

	admin, err := fx.svc.BootstrapAdmin(context.Background(), input)
	if err != nil {
		t.Fatalf("BootstrapAdmin: %v", err)
	}
	if !admin.Permissions.ManageValets || !admin.Permissions.ExportData {
		t.Fatal("bootstrapped admin should carry full permissions")
	}

	_, err = fx.svc.BootstrapAdmin(context.Background(), input)
	if got := apperrors.ToDomainError(err).Code; got != "CONFLICT" {
		t.Fatalf("second bootstrap must conflict, got %s", got)
	}
}

func TestSignUpRequiresCompleteInput(t *testing.T) {
	fx := newValetFixture()
	_, err := fx.svc.SignUp(context.Background(), NewValetInput{Email: "x@example.com"})
	if got := apperrors.ToDomainError(err).Code; got != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", got)
	}
}

func TestGenerateTemporaryPassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		password := GenerateTemporaryPassword()
		if len(password) != 8 {
			t.Fatalf("expected 8 chars, got %q", password)
		}
		if !strings.ContainsAny(password, tempPasswordSpecial) {
			t.Fatalf("expected a special character in %q", password)
		}
		seen[password] = true
	}
	if len(seen) < 2 {
		t.Fatal("passwords should not repeat constantly")
	}
}
