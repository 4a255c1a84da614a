package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davisgreg1/valet-time-keeping/internal/authz"
	"github.com/davisgreg1/valet-time-keeping/internal/docstore"
	"github.com/davisgreg1/valet-time-keeping/internal/domain"
	"github.com/davisgreg1/valet-time-keeping/internal/events"
	"github.com/davisgreg1/valet-time-keeping/internal/identity"
	"github.com/davisgreg1/valet-time-keeping/internal/repository"
	apperrors "github.com/davisgreg1/valet-time-keeping/pkg/util"
)

// ValetService manages valet accounts and the one-time admin bootstrap.
type ValetService struct {
	valets      repository.ValetRepository
	admins      repository.AdminRepository
	clockIns    repository.ClockInRepository
	provisioner identity.Provisioner
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// ValetDependencies encapsulates collaborator requirements.
type ValetDependencies struct {
	ValetRepo   repository.ValetRepository
	AdminRepo   repository.AdminRepository
	ClockInRepo repository.ClockInRepository
	Provisioner identity.Provisioner
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewValetService builds the service.
func NewValetService(deps ValetDependencies) *ValetService {
	return &ValetService{
		valets:      deps.ValetRepo,
		admins:      deps.AdminRepo,
		clockIns:    deps.ClockInRepo,
		provisioner: deps.Provisioner,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// NewValetInput describes an account to provision.
type NewValetInput struct {
	Email             string
	TemporaryPassword string
	FullName          string
	PhoneNumber       string
	EmployeeID        string
	Department        string
}

func requireAdmin(actor *authz.Resolution) error {
	if !actor.AdminEquivalent() {
		return apperrors.NewForbidden("admin privileges required")
	}
	return nil
}

// CreateValet provisions a credential and writes the valet document. The
// new account is visible to role resolution as soon as the write lands.
func (s *ValetService) CreateValet(ctx context.Context, actor *authz.Resolution, input NewValetInput) (*domain.ValetAccount, string, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, "", err
	}
	if input.Email == "" || input.FullName == "" {
		return nil, "", apperrors.NewValidationError("email and full name are required", nil)
	}

	password := input.TemporaryPassword
	if password == "" {
		password = GenerateTemporaryPassword()
	}

	id, err := s.provisioner.CreateAccount(ctx, identity.NewAccount{
		Email:    input.Email,
		Password: password,
		FullName: input.FullName,
	})
	if err != nil {
		return nil, "", mapProvisionError(err)
	}

	valet := &domain.ValetAccount{
		ID:          id,
		Email:       input.Email,
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
		EmployeeID:  input.EmployeeID,
		Department:  input.Department,
		IsActive:    true,
		CreatedBy:   actor.AccountID(),
	}
	if err := s.valets.Create(ctx, valet); err != nil {
		return nil, "", apperrors.MapError(err)
	}

	s.publish(ctx, events.EventValetCreated, valet.ID, actor.AccountID(), nil)
	return valet, password, nil
}

// SignUp is the self-service variant: a valet provisions their own account.
func (s *ValetService) SignUp(ctx context.Context, input NewValetInput) (*domain.ValetAccount, error) {
	if input.Email == "" || input.FullName == "" || input.TemporaryPassword == "" {
		return nil, apperrors.NewValidationError("email, password and full name are required", nil)
	}

	id, err := s.provisioner.CreateAccount(ctx, identity.NewAccount{
		Email:    input.Email,
		Password: input.TemporaryPassword,
		FullName: input.FullName,
	})
	if err != nil {
		return nil, mapProvisionError(err)
	}

	valet := &domain.ValetAccount{
		ID:       id,
		Email:    input.Email,
		FullName: input.FullName,
		IsActive: true,
	}
	if err := s.valets.Create(ctx, valet); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventValetCreated, valet.ID, "", nil)
	return valet, nil
}

// GetValet fetches a single valet record.
func (s *ValetService) GetValet(ctx context.Context, actor *authz.Resolution, valetID string) (*domain.ValetAccount, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	valet, err := s.valets.GetByID(ctx, valetID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, apperrors.NewNotFound("valet", map[string]any{"id": valetID})
		}
		return nil, apperrors.MapError(err)
	}
	return valet, nil
}

// ListValets lists valets with optional status and search filters.
func (s *ValetService) ListValets(ctx context.Context, actor *authz.Resolution, filter repository.ValetFilter) ([]domain.ValetAccount, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	valets, err := s.valets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return valets, nil
}

// WorkforceStats aggregates the admin dashboard overview: valet headcounts
// plus today's clock-in count and worked hours across all valets. Open
// shifts count up to the current time.
func (s *ValetService) WorkforceStats(ctx context.Context, actor *authz.Resolution) (*domain.WorkforceStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	valets, err := s.valets.List(ctx, repository.ValetFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	stats := &domain.WorkforceStats{TotalValets: len(valets)}
	for _, valet := range valets {
		if valet.IsActive {
			stats.ActiveValets++
		}
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	records, err := s.clockIns.Range(ctx, "", start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	byValet := make(map[string][]domain.ClockEvent)
	for _, rec := range records {
		if rec.Type == domain.ClockEventIn {
			stats.TodayClockIns++
		}
		byValet[rec.ValetID] = append(byValet[rec.ValetID], rec)
	}
	for _, run := range byValet {
		stats.HoursToday += Summarize(run, now).TotalTime
	}
	return stats, nil
}

// SetActive toggles the valet's standing and records who did it and when.
// Deactivation takes effect on live sessions within one monitor interval.
func (s *ValetService) SetActive(ctx context.Context, actor *authz.Resolution, valetID string, active bool) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	now := time.Now()
	fields := map[string]any{"isActive": active}
	if active {
		fields["activatedAt"] = now
		fields["activatedBy"] = actor.AccountID()
	} else {
		fields["deactivatedAt"] = now
		fields["deactivatedBy"] = actor.AccountID()
	}
	if err := s.updateValet(ctx, valetID, fields); err != nil {
		return err
	}

	s.publish(ctx, events.EventValetStatusChanged, valetID, actor.AccountID(),
		events.ValetStatusChangedPayload{IsActive: active})
	return nil
}

// Promote grants admin-equivalent capability via the isAdmin flag. The
// record stays in the valets collection so clock-in history is retained.
func (s *ValetService) Promote(ctx context.Context, actor *authz.Resolution, valetID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.updateValet(ctx, valetID, map[string]any{
		"isAdmin":    true,
		"promotedAt": time.Now(),
		"promotedBy": actor.AccountID(),
	}); err != nil {
		return err
	}
	s.publish(ctx, events.EventValetPromoted, valetID, actor.AccountID(), nil)
	return nil
}

// Demote reverts a promoted valet to plain valet. Only promoted valets can
// be demoted; dedicated administrators have no demotion path.
func (s *ValetService) Demote(ctx context.Context, actor *authz.Resolution, valetID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	valet, err := s.valets.GetByID(ctx, valetID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return apperrors.NewNotFound("valet", map[string]any{"id": valetID})
		}
		return apperrors.MapError(err)
	}
	if !valet.IsAdmin {
		return apperrors.NewConflict("valet is not promoted", map[string]any{"id": valetID})
	}
	if err := s.updateValet(ctx, valetID, map[string]any{
		"isAdmin":   false,
		"demotedAt": time.Now(),
		"demotedBy": actor.AccountID(),
	}); err != nil {
		return err
	}
	s.publish(ctx, events.EventValetDemoted, valetID, actor.AccountID(), nil)
	return nil
}

// DeleteValet removes the valet document. The status monitor notices the
// missing record and terminates any live session.
func (s *ValetService) DeleteValet(ctx context.Context, actor *authz.Resolution, valetID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.valets.Delete(ctx, valetID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return apperrors.NewNotFound("valet", map[string]any{"id": valetID})
		}
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.EventValetDeleted, valetID, actor.AccountID(), nil)
	return nil
}

// BootstrapInput describes the one-time dedicated administrator.
type BootstrapInput struct {
	Email      string
	Password   string
	FullName   string
	Department string
}

// BootstrapAdmin creates the dedicated administrator account. Allowed only
// while the admins collection is empty.
func (s *ValetService) BootstrapAdmin(ctx context.Context, input BootstrapInput) (*domain.AdministratorAccount, error) {
	exists, err := s.admins.Any(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if exists {
		return nil, apperrors.NewConflict("an administrator already exists", nil)
	}

	id, err := s.provisioner.CreateAccount(ctx, identity.NewAccount{
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
	})
	if err != nil {
		return nil, mapProvisionError(err)
	}

	admin := &domain.AdministratorAccount{
		ID:          id,
		Email:       input.Email,
		FullName:    input.FullName,
		Department:  input.Department,
		Permissions: domain.FullPermissions(),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("administrator bootstrapped", zap.String("admin_id", admin.ID))
	return admin, nil
}

func (s *ValetService) updateValet(ctx context.Context, valetID string, fields map[string]any) error {
	if err := s.valets.UpdateFields(ctx, valetID, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return apperrors.NewNotFound("valet", map[string]any{"id": valetID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *ValetService) publish(ctx context.Context, eventType events.EventType, valetID, actorID string, payload any) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    valetID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func mapProvisionError(err error) error {
	switch {
	case errors.Is(err, identity.ErrEmailExists):
		return apperrors.NewConflict(err.Error(), nil)
	case errors.Is(err, identity.ErrInvalidEmail), errors.Is(err, identity.ErrWeakPassword):
		return apperrors.NewValidationError(err.Error(), nil)
	default:
		return apperrors.MapError(err)
	}
}

const (
	tempPasswordChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	tempPasswordSpecial = "!@#$%"
)

// GenerateTemporaryPassword produces a short random password for an
// admin-created account. The valet is expected to reset it on first login.
func GenerateTemporaryPassword() string {
	out := make([]byte, 0, 8)
	for i := 0; i < 6; i++ {
		out = append(out, tempPasswordChars[randIndex(len(tempPasswordChars))])
	}
	for i := 0; i < 2; i++ {
		out = append(out, tempPasswordSpecial[randIndex(len(tempPasswordSpecial))])
	}
	for i := len(out) - 1; i > 0; i-- {
		j := randIndex(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func randIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
