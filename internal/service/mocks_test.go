package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/davisgreg1/valet-time-keeping/internal/authz"
	"github.com/davisgreg1/valet-time-keeping/internal/docstore"
	"github.com/davisgreg1/valet-time-keeping/internal/domain"
	"github.com/davisgreg1/valet-time-keeping/internal/identity"
	"github.com/davisgreg1/valet-time-keeping/internal/repository"
)

type stubAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*domain.AdministratorAccount
	anyErr error
}

func newStubAdminRepo() *stubAdminRepo {
	return &stubAdminRepo{admins: make(map[string]*domain.AdministratorAccount)}
}

func (s *stubAdminRepo) GetByID(_ context.Context, id string) (*domain.AdministratorAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	admin, ok := s.admins[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return admin, nil
}

func (s *stubAdminRepo) Create(_ context.Context, admin *domain.AdministratorAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[admin.ID] = admin
	return nil
}

func (s *stubAdminRepo) Any(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.anyErr != nil {
		return false, s.anyErr
	}
	return len(s.admins) > 0, nil
}

type stubValetRepo struct {
	mu      sync.Mutex
	valets  map[string]*domain.ValetAccount
	updates []map[string]any
}

func newStubValetRepo() *stubValetRepo {
	return &stubValetRepo{valets: make(map[string]*domain.ValetAccount)}
}

func (s *stubValetRepo) GetByID(_ context.Context, id string) (*domain.ValetAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	valet, ok := s.valets[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	copied := *valet
	return &copied, nil
}

func (s *stubValetRepo) Create(_ context.Context, valet *domain.ValetAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valets[valet.ID] = valet
	return nil
}

func (s *stubValetRepo) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	valet, ok := s.valets[id]
	if !ok {
		return docstore.ErrNotFound
	}
	if active, ok := fields["isActive"].(bool); ok {
		valet.IsActive = active
	}
	if isAdmin, ok := fields["isAdmin"].(bool); ok {
		valet.IsAdmin = isAdmin
	}
	recorded := map[string]any{"_id": id}
	for k, v := range fields {
		recorded[k] = v
	}
	s.updates = append(s.updates, recorded)
	return nil
}

func (s *stubValetRepo) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.valets[id]; !ok {
		return docstore.ErrNotFound
	}
	delete(s.valets, id)
	return nil
}

func (s *stubValetRepo) List(_ context.Context, filter repository.ValetFilter) ([]domain.ValetAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ValetAccount, 0, len(s.valets))
	for _, valet := range s.valets {
		if filter.Active != nil && valet.IsActive != *filter.Active {
			continue
		}
		out = append(out, *valet)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *stubValetRepo) lastUpdate() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.updates) == 0 {
		return nil
	}
	return s.updates[len(s.updates)-1]
}

type stubClockInRepo struct {
	mu     sync.Mutex
	events []domain.ClockEvent
}

func (s *stubClockInRepo) Create(_ context.Context, event *domain.ClockEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

func (s *stubClockInRepo) Latest(_ context.Context, valetID string) (*domain.ClockEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].ValetID == valetID {
			copied := s.events[i]
			return &copied, nil
		}
	}
	return nil, docstore.ErrNotFound
}

func (s *stubClockInRepo) History(_ context.Context, valetID string, limit int) ([]domain.ClockEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ClockEvent, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		if s.events[i].ValetID == valetID {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

func (s *stubClockInRepo) Range(_ context.Context, valetID string, from, to time.Time) ([]domain.ClockEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ClockEvent, 0)
	for _, event := range s.events {
		if valetID != "" && event.ValetID != valetID {
			continue
		}
		if event.Timestamp.Before(from) || !event.Timestamp.Before(to) {
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

func (s *stubClockInRepo) Recent(_ context.Context, limit int) ([]domain.ClockEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ClockEvent, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

type stubProvisioner struct {
	mu       sync.Mutex
	nextID   int
	err      error
	accounts []identity.NewAccount
}

func (s *stubProvisioner) CreateAccount(_ context.Context, account identity.NewAccount) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.nextID++
	s.accounts = append(s.accounts, account)
	return fmt.Sprintf("acct-%d", s.nextID), nil
}

func adminActor() *authz.Resolution {
	return &authz.Resolution{
		Kind:  authz.RoleAdmin,
		Admin: &domain.AdministratorAccount{ID: "admin-1", FullName: "Dana"},
	}
}

func valetActor(active bool) *authz.Resolution {
	return &authz.Resolution{
		Kind:  authz.RoleValet,
		Valet: &domain.ValetAccount{ID: "valet-1", FullName: "Vic", IsActive: active},
	}
}
