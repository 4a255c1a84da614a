package authz

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/davisgreg1/valet-time-keeping/internal/docstore"
	"github.com/davisgreg1/valet-time-keeping/internal/domain"
	"github.com/davisgreg1/valet-time-keeping/internal/events"
	"github.com/davisgreg1/valet-time-keeping/internal/identity"
	"github.com/davisgreg1/valet-time-keeping/internal/observability"
	"github.com/davisgreg1/valet-time-keeping/internal/repository"
)

type fakeAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*domain.AdministratorAccount
	err    error
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]*domain.AdministratorAccount)}
}

func (f *fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.AdministratorAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	admin, ok := f.admins[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return admin, nil
}

func (f *fakeAdminRepo) Create(_ context.Context, admin *domain.AdministratorAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admins[admin.ID] = admin
	return nil
}

func (f *fakeAdminRepo) Any(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return len(f.admins) > 0, nil
}

type fakeValetRepo struct {
	mu        sync.Mutex
	valets    map[string]*domain.ValetAccount
	err       error
	updateErr error
	updates   []map[string]any
}

func newFakeValetRepo() *fakeValetRepo {
	return &fakeValetRepo{valets: make(map[string]*domain.ValetAccount)}
}

func (f *fakeValetRepo) put(valet *domain.ValetAccount) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.valets[valet.ID] = valet
}

func (f *fakeValetRepo) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeValetRepo) setActive(id string, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if valet, ok := f.valets[id]; ok {
		copied := *valet
		copied.IsActive = active
		f.valets[id] = &copied
	}
}

func (f *fakeValetRepo) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.valets, id)
}

func (f *fakeValetRepo) GetByID(_ context.Context, id string) (*domain.ValetAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	valet, ok := f.valets[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	copied := *valet
	return &copied, nil
}

func (f *fakeValetRepo) Create(_ context.Context, valet *domain.ValetAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.valets[valet.ID] = valet
	return nil
}

func (f *fakeValetRepo) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.valets[id]; !ok {
		return docstore.ErrNotFound
	}
	recorded := map[string]any{"_id": id}
	for k, v := range fields {
		recorded[k] = v
	}
	f.updates = append(f.updates, recorded)
	return nil
}

func (f *fakeValetRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.valets[id]; !ok {
		return docstore.ErrNotFound
	}
	delete(f.valets, id)
	return nil
}

func (f *fakeValetRepo) List(_ context.Context, _ repository.ValetFilter) ([]domain.ValetAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ValetAccount, 0, len(f.valets))
	for _, valet := range f.valets {
		out = append(out, *valet)
	}
	return out, nil
}

func (f *fakeValetRepo) updatedFields() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, len(f.updates))
	copy(out, f.updates)
	return out
}

type fakeCredentialStore struct {
	mu          sync.Mutex
	identity    *identity.Identity
	authErr     error
	refreshErr  error
	signOutErr  error
	resetErr    error
	signOuts    []string
	signOutCtxs []error
	resets      []string
}

func (f *fakeCredentialStore) Authenticate(_ context.Context, _, _ string) (*identity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authErr != nil {
		return nil, f.authErr
	}
	copied := *f.identity
	return &copied, nil
}

func (f *fakeCredentialStore) SignOut(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts = append(f.signOuts, sessionID)
	f.signOutCtxs = append(f.signOutCtxs, ctx.Err())
	return f.signOutErr
}

func (f *fakeCredentialStore) SendPasswordReset(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, email)
	return f.resetErr
}

func (f *fakeCredentialStore) RefreshToken(_ context.Context, ident *identity.Identity, _ bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return "refreshed-" + ident.SessionID, nil
}

func (f *fakeCredentialStore) signOutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.signOuts)
}

// signOutContextErrs reports ctx.Err() as observed by each SignOut call.
func (f *fakeCredentialStore) signOutContextErrs() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]error, len(f.signOutCtxs))
	copy(out, f.signOutCtxs)
	return out
}

func testIdentity(userID string) *identity.Identity {
	return &identity.Identity{
		UserID:    userID,
		Email:     userID + "@example.com",
		SessionID: "sess-" + userID,
		Token:     "tok-" + userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func newTestTerminator(creds identity.CredentialStore) *Terminator {
	return NewTerminator(creds, events.NewInMemoryDispatcher(), observability.NewMetrics(), zap.NewNop())
}

func activeValet(id string) *domain.ValetAccount {
	return &domain.ValetAccount{
		ID:       id,
		Email:    id + "@example.com",
		FullName: "Valet " + id,
		IsActive: true,
	}
}

func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}
