package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/davisgreg1/valet-time-keeping/internal/docstore"
	"github.com/davisgreg1/valet-time-keeping/internal/domain"
)

// ValetFilter narrows valet listing.
type ValetFilter struct {
	Active *bool
	Search string
}

// ValetRepository defines access to the valets collection.
type ValetRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ValetAccount, error)
	Create(ctx context.Context, valet *domain.ValetAccount) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ValetFilter) ([]domain.ValetAccount, error)
}

type valetRepository struct {
	store docstore.Store
}

// NewValetRepository returns a document-store backed implementation.
func NewValetRepository(store docstore.Store) ValetRepository {
	return &valetRepository{store: store}
}

func (r *valetRepository) GetByID(ctx context.Context, id string) (*domain.ValetAccount, error) {
	doc, err := r.store.GetDocument(ctx, docstore.CollectionValets, id)
	if err != nil {
		return nil, err
	}
	return decodeValet(doc), nil
}

func (r *valetRepository) Create(ctx context.Context, valet *domain.ValetAccount) error {
	now := time.Now()
	if valet.CreatedAt.IsZero() {
		valet.CreatedAt = now
	}
	valet.UpdatedAt = now

	fields := map[string]any{
		"email":       valet.Email,
		"fullName":    valet.FullName,
		"phoneNumber": valet.PhoneNumber,
		"employeeId":  valet.EmployeeID,
		"department":  valet.Department,
		"isActive":    valet.IsActive,
		"isAdmin":     valet.IsAdmin,
		"createdAt":   encodeTime(valet.CreatedAt),
		"updatedAt":   encodeTime(valet.UpdatedAt),
	}
	if valet.CreatedBy != "" {
		fields["createdBy"] = valet.CreatedBy
		fields["createdByAdmin"] = true
	}
	return r.store.SetDocument(ctx, docstore.CollectionValets, valet.ID, fields)
}

// UpdateFields applies a partial update plus the updatedAt stamp. Callers
// pass audit fields (activatedBy, deactivatedAt, ...) alongside the change.
func (r *valetRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	patch := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		if t, ok := v.(time.Time); ok {
			v = encodeTime(t)
		}
		patch[k] = v
	}
	patch["updatedAt"] = encodeTime(time.Now())
	return r.store.UpdateDocument(ctx, docstore.CollectionValets, id, patch)
}

func (r *valetRepository) Delete(ctx context.Context, id string) error {
	return r.store.DeleteDocument(ctx, docstore.CollectionValets, id)
}

func (r *valetRepository) List(ctx context.Context, filter ValetFilter) ([]domain.ValetAccount, error) {
	docs, err := r.store.QueryCollection(ctx, docstore.CollectionValets, nil, nil, 0)
	if err != nil {
		return nil, err
	}

	valets := make([]domain.ValetAccount, 0, len(docs))
	for _, doc := range docs {
		valet := decodeValet(&doc)
		if filter.Active != nil && valet.IsActive != *filter.Active {
			continue
		}
		if filter.Search != "" && !matchesSearch(valet, filter.Search) {
			continue
		}
		valets = append(valets, *valet)
	}

	sort.Slice(valets, func(i, j int) bool {
		return valets[i].FullName < valets[j].FullName
	})
	return valets, nil
}

func matchesSearch(valet *domain.ValetAccount, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(valet.FullName), term) ||
		strings.Contains(strings.ToLower(valet.Email), term)
}

func decodeValet(doc *docstore.Document) *domain.ValetAccount {
	return &domain.ValetAccount{
		ID:          doc.ID,
		Email:       stringField(doc.Fields, "email"),
		FullName:    stringField(doc.Fields, "fullName"),
		PhoneNumber: stringField(doc.Fields, "phoneNumber"),
		EmployeeID:  stringField(doc.Fields, "employeeId"),
		Department:  stringField(doc.Fields, "department"),
		// Absent isActive reads as active; only an explicit false deactivates.
		IsActive:      boolField(doc.Fields, "isActive", true),
		IsAdmin:       boolField(doc.Fields, "isAdmin", false),
		CreatedAt:     decodeTime(doc.Fields["createdAt"]),
		UpdatedAt:     decodeTime(doc.Fields["updatedAt"]),
		LastLogin:     decodeTimePtr(doc.Fields["lastLogin"]),
		CreatedBy:     stringField(doc.Fields, "createdBy"),
		ActivatedAt:   decodeTimePtr(doc.Fields["activatedAt"]),
		ActivatedBy:   stringField(doc.Fields, "activatedBy"),
		DeactivatedAt: decodeTimePtr(doc.Fields["deactivatedAt"]),
		DeactivatedBy: stringField(doc.Fields, "deactivatedBy"),
		PromotedAt:    decodeTimePtr(doc.Fields["promotedAt"]),
		PromotedBy:    stringField(doc.Fields, "promotedBy"),
		DemotedAt:     decodeTimePtr(doc.Fields["demotedAt"]),
		DemotedBy:     stringField(doc.Fields, "demotedBy"),
	}
}
