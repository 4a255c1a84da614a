package repository

import (
	"context"
	"time"

	"github.com/davisgreg1/valet-time-keeping/internal/docstore"
	"github.com/davisgreg1/valet-time-keeping/internal/domain"
)

// AdminRepository defines access to the admins collection.
type AdminRepository interface {
	GetByID(ctx context.Context, id string) (*domain.AdministratorAccount, error)
	Create(ctx context.Context, admin *domain.AdministratorAccount) error
	Any(ctx context.Context) (bool, error)
}

type adminRepository struct {
	store docstore.Store
}

// NewAdminRepository returns a document-store backed implementation.
func NewAdminRepository(store docstore.Store) AdminRepository {
	return &adminRepository{store: store}
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*domain.AdministratorAccount, error) {
	doc, err := r.store.GetDocument(ctx, docstore.CollectionAdmins, id)
	if err != nil {
		return nil, err
	}
	return decodeAdmin(doc), nil
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.AdministratorAccount) error {
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now()
	}
	fields := map[string]any{
		"email":      admin.Email,
		"fullName":   admin.FullName,
		"department": admin.Department,
		"role":       "admin",
		"createdAt":  encodeTime(admin.CreatedAt),
		"permissions": map[string]any{
			"manageValets": admin.Permissions.ManageValets,
			"viewReports":  admin.Permissions.ViewReports,
			"editClockIns": admin.Permissions.EditClockIns,
			"exportData":   admin.Permissions.ExportData,
		},
	}
	return r.store.SetDocument(ctx, docstore.CollectionAdmins, admin.ID, fields)
}

func (r *adminRepository) Any(ctx context.Context) (bool, error) {
	docs, err := r.store.QueryCollection(ctx, docstore.CollectionAdmins, nil, nil, 1)
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

func decodeAdmin(doc *docstore.Document) *domain.AdministratorAccount {
	admin := &domain.AdministratorAccount{
		ID:         doc.ID,
		Email:      stringField(doc.Fields, "email"),
		FullName:   stringField(doc.Fields, "fullName"),
		Department: stringField(doc.Fields, "department"),
		CreatedAt:  decodeTime(doc.Fields["createdAt"]),
	}
	if perms, ok := doc.Fields["permissions"].(map[string]any); ok {
		admin.Permissions = domain.Permissions{
			ManageValets: boolField(perms, "manageValets", false),
			ViewReports:  boolField(perms, "viewReports", false),
			EditClockIns: boolField(perms, "editClockIns", false),
			ExportData:   boolField(perms, "exportData", false),
		}
	}
	return admin
}
