package domain

import "time"

// Permissions enumerates administrative capability flags.
type Permissions struct {
	ManageValets bool
	ViewReports  bool
	EditClockIns bool
	ExportData   bool
}

// FullPermissions is the capability set granted to dedicated admins at setup.
func FullPermissions() Permissions {
	return Permissions{
		ManageValets: true,
		ViewReports:  true,
		EditClockIns: true,
		ExportData:   true,
	}
}

// AdministratorAccount is a dedicated admin record in the admins collection.
// Dedicated admins are always considered active and have no demotion path.
type AdministratorAccount struct {
	ID          string
	Email       string
	FullName    string
	Department  string
	Permissions Permissions
	CreatedAt   time.Time
}

// ValetAccount is an employee record in the valets collection. A valet with
// IsAdmin set carries admin-equivalent capability without leaving the valets
// collection, so their clock-in history and identity stay intact.
type ValetAccount struct {
	ID          string
	Email       string
	FullName    string
	PhoneNumber string
	EmployeeID  string
	Department  string
	IsActive    bool
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLogin   *time.Time

	CreatedBy     string
	ActivatedAt   *time.Time
	ActivatedBy   string
	DeactivatedAt *time.Time
	DeactivatedBy string
	PromotedAt    *time.Time
	PromotedBy    string
	DemotedAt     *time.Time
	DemotedBy     string
}

// Promoted reports whether the valet holds admin-equivalent privileges.
// A deactivated record never qualifies, regardless of the admin flag.
func (v *ValetAccount) Promoted() bool {
	return v != nil && v.IsAdmin && v.IsActive
}
