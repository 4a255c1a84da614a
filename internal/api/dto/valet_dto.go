package dto

import (
	"time"

	"github.com/davisgreg1/valet-time-keeping/internal/domain"
)

// CreateValetRequest payload for the admin add-valet flow.
type CreateValetRequest struct {
	Email             string `json:"email"`
	TemporaryPassword string `json:"temporary_password"`
	FullName          string `json:"full_name"`
	PhoneNumber       string `json:"phone_number"`
	EmployeeID        string `json:"employee_id"`
	Department        string `json:"department"`
}

// SetValetStatusRequest payload for the status toggle.
type SetValetStatusRequest struct {
	IsActive bool `json:"is_active"`
}

// ValetResponse is the wire form of a valet record.
type ValetResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	EmployeeID  string     `json:"employee_id,omitempty"`
	Department  string     `json:"department,omitempty"`
	IsActive    bool       `json:"is_active"`
	IsAdmin     bool       `json:"is_admin"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// NewValetResponse maps the domain record.
func NewValetResponse(valet *domain.ValetAccount) ValetResponse {
	return ValetResponse{
		ID:          valet.ID,
		Email:       valet.Email,
		FullName:    valet.FullName,
		PhoneNumber: valet.PhoneNumber,
		EmployeeID:  valet.EmployeeID,
		Department:  valet.Department,
		IsActive:    valet.IsActive,
		IsAdmin:     valet.IsAdmin,
		CreatedAt:   valet.CreatedAt,
		UpdatedAt:   valet.UpdatedAt,
		LastLogin:   valet.LastLogin,
	}
}
