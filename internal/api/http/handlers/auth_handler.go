package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/davisgreg1/valet-time-keeping/internal/api/dto"
	"github.com/davisgreg1/valet-time-keeping/internal/authz"
	"github.com/davisgreg1/valet-time-keeping/internal/identity"
	"github.com/davisgreg1/valet-time-keeping/internal/service"
	apperrors "github.com/davisgreg1/valet-time-keeping/pkg/util"
)

// AuthHandler exposes the session lifecycle endpoints.
type AuthHandler struct {
	controller *authz.Controller
	guard      *authz.Guard
	valets     *service.ValetService
	logger     *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(controller *authz.Controller, guard *authz.Guard, valets *service.ValetService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{controller: controller, guard: guard, valets: valets, logger: logger}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	outcome, err := h.controller.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return mapLoginError(err)
	}

	if outcome.Destination == authz.DestinationSignIn {
		return bounceError(outcome.Reason)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"auth": dto.AuthResponse{
				Token:       outcome.Token,
				ExpiresAt:   outcome.ExpiresAt,
				Destination: string(outcome.Destination),
			},
			"account": accountView(outcome.Resolution),
		},
	})
}

// Logout handles POST /auth/logout. Idempotent: a missing or already-ended
// session still returns success.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session, _ := authz.SessionFromContext(c)
	h.controller.Logout(c.UserContext(), session)
	return c.JSON(fiber.Map{"data": fiber.Map{"signed_out": true}})
}

// Session handles GET /auth/session. Reads the session's current snapshot
// without a store lookup, so it stays cheap for frequent polling.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	session, _ := authz.SessionFromContext(c)
	verdict := h.guard.Current(session)
	return c.JSON(fiber.Map{
		"data": sessionView(session, verdict),
	})
}

// PasswordReset handles POST /auth/password-reset.
func (h *AuthHandler) PasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	if err := h.controller.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		// do not reveal whether the address exists
		if !errors.Is(err, identity.ErrUserNotFound) {
			h.logger.Warn("password reset request failed", zap.Error(err))
		}
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"message": "If an account exists for that address, a reset link has been sent.",
	}})
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	valet, err := h.valets.SignUp(c.UserContext(), service.NewValetInput{
		Email:             req.Email,
		TemporaryPassword: req.Password,
		FullName:          req.FullName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewValetResponse(valet),
	})
}

// Bootstrap handles POST /auth/bootstrap, the one-time admin setup.
func (h *AuthHandler) Bootstrap(c *fiber.Ctx) error {
	var req dto.BootstrapRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return apperrors.NewValidationError("email, password and full name required", nil)
	}

	admin, err := h.valets.BootstrapAdmin(c.UserContext(), service.BootstrapInput{
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		Department: req.Department,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"id":        admin.ID,
			"email":     admin.Email,
			"full_name": admin.FullName,
		},
	})
}

func mapLoginError(err error) error {
	switch {
	case errors.Is(err, identity.ErrRateLimited):
		return apperrors.NewTooManyRequests("Too many sign-in attempts. Please wait and try again.")
	case errors.Is(err, identity.ErrUserDisabled):
		return apperrors.NewDomainError("USER_DISABLED",
			"This account has been disabled.", http.StatusForbidden, nil)
	case errors.Is(err, identity.ErrUserNotFound):
		return apperrors.NewUnauthorized("USER_NOT_FOUND", "No account exists for that address.")
	case errors.Is(err, identity.ErrInvalidCredential):
		return apperrors.NewUnauthorized("INVALID_CREDENTIALS", "Incorrect email or password.")
	case errors.Is(err, authz.ErrLookupUnavailable):
		return apperrors.NewUnavailable("Unable to verify account status. Please try again.", err)
	default:
		return apperrors.MapError(err)
	}
}

func bounceError(reason authz.OutcomeReason) error {
	switch reason {
	case authz.ReasonDeactivated:
		return apperrors.NewDomainError("ACCOUNT_DEACTIVATED",
			"Your account has been deactivated. Please contact your administrator.",
			http.StatusForbidden, nil)
	default:
		return apperrors.NewDomainError("ACCOUNT_NOT_FOUND",
			"Account not found in system. Please contact an administrator.",
			http.StatusForbidden, nil)
	}
}

func accountView(res *authz.Resolution) fiber.Map {
	if res == nil {
		return fiber.Map{}
	}
	view := fiber.Map{
		"id":        res.AccountID(),
		"name":      res.DisplayName(),
		"role":      res.Kind.String(),
		"is_admin":  res.AdminEquivalent(),
		"is_active": res.ActiveValet() || res.Kind == authz.RoleAdmin,
	}
	if res.Valet != nil {
		view["is_active"] = res.Valet.IsActive
	}
	return view
}

func sessionView(session *authz.Session, verdict authz.Verdict) fiber.Map {
	view := fiber.Map{
		"state": verdictLabel(verdict.State),
	}
	if verdict.Reason != "" {
		view["reason"] = string(verdict.Reason)
	}
	if session != nil {
		view["session_id"] = session.ID
		view["email"] = session.Email
	}
	if verdict.Resolution != nil {
		view["account"] = accountView(verdict.Resolution)
	}
	return view
}

func verdictLabel(state authz.VerdictState) string {
	switch state {
	case authz.VerdictAdmin:
		return "admin"
	case authz.VerdictActiveValet:
		return "valet"
	case authz.VerdictDenied:
		return "denied"
	default:
		return "pending"
	}
}
