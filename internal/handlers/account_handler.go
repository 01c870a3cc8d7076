package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"helpdesk/internal/apperrors"
	"helpdesk/internal/middleware"
	"helpdesk/internal/models"
	"helpdesk/internal/repositories"
	"helpdesk/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AccountHandler handles HTTP requests for accounts and authentication.
type AccountHandler struct {
	service  *services.AccountService
	validate *validator.Validate
	log      zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service *services.AccountService, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the account routes. Login is public, the rest
// sit behind requireUser or requireAdmin.
func (h *AccountHandler) RegisterRoutes(router fiber.Router, requireUser, requireAdmin fiber.Handler) {
	accounts := router.Group("/accounts")
	accounts.Post("/", h.HandleLogin)
	accounts.Post("/register", requireAdmin, h.HandleRegister)
	accounts.Post("/change-password", requireUser, h.HandleChangePassword)
	accounts.Delete("/", requireAdmin, h.HandleDeleteAccounts)
	accounts.Get("/profile", requireUser, h.HandleGetProfile)
	accounts.Put("/profile", requireUser, h.HandleUpdateProfile)
	accounts.Get("/", requireAdmin, h.HandleListAccounts)
	accounts.Put("/:username", requireAdmin, h.HandleAdminUpdate)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// DeleteAccountsRequest represents the request body for a bulk delete.
type DeleteAccountsRequest struct {
	Usernames []string `json:"usernames" validate:"required,min=1,dive,required"`
}

type registerRequest struct {
	Username       string          `json:"username" validate:"required"`
	Password       string          `json:"password" validate:"required"`
	Email          string          `json:"email"`
	FullName       string          `json:"fullName"`
	ProfilePicture string          `json:"profilePicture"`
	Theme          string          `json:"theme"`
	Notifications  bool            `json:"notifications"`
	IsAdmin        json.RawMessage `json:"isAdmin"`
}

// HandleLogin authenticates a user and issues a token.
func (h *AccountHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := h.validate.Struct(req); err != nil {
		// An absent username is just an unknown account.
		return apperrors.ErrAuthFailed
	}

	result, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrAuthFailed) {
			h.log.Warn().Str("username", req.Username).Str("ip", c.IP()).Msg("authentication failed")
		}
		return err
	}

	message := "Authentication successful"
	if result.Temporary {
		message = "Authentication successful due to no password assuming temporary account"
	}
	return c.JSON(fiber.Map{
		"message": message,
		"token":   result.Token,
	})
}

// HandleRegister creates a new account. Only the registration keys are
// accepted in the body.
func (h *AccountHandler) HandleRegister(c *fiber.Ctx) error {
	var fields models.Fields
	if err := c.BodyParser(&fields); err != nil {
		return invalidBody(err)
	}
	if err := repositories.ValidateShape(fields); err != nil {
		return err
	}

	var req registerRequest
	if err := fields.Decode(&req); err != nil {
		return invalidBody(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	account, err := h.service.Register(services.Registration{
		Username:       req.Username,
		Password:       req.Password,
		Email:          req.Email,
		FullName:       req.FullName,
		ProfilePicture: req.ProfilePicture,
		Theme:          req.Theme,
		Notifications:  req.Notifications,
		IsAdmin:        truthy(req.IsAdmin),
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created",
		"user":    account,
	})
}

// HandleChangePassword replaces the caller's password.
func (h *AccountHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return apperrors.Validation("Old password and new password are required")
	}

	if err := h.service.ChangePassword(middleware.CurrentUsername(c), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// HandleDeleteAccounts deletes every listed account.
func (h *AccountHandler) HandleDeleteAccounts(c *fiber.Ctx) error {
	var req DeleteAccountsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return apperrors.Validation("No usernames provided")
	}

	deleted, err := h.service.DeleteAccounts(req.Usernames)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("%d accounts deleted", deleted)})
}

// HandleGetProfile returns the caller's account.
func (h *AccountHandler) HandleGetProfile(c *fiber.Ctx) error {
	account, err := h.service.Profile(middleware.CurrentUsername(c))
	if err != nil {
		return err
	}
	return c.JSON(account)
}

// HandleUpdateProfile applies the self-service fields to the caller's
// account.
func (h *AccountHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var fields models.Fields
	if err := c.BodyParser(&fields); err != nil {
		return invalidBody(err)
	}

	account, err := h.service.UpdateProfile(middleware.CurrentUsername(c), fields)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "user": account})
}

// HandleAdminUpdate applies the administrator fields to the account named
// in the path.
func (h *AccountHandler) HandleAdminUpdate(c *fiber.Ctx) error {
	var fields models.Fields
	if err := c.BodyParser(&fields); err != nil {
		return invalidBody(err)
	}

	account, err := h.service.AdminUpdate(c.Params("username"), fields)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Account updated", "user": account})
}

// HandleListAccounts returns every account.
func (h *AccountHandler) HandleListAccounts(c *fiber.Ctx) error {
	accounts, err := h.service.List()
	if err != nil {
		return err
	}
	return c.JSON(accounts)
}

func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Validation("Validation errors", err.Error())
	}
	details := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return apperrors.Validation("Validation errors", details...)
}

// truthy reports whether a JSON value would count as true in a loosely
// typed client: true, a non-zero number, or a non-empty string, array or
// object.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case nil:
		return false
	default:
		return true
	}
}
