package repositories

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"helpdesk/internal/apperrors"
	"helpdesk/internal/models"
)

// ErrNotFound is returned by repositories when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateUsername is returned by Create when the username is taken.
var ErrDuplicateUsername = errors.New("username already exists")

// RegistrationFields is the set of keys accepted in a registration body.
var RegistrationFields = []string{"username", "password", "email", "fullName", "profilePicture", "theme", "notifications", "isAdmin"}

// AccountUpdateFields is the set of keys Update is allowed to change. It
// intentionally differs from RegistrationFields: updates carry a
// passwordHash, registrations carry a raw password.
var AccountUpdateFields = []string{"email", "fullName", "profilePicture", "theme", "notifications", "isAdmin", "passwordHash"}

// AccountRepository defines the interface for account data access.
type AccountRepository interface {
	GetAll() ([]models.Account, error)
	GetByUsername(username string) (*models.Account, error)
	Create(account *models.Account) error
	Update(username string, fields models.Fields) (*models.Account, error)
	DeleteByUsername(username string) (bool, error)
}

// ValidateShape rejects a registration body containing any key outside
// RegistrationFields.
func ValidateShape(fields models.Fields) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !contains(RegistrationFields, k) {
			return apperrors.Validation(fmt.Sprintf("Field %q is not allowed. Allowed fields are: %s", k, strings.Join(RegistrationFields, ", ")))
		}
	}
	return nil
}

// applyAccountFields copies the allow-listed keys of fields onto account.
// Unknown keys are ignored.
func applyAccountFields(account *models.Account, fields models.Fields) error {
	for _, name := range AccountUpdateFields {
		if !fields.Has(name) {
			continue
		}
		var target any
		switch name {
		case "email":
			target = &account.Email
		case "fullName":
			target = &account.FullName
		case "profilePicture":
			target = &account.ProfilePicture
		case "theme":
			target = &account.Theme
		case "notifications":
			target = &account.Notifications
		case "isAdmin":
			target = &account.IsAdmin
		case "passwordHash":
			target = &account.PasswordHash
		}
		if err := fields.DecodeField(name, target); err != nil {
			return apperrors.Validation("Validation errors", fmt.Sprintf("%s has an invalid value", name))
		}
	}
	return nil
}

func nextAccountID(accounts []models.Account) int {
	maxID := 0
	for _, a := range accounts {
		if a.ID > maxID {
			maxID = a.ID
		}
	}
	return maxID + 1
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
