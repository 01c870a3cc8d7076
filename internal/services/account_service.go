package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"helpdesk/internal/apperrors"
	"helpdesk/internal/models"
	"helpdesk/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// ProfileFields are the keys a user may change on their own profile.
var ProfileFields = []string{"email", "fullName", "profilePicture", "theme", "notifications"}

// AdminProfileFields are the keys an administrator may change on any account.
var AdminProfileFields = append(append([]string{}, ProfileFields...), "isAdmin")

// Registration holds the data for a new account.
type Registration struct {
	Username       string
	Password       string
	Email          string
	FullName       string
	ProfilePicture string
	Theme          string
	Notifications  bool
	IsAdmin        bool
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string
	// Temporary is set when the account has no password and was let in
	// without a password check.
	Temporary bool
}

// AccountService handles business logic for accounts and authentication.
type AccountService struct {
	repo       repositories.AccountRepository
	tokens     *TokenService
	bcryptCost int
	log        zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo repositories.AccountRepository, tokens *TokenService, bcryptCost int, log zerolog.Logger) *AccountService {
	return &AccountService{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

// Login authenticates a user and returns a signed token.
func (s *AccountService) Login(username, password string) (*LoginResult, error) {
	account, err := s.repo.GetByUsername(username)
	if errors.Is(err, repositories.ErrNotFound) {
		s.log.Debug().Str("username", username).Msg("login for unknown account")
		return nil, apperrors.ErrAuthFailed
	}
	if err != nil {
		return nil, err
	}

	if !account.IsTemporary() {
		if err := bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(password)); err != nil {
			s.log.Debug().Str("username", username).Msg("login with wrong password")
			return nil, apperrors.ErrAuthFailed
		}
	}

	token, err := s.tokens.SignToken(jwt.MapClaims{
		"id":       account.ID,
		"username": account.Username,
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Temporary: account.IsTemporary()}, nil
}

// Register creates a new account with a hashed password.
func (s *AccountService) Register(reg Registration) (*models.Account, error) {
	if _, err := s.repo.GetByUsername(reg.Username); err == nil {
		return nil, apperrors.ErrDuplicateUsername
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	passwordHash := string(hash)

	account := &models.Account{
		Username:       reg.Username,
		PasswordHash:   &passwordHash,
		Email:          reg.Email,
		FullName:       reg.FullName,
		ProfilePicture: reg.ProfilePicture,
		Theme:          reg.Theme,
		Notifications:  reg.Notifications,
		IsAdmin:        reg.IsAdmin,
	}
	if err := s.repo.Create(account); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUsername) {
			return nil, apperrors.ErrDuplicateUsername
		}
		return nil, err
	}

	s.log.Info().Str("username", account.Username).Int("id", account.ID).Bool("admin", account.IsAdmin).Msg("account created")
	created := account.Sanitized()
	return &created, nil
}

// ChangePassword replaces the password of username after checking the old
// one. A temporary account has no old password to check.
func (s *AccountService) ChangePassword(username, oldPassword, newPassword string) error {
	account, err := s.repo.GetByUsername(username)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("User not found")
	}
	if err != nil {
		return err
	}

	if !account.IsTemporary() {
		if err := bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(oldPassword)); err != nil {
			return apperrors.Unauthorized("Old password is incorrect")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	raw, err := rawJSON(string(hash))
	if err != nil {
		return err
	}
	if _, err := s.repo.Update(username, models.Fields{"passwordHash": raw}); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("User not found")
		}
		return err
	}
	return nil
}

// DeleteAccounts deletes each named account and returns how many existed.
func (s *AccountService) DeleteAccounts(usernames []string) (int, error) {
	deleted := 0
	for _, username := range usernames {
		ok, err := s.repo.DeleteByUsername(username)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted++
		}
	}
	s.log.Info().Strs("usernames", usernames).Int("deleted", deleted).Msg("accounts deleted")
	return deleted, nil
}

// Profile returns the account of username without its password hash.
func (s *AccountService) Profile(username string) (*models.Account, error) {
	account, err := s.repo.GetByUsername(username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	sanitized := account.Sanitized()
	return &sanitized, nil
}

// UpdateProfile applies the self-service subset of fields to username.
func (s *AccountService) UpdateProfile(username string, fields models.Fields) (*models.Account, error) {
	return s.update(username, fields.Only(ProfileFields...))
}

// AdminUpdate applies the administrator subset of fields to username.
func (s *AccountService) AdminUpdate(username string, fields models.Fields) (*models.Account, error) {
	return s.update(username, fields.Only(AdminProfileFields...))
}

func (s *AccountService) update(username string, fields models.Fields) (*models.Account, error) {
	account, err := s.repo.Update(username, fields)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	sanitized := account.Sanitized()
	return &sanitized, nil
}

// List returns every account without password hashes.
func (s *AccountService) List() ([]models.Account, error) {
	accounts, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	safe := make([]models.Account, 0, len(accounts))
	for _, a := range accounts {
		safe = append(safe, a.Sanitized())
	}
	return safe, nil
}

func rawJSON(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	return b, nil
}
