package middleware

import (
	"errors"
	"strings"

	"helpdesk/internal/apperrors"
	"helpdesk/internal/repositories"
	"helpdesk/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Keys under which the gates store the caller in fiber.Ctx locals.
const (
	LocalUsername = "username"
	LocalUserID   = "user_id"
	LocalClaims   = "claims"
	LocalAccount  = "account"
)

// Gate verifies bearer tokens and resolves the caller against the
// account store.
type Gate struct {
	tokens   *services.TokenService
	accounts repositories.AccountRepository
	log      zerolog.Logger
}

// NewGate creates a new Gate.
func NewGate(tokens *services.TokenService, accounts repositories.AccountRepository, log zerolog.Logger) *Gate {
	return &Gate{tokens: tokens, accounts: accounts, log: log}
}

func (g *Gate) verify(c *fiber.Ctx) (*services.VerifiedToken, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	verified, err := g.tokens.VerifyToken(parts[1])
	if err != nil {
		g.log.Debug().Err(err).Str("path", c.Path()).Msg("token verification failed")
		return nil, apperrors.ErrInvalidToken
	}
	return verified, nil
}

// AuthRequired admits requests carrying a valid token whose account still
// exists. The account is looked up on every request.
func (g *Gate) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		verified, err := g.verify(c)
		if err != nil {
			return err
		}

		account, err := g.accounts.GetByUsername(verified.User)
		if errors.Is(err, repositories.ErrNotFound) {
			g.log.Info().Str("username", verified.User).Msg("token for deleted account")
			return apperrors.ErrStaleIdentity
		}
		if err != nil {
			return err
		}

		setCaller(c, verified, account.ID)
		c.Locals(LocalAccount, account)
		return c.Next()
	}
}

// AdminRequired admits requests carrying a valid token for an
// administrator account.
func (g *Gate) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		verified, err := g.verify(c)
		if err != nil {
			return err
		}

		account, err := g.accounts.GetByUsername(verified.User)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrForbidden
		}
		if err != nil {
			return err
		}
		if !account.IsAdmin {
			g.log.Info().Str("username", account.Username).Str("path", c.Path()).Msg("admin route refused")
			return apperrors.ErrForbidden
		}

		setCaller(c, verified, account.ID)
		c.Locals(LocalAccount, account)
		return c.Next()
	}
}

func setCaller(c *fiber.Ctx, verified *services.VerifiedToken, id int) {
	c.Locals(LocalUsername, verified.User)
	c.Locals(LocalUserID, id)
	c.Locals(LocalClaims, verified.Claims)
}

// CurrentUsername returns the identity attached by a gate, or "" when the
// route is not behind one.
func CurrentUsername(c *fiber.Ctx) string {
	username, _ := c.Locals(LocalUsername).(string)
	return username
}
