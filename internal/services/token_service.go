package services

import (
	"errors"
	"fmt"
	"time"

	"helpdesk/internal/apperrors"

	"github.com/dgrijalva/jwt-go"
)

// Sessions end at these local hours regardless of when the token was issued.
const (
	morningCutoff = 6
	eveningCutoff = 18
)

// unknownIdentity is reported when a token carries neither username nor email.
const unknownIdentity = "Unknown"

// TokenService issues and verifies signed identity tokens.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// WithClock returns a copy of the service using now as its time source.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	return &TokenService{secret: s.secret, now: now}
}

// NextExpiry returns the next 06:00 or 18:00 after now, in now's location.
func NextExpiry(now time.Time) time.Time {
	y, m, d := now.Date()
	loc := now.Location()
	switch {
	case now.Hour() < morningCutoff:
		return time.Date(y, m, d, morningCutoff, 0, 0, 0, loc)
	case now.Hour() < eveningCutoff:
		return time.Date(y, m, d, eveningCutoff, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d+1, morningCutoff, 0, 0, 0, loc)
	}
}

// SignToken signs claims, which must include a username, adding issue and
// expiry times.
func (s *TokenService) SignToken(claims jwt.MapClaims) (string, error) {
	if username, _ := claims["username"].(string); username == "" {
		return "", errors.New("claims must include a username")
	}

	now := s.now()
	signed := make(jwt.MapClaims, len(claims)+2)
	for k, v := range claims {
		signed[k] = v
	}
	signed["iat"] = now.Unix()
	signed["exp"] = NextExpiry(now).Unix()

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, signed).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// VerifiedToken is the result of a successful verification.
type VerifiedToken struct {
	Claims jwt.MapClaims
	// User is the display identity: username, then email, then "Unknown".
	User string
}

// Username returns the username claim, if any.
func (v *VerifiedToken) Username() string {
	username, _ := v.Claims["username"].(string)
	return username
}

// VerifyToken checks the signature and expiry of tokenString.
func (s *TokenService) VerifyToken(tokenString string) (*VerifiedToken, error) {
	parser := &jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return nil, fmt.Errorf("%w: token is expired", apperrors.ErrInvalidToken)
	}

	return &VerifiedToken{Claims: claims, User: displayIdentity(claims)}, nil
}

func displayIdentity(claims jwt.MapClaims) string {
	if username, _ := claims["username"].(string); username != "" {
		return username
	}
	if email, _ := claims["email"].(string); email != "" {
		return email
	}
	return unknownIdentity
}
