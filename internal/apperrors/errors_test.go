package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"helpdesk/internal/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByKind(t *testing.T) {
	err := apperrors.NotFound("Ticket not found")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.False(t, errors.Is(err, apperrors.ErrForbidden))

	wrapped := fmt.Errorf("loading ticket: %w", apperrors.ErrStaleIdentity)
	assert.True(t, errors.Is(wrapped, apperrors.ErrStaleIdentity))
	assert.False(t, errors.Is(wrapped, apperrors.ErrInvalidToken))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, apperrors.Status(apperrors.ErrUnauthenticated))
	assert.Equal(t, http.StatusUnauthorized, apperrors.Status(apperrors.ErrInvalidToken))
	assert.Equal(t, http.StatusUnauthorized, apperrors.Status(apperrors.ErrStaleIdentity))
	assert.Equal(t, http.StatusForbidden, apperrors.Status(apperrors.ErrForbidden))
	assert.Equal(t, http.StatusNotFound, apperrors.Status(apperrors.NotFound("x")))
	assert.Equal(t, http.StatusBadRequest, apperrors.Status(apperrors.Validation("bad", "a", "b")))
	assert.Equal(t, http.StatusInternalServerError, apperrors.Status(errors.New("disk on fire")))
}

func TestPublicHidesUnknownErrors(t *testing.T) {
	pub := apperrors.Public(errors.New("open /data/accounts.json: permission denied"))
	assert.Equal(t, "Internal server error", pub.Message)

	v := apperrors.Validation("Validation errors", "status must be one of: open, in-progress, resolved")
	pub = apperrors.Public(fmt.Errorf("update: %w", v))
	assert.Equal(t, v, pub)
	assert.Len(t, pub.Errors, 1)
}
