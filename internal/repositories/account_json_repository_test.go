package repositories_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"helpdesk/internal/apperrors"
	"helpdesk/internal/models"
	"helpdesk/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, body string) models.Fields {
	t.Helper()
	var f models.Fields
	require.NoError(t, json.Unmarshal([]byte(body), &f))
	return f
}

func newAccountRepo(t *testing.T) (*repositories.JSONAccountRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.json")
	return repositories.NewJSONAccountRepository(path), path
}

func TestJSONAccountRepository_CreatesMissingFile(t *testing.T) {
	repo, path := newAccountRepo(t)

	accounts, err := repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestJSONAccountRepository_CreateAssignsIDs(t *testing.T) {
	repo, _ := newAccountRepo(t)

	alice := &models.Account{Username: "alice"}
	bob := &models.Account{Username: "bob"}
	require.NoError(t, repo.Create(alice))
	require.NoError(t, repo.Create(bob))
	assert.Equal(t, 1, alice.ID)
	assert.Equal(t, 2, bob.ID)

	deleted, err := repo.DeleteByUsername("alice")
	require.NoError(t, err)
	assert.True(t, deleted)

	carol := &models.Account{Username: "carol"}
	require.NoError(t, repo.Create(carol))
	assert.Equal(t, 3, carol.ID)
}

// Uniqueness is enforced by the store as well as by the registration flow,
// so a second create without a pre-check leaves a single record behind.
func TestJSONAccountRepository_CreateRejectsDuplicateUsername(t *testing.T) {
	repo, _ := newAccountRepo(t)

	require.NoError(t, repo.Create(&models.Account{Username: "a"}))
	err := repo.Create(&models.Account{Username: "a"})
	assert.True(t, errors.Is(err, repositories.ErrDuplicateUsername))

	accounts, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestJSONAccountRepository_GetByUsername(t *testing.T) {
	repo, _ := newAccountRepo(t)
	hash := "$2a$04$hash"
	require.NoError(t, repo.Create(&models.Account{Username: "alice", PasswordHash: &hash, IsAdmin: true}))

	found, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
	assert.True(t, found.IsAdmin)
	assert.False(t, found.IsTemporary())

	_, err = repo.GetByUsername("nobody")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestJSONAccountRepository_UpdateAppliesAllowList(t *testing.T) {
	repo, _ := newAccountRepo(t)
	require.NoError(t, repo.Create(&models.Account{Username: "alice", Email: "old@example.com"}))

	updated, err := repo.Update("alice", fields(t, `{
		"email": "new@example.com",
		"theme": "dark",
		"notifications": true,
		"passwordHash": "$2a$04$new",
		"username": "mallory",
		"id": 99
	}`))
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "dark", updated.Theme)
	assert.True(t, updated.Notifications)
	require.NotNil(t, updated.PasswordHash)
	assert.Equal(t, "$2a$04$new", *updated.PasswordHash)

	reloaded, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, updated, reloaded)

	_, err = repo.Update("nobody", fields(t, `{"email": "x"}`))
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestJSONAccountRepository_UpdateRejectsWrongTypes(t *testing.T) {
	repo, _ := newAccountRepo(t)
	require.NoError(t, repo.Create(&models.Account{Username: "alice"}))

	_, err := repo.Update("alice", fields(t, `{"notifications": "yes"}`))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestJSONAccountRepository_DeleteMissing(t *testing.T) {
	repo, _ := newAccountRepo(t)

	deleted, err := repo.DeleteByUsername("ghost")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestJSONAccountRepository_TemporaryAccountRoundTrip(t *testing.T) {
	repo, path := newAccountRepo(t)
	require.NoError(t, repo.Create(&models.Account{Username: "temp"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "passwordHash")

	found, err := repo.GetByUsername("temp")
	require.NoError(t, err)
	assert.True(t, found.IsTemporary())
}

func TestValidateShape(t *testing.T) {
	assert.NoError(t, repositories.ValidateShape(fields(t, `{
		"username": "a", "password": "p", "email": "e", "fullName": "f",
		"profilePicture": "data:", "theme": "dark", "notifications": true, "isAdmin": false
	}`)))

	err := repositories.ValidateShape(fields(t, `{"username": "a", "passwordHash": "x"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), `"passwordHash" is not allowed`)
}
