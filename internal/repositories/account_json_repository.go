package repositories

import (
	"fmt"

	"helpdesk/internal/models"
)

// JSONAccountRepository stores accounts as a JSON array in a single file.
// Every call re-reads the file; nothing is cached between calls.
type JSONAccountRepository struct {
	doc *jsonDocument
}

// NewJSONAccountRepository creates a repository backed by the file at path.
func NewJSONAccountRepository(path string) *JSONAccountRepository {
	return &JSONAccountRepository{
		doc: newJSONDocument(path, []byte("[]")),
	}
}

func (r *JSONAccountRepository) load() ([]models.Account, error) {
	var accounts []models.Account
	if err := r.doc.read(&accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetAll returns all accounts.
func (r *JSONAccountRepository) GetAll() ([]models.Account, error) {
	r.doc.mu.RLock()
	defer r.doc.mu.RUnlock()

	accounts, err := r.load()
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return accounts, nil
}

// GetByUsername returns the account with the given username or ErrNotFound.
func (r *JSONAccountRepository) GetByUsername(username string) (*models.Account, error) {
	r.doc.mu.RLock()
	defer r.doc.mu.RUnlock()

	accounts, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Username == username {
			return &accounts[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create assigns the next id and appends the account.
func (r *JSONAccountRepository) Create(account *models.Account) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	accounts, err := r.load()
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.Username == account.Username {
			return fmt.Errorf("account %q: %w", account.Username, ErrDuplicateUsername)
		}
	}
	account.ID = nextAccountID(accounts)
	accounts = append(accounts, *account)
	return r.doc.write(accounts)
}

// Update applies the allow-listed fields to the account with the given username.
func (r *JSONAccountRepository) Update(username string, fields models.Fields) (*models.Account, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	accounts, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Username != username {
			continue
		}
		if err := applyAccountFields(&accounts[i], fields); err != nil {
			return nil, err
		}
		if err := r.doc.write(accounts); err != nil {
			return nil, err
		}
		updated := accounts[i]
		return &updated, nil
	}
	return nil, ErrNotFound
}

// DeleteByUsername removes the account and reports whether one was removed.
func (r *JSONAccountRepository) DeleteByUsername(username string) (bool, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	accounts, err := r.load()
	if err != nil {
		return false, err
	}
	kept := accounts[:0]
	for _, a := range accounts {
		if a.Username != username {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(accounts) {
		return false, nil
	}
	return true, r.doc.write(kept)
}
