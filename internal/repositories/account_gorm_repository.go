package repositories

import (
	"errors"
	"fmt"

	"helpdesk/internal/models"

	"gorm.io/gorm"
)

// GORMAccountRepository is a GORM implementation of AccountRepository.
type GORMAccountRepository struct {
	db *gorm.DB
}

// NewGORMAccountRepository creates a new instance of GORMAccountRepository.
func NewGORMAccountRepository(db *gorm.DB) *GORMAccountRepository {
	return &GORMAccountRepository{
		db: db,
	}
}

// GetAll retrieves all accounts ordered by id.
func (r *GORMAccountRepository) GetAll() ([]models.Account, error) {
	accounts := []models.Account{}
	if err := r.db.Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all accounts: %w", err)
	}
	return accounts, nil
}

// GetByUsername retrieves an account by its username.
func (r *GORMAccountRepository) GetByUsername(username string) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by username %s: %w", username, err)
	}
	return &account, nil
}

// Create assigns the next id and inserts the account.
func (r *GORMAccountRepository) Create(account *models.Account) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Account{}).Where("username = ?", account.Username).Count(&taken).Error; err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken > 0 {
			return fmt.Errorf("account %q: %w", account.Username, ErrDuplicateUsername)
		}
		var maxID int
		if err := tx.Model(&models.Account{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return fmt.Errorf("failed to compute next account id: %w", err)
		}
		account.ID = maxID + 1
		if err := tx.Create(account).Error; err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	})
}

// Update applies the allow-listed fields to the account with the given username.
func (r *GORMAccountRepository) Update(username string, fields models.Fields) (*models.Account, error) {
	var account models.Account
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, "username = ?", username).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get account %s: %w", username, err)
		}
		if err := applyAccountFields(&account, fields); err != nil {
			return err
		}
		if err := tx.Save(&account).Error; err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteByUsername deletes the account and reports whether one was removed.
func (r *GORMAccountRepository) DeleteByUsername(username string) (bool, error) {
	res := r.db.Delete(&models.Account{}, "username = ?", username)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete account: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
