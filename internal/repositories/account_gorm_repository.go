package repositories

import (
	"errors"
	"fmt"

	"coursefeedback/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAccountRepository is a GORM implementation of AccountRepository.
type GORMAccountRepository struct {
	db *gorm.DB
}

// NewGORMAccountRepository creates a new instance of GORMAccountRepository.
// The *gorm.DB must be opened with TranslateError enabled so unique-index
// violations surface as gorm.ErrDuplicatedKey.
func NewGORMAccountRepository(db *gorm.DB) *GORMAccountRepository {
	return &GORMAccountRepository{
		db: db,
	}
}

// Create inserts a new account. Returns ErrDuplicateEmail when the unique
// email index rejects the insert.
func (r *GORMAccountRepository) Create(account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if err := r.db.Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByEmail retrieves an account by its normalized email.
func (r *GORMAccountRepository) GetByEmail(email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &account, nil
}

// GetByID retrieves an account by its ID.
func (r *GORMAccountRepository) GetByID(id string) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by ID %s: %w", id, err)
	}
	return &account, nil
}
