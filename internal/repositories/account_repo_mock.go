package repositories

import (
	"sync"
	"time"

	"coursefeedback/internal/models"

	"github.com/google/uuid"
)

// MockAccountRepository is an in-memory implementation of AccountRepository.
type MockAccountRepository struct {
	accounts map[string]models.Account // keyed by ID
	byEmail  map[string]string         // email -> ID
	mu       sync.RWMutex
}

// NewMockAccountRepository creates a new instance of MockAccountRepository.
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]models.Account),
		byEmail:  make(map[string]string),
	}
}

// Create adds a new account, enforcing email uniqueness the way the real
// store's unique index does.
func (r *MockAccountRepository) Create(account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[account.Email]; exists {
		return ErrDuplicateEmail
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	r.accounts[account.ID] = *account
	r.byEmail[account.Email] = account.ID
	return nil
}

// GetByEmail returns an account by its email.
func (r *MockAccountRepository) GetByEmail(email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	account := r.accounts[id]
	return &account, nil
}

// GetByID returns an account by its ID.
func (r *MockAccountRepository) GetByID(id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}
