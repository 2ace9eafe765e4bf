package repositories

import "coursefeedback/internal/models"

// AccountRepository defines the interface for account data access.
type AccountRepository interface {
	Create(account *models.Account) error
	GetByEmail(email string) (*models.Account, error)
	GetByID(id string) (*models.Account, error)
}
