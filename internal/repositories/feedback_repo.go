package repositories

import "coursefeedback/internal/models"

// FeedbackRepository defines the interface for feedback data access.
// Every read and delete is scoped to the owning account.
type FeedbackRepository interface {
	Create(entry *models.FeedbackEntry) error
	ListByAccount(accountID string) ([]models.FeedbackEntry, error)
	DeleteByAccount(accountID string) (int64, error)
}
