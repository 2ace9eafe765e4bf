package repositories

import (
	"fmt"

	"coursefeedback/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMFeedbackRepository is a GORM implementation of FeedbackRepository.
type GORMFeedbackRepository struct {
	db *gorm.DB
}

// NewGORMFeedbackRepository creates a new instance of GORMFeedbackRepository.
func NewGORMFeedbackRepository(db *gorm.DB) *GORMFeedbackRepository {
	return &GORMFeedbackRepository{
		db: db,
	}
}

// Create inserts a new feedback entry as a single atomic write.
func (r *GORMFeedbackRepository) Create(entry *models.FeedbackEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create feedback entry: %w", err)
	}
	return nil
}

// ListByAccount returns all entries owned by accountID, newest first.
// Ties on created_at fall back to store order.
func (r *GORMFeedbackRepository) ListByAccount(accountID string) ([]models.FeedbackEntry, error) {
	entries := make([]models.FeedbackEntry, 0)
	err := r.db.
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback for account %s: %w", accountID, err)
	}
	return entries, nil
}

// DeleteByAccount removes every entry owned by accountID and reports how
// many rows were deleted. Deleting zero rows is not an error.
func (r *GORMFeedbackRepository) DeleteByAccount(accountID string) (int64, error) {
	res := r.db.Where("account_id = ?", accountID).Delete(&models.FeedbackEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete feedback for account %s: %w", accountID, res.Error)
	}
	return res.RowsAffected, nil
}
