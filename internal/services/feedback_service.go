package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"coursefeedback/internal/models"
	"coursefeedback/internal/repositories"
	"coursefeedback/pkg/rabbitmq"

	"github.com/google/uuid"
)

// FeedbackService handles business logic for feedback entries. Every
// operation is scoped to the accountID resolved by the session layer; the
// service trusts the identity it is given and never re-checks it.
type FeedbackService struct {
	repo     repositories.FeedbackRepository
	mqClient *rabbitmq.Client // optional, nil disables event publishing
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(repo repositories.FeedbackRepository, mqClient *rabbitmq.Client) *FeedbackService {
	return &FeedbackService{
		repo:     repo,
		mqClient: mqClient,
	}
}

// Submit validates and stores a new feedback entry for accountID.
// Validation runs before any store access, in a fixed order: presence of
// all three fields, then rating coercion, then range.
func (s *FeedbackService) Submit(accountID, courseName string, rating any, comments string) (*models.FeedbackEntry, error) {
	courseName = strings.TrimSpace(courseName)
	comments = strings.TrimSpace(comments)

	if courseName == "" {
		return nil, &ValidationError{Field: "courseName", Message: "is required"}
	}
	if rating == nil {
		return nil, &ValidationError{Field: "rating", Message: "is required"}
	}
	if comments == "" {
		return nil, &ValidationError{Field: "comments", Message: "is required"}
	}

	value, err := coerceRating(rating)
	if err != nil {
		return nil, &ValidationError{Field: "rating", Message: "must be a whole number"}
	}
	if value < 1 || value > 5 {
		return nil, &ValidationError{Field: "rating", Message: "must be between 1 and 5"}
	}

	entry := &models.FeedbackEntry{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		CourseName: courseName,
		Rating:     value,
		Comments:   comments,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	s.publishSubmitted(entry)

	return entry, nil
}

// List returns the account's entries, newest first. An account with no
// entries yields an empty slice, never an error.
func (s *FeedbackService) List(accountID string) ([]models.FeedbackEntry, error) {
	return s.repo.ListByAccount(accountID)
}

// ClearAll deletes every entry owned by accountID and reports how many
// were removed. Clearing an empty account succeeds with a zero count.
func (s *FeedbackService) ClearAll(accountID string) (int64, error) {
	return s.repo.DeleteByAccount(accountID)
}

// publishSubmitted emits a feedback.submitted event when a broker is
// configured. Publish failures are logged and never fail the submission.
func (s *FeedbackService) publishSubmitted(entry *models.FeedbackEntry) {
	if s.mqClient == nil {
		return
	}

	event := map[string]interface{}{
		"entryID":    entry.ID,
		"accountID":  entry.AccountID,
		"courseName": entry.CourseName,
		"rating":     entry.Rating,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal feedback event: %v", err)
		return
	}
	if err := s.mqClient.Publish("feedback.submitted", body); err != nil {
		log.Printf("Warning: failed to publish feedback event for entry %s: %v", entry.ID, err)
	}
}

// coerceRating accepts the numeric forms a JSON body can carry (number,
// numeric string) and converts them to an int. Fractional values are
// rejected rather than truncated.
func coerceRating(rating any) (int, error) {
	switch v := rating.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("rating %v is not a whole number", v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("invalid rating %q: %w", v.String(), err)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("invalid rating %q: %w", v, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported rating type %T", rating)
	}
}
