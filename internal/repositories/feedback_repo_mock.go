package repositories

import (
	"sort"
	"sync"
	"time"

	"coursefeedback/internal/models"

	"github.com/google/uuid"
)

// MockFeedbackRepository is an in-memory implementation of FeedbackRepository.
type MockFeedbackRepository struct {
	entries map[string]models.FeedbackEntry
	seq     map[string]int // insertion order, for stable tie-breaking
	nextSeq int
	mu      sync.RWMutex
}

// NewMockFeedbackRepository creates a new instance of MockFeedbackRepository.
func NewMockFeedbackRepository() *MockFeedbackRepository {
	return &MockFeedbackRepository{
		entries: make(map[string]models.FeedbackEntry),
		seq:     make(map[string]int),
	}
}

// Create adds a new feedback entry.
func (r *MockFeedbackRepository) Create(entry *models.FeedbackEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.entries[entry.ID] = *entry
	r.seq[entry.ID] = r.nextSeq
	r.nextSeq++
	return nil
}

// ListByAccount returns the account's entries, newest first. Entries with
// equal timestamps are ordered most-recently-inserted first.
func (r *MockFeedbackRepository) ListByAccount(accountID string) ([]models.FeedbackEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := make([]models.FeedbackEntry, 0)
	for _, e := range r.entries {
		if e.AccountID == accountID {
			owned = append(owned, e)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return r.seq[owned[i].ID] > r.seq[owned[j].ID]
		}
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned, nil
}

// DeleteByAccount removes every entry owned by accountID.
func (r *MockFeedbackRepository) DeleteByAccount(accountID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, e := range r.entries {
		if e.AccountID == accountID {
			delete(r.entries, id)
			delete(r.seq, id)
			deleted++
		}
	}
	return deleted, nil
}
