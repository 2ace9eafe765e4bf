// Package sessions maps opaque tokens, carried in a cookie, to an
// authenticated account identity. Sessions are ephemeral: they live in
// process memory or Redis with a TTL and are never written to the
// primary store.
package sessions

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// CookieName is the cookie that carries the session token.
const CookieName = "session_token"

// Session is the identity bound to a token.
type Session struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
}

// Store persists session tokens.
type Store interface {
	// Create issues a fresh token bound to the account.
	Create(accountID, email string) (string, error)
	// Get resolves a token. The bool reports whether the session exists;
	// the error is reserved for store failures.
	Get(token string) (*Session, bool, error)
	// Delete removes a token. Deleting an unknown token is not an error.
	Delete(token string) error
}

// newToken returns a 256-bit random hex token.
func newToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore is an in-process Store, suitable for a single instance or
// tests.
type MemoryStore struct {
	entries map[string]memoryEntry
	ttl     time.Duration
	mu      sync.Mutex
}

// NewMemoryStore creates a MemoryStore whose sessions expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

// Create issues a new token for the account.
func (s *MemoryStore) Create(accountID, email string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryEntry{
		session:   Session{AccountID: accountID, Email: email},
		expiresAt: time.Now().Add(s.ttl),
	}
	return token, nil
}

// Get resolves a token, dropping it if it has expired.
func (s *MemoryStore) Get(token string) (*Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, token)
		return nil, false, nil
	}
	session := entry.session
	return &session, true, nil
}

// Delete removes a token.
func (s *MemoryStore) Delete(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}
