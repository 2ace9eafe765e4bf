package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"coursefeedback/internal/models"
	"coursefeedback/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// AccountService handles business logic for account identity: login with
// auto-registration on first sight of an email.
type AccountService struct {
	repo repositories.AccountRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo repositories.AccountRepository) *AccountService {
	return &AccountService{
		repo: repo,
	}
}

// NormalizeEmail trims and lowercases an email address. All lookups and
// inserts go through the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ResolveOrCreate looks up the account for email, creating it on first
// login. The returned flag is true when a new account was created.
//
// An unknown email with a fresh password registers; an existing email
// requires the matching password and fails with ErrInvalidCredentials
// otherwise. When two first logins race, the store's unique index decides
// the winner and the loser retries once as a plain lookup.
func (s *AccountService) ResolveOrCreate(email, password string) (*models.Account, bool, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, false, &ValidationError{Field: "email", Message: "is required"}
	}
	if password == "" {
		return nil, false, &ValidationError{Field: "password", Message: "is required"}
	}

	account, err := s.repo.GetByEmail(email)
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
			return nil, false, ErrInvalidCredentials
		}
		return account, false, nil

	case errors.Is(err, repositories.ErrNotFound):
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, false, fmt.Errorf("failed to hash password: %w", hashErr)
		}
		account = &models.Account{
			Email:        email,
			PasswordHash: string(hash),
			CreatedAt:    time.Now().UTC(),
		}
		if createErr := s.repo.Create(account); createErr != nil {
			if errors.Is(createErr, repositories.ErrDuplicateEmail) {
				return s.resolveAfterRace(email, password)
			}
			return nil, false, fmt.Errorf("failed to create account: %w", createErr)
		}
		return account, true, nil

	default:
		return nil, false, fmt.Errorf("failed to look up account: %w", err)
	}
}

// resolveAfterRace handles the lost insert race: a concurrent first login
// already created the account, so fall back to an ordinary credential check.
func (s *AccountService) resolveAfterRace(email, password string) (*models.Account, bool, error) {
	account, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up account after duplicate insert: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, false, ErrInvalidCredentials
	}
	return account, false, nil
}

// FindByID returns the account for a session-derived identifier, or
// repositories.ErrNotFound when the session points at a deleted account.
func (s *AccountService) FindByID(id string) (*models.Account, error) {
	return s.repo.GetByID(id)
}
