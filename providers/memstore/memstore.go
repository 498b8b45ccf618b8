// Package memstore is an in-memory AccountProvider for tests and examples.
// It is not durable and must not back a production deployment.
package memstore

import (
	"context"
	"sync"
	"time"

	goCred "github.com/DrStellar9/goCred"
	"github.com/google/uuid"
)

// Store implements [goCred.AccountProvider] with a mutex-guarded map.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]goCred.Account
	byEmail map[string]string
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Store {
	return &Store{
		byID:    make(map[string]goCred.Account),
		byEmail: make(map[string]string),
	}
}

// GetByEmail describes the getbyemail operation and its observable behavior.
//
// GetByEmail may return an error when input validation, dependency calls, or security checks fail.
// GetByEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GetByEmail(_ context.Context, email string) (goCred.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return goCred.Account{}, goCred.ErrProviderNotFound
	}
	return s.byID[id], nil
}

// GetByID describes the getbyid operation and its observable behavior.
//
// GetByID may return an error when input validation, dependency calls, or security checks fail.
// GetByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GetByID(_ context.Context, id string) (goCred.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[id]
	if !ok {
		return goCred.Account{}, goCred.ErrProviderNotFound
	}
	return account, nil
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Create(_ context.Context, input goCred.CreateAccountInput) (goCred.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[input.Email]; exists {
		return goCred.Account{}, goCred.ErrProviderDuplicateEmail
	}

	now := time.Now().UTC()
	account := goCred.Account{
		ID:           uuid.NewString(),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: input.PasswordHash,
		Verified:     input.Verified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.byID[account.ID] = account
	s.byEmail[account.Email] = account.ID

	return account, nil
}

// UpdatePasswordHash describes the updatepasswordhash operation and its observable behavior.
//
// UpdatePasswordHash may return an error when input validation, dependency calls, or security checks fail.
// UpdatePasswordHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpdatePasswordHash(_ context.Context, id, hash string) error {
	return s.update(id, func(account *goCred.Account) {
		account.PasswordHash = hash
	})
}

// UpdatePinHash describes the updatepinhash operation and its observable behavior.
//
// UpdatePinHash may return an error when input validation, dependency calls, or security checks fail.
// UpdatePinHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpdatePinHash(_ context.Context, id, hash string) error {
	return s.update(id, func(account *goCred.Account) {
		account.PinHash = hash
	})
}

// MarkVerified describes the markverified operation and its observable behavior.
//
// MarkVerified may return an error when input validation, dependency calls, or security checks fail.
// MarkVerified does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) MarkVerified(_ context.Context, id string) error {
	return s.update(id, func(account *goCred.Account) {
		account.Verified = true
	})
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.byID[id]
	if !ok {
		return goCred.ErrProviderNotFound
	}

	delete(s.byID, id)
	delete(s.byEmail, account.Email)
	return nil
}

func (s *Store) update(id string, apply func(*goCred.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.byID[id]
	if !ok {
		return goCred.ErrProviderNotFound
	}

	apply(&account)
	account.UpdatedAt = time.Now().UTC()
	s.byID[id] = account
	return nil
}
