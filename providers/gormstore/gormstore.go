// Package gormstore is a MySQL-backed AccountProvider built on GORM.
package gormstore

import (
	"context"
	"errors"
	"time"

	goCred "github.com/DrStellar9/goCred"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type accountRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	Username     string `gorm:"size:255;not null"`
	PasswordHash string `gorm:"size:512;not null"`
	PinHash      string `gorm:"size:512"`
	Verified     bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (accountRow) TableName() string {
	return "accounts"
}

// Store implements [goCred.AccountProvider] on a MySQL database.
type Store struct {
	db *gorm.DB
}

// Open connects to MySQL with the given DSN and migrates the accounts table.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB wraps an existing GORM handle. TranslateError must be enabled on
// the handle so duplicate-key violations surface as gorm.ErrDuplicatedKey.
func NewWithDB(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("gorm db handle required")
	}
	if err := db.AutoMigrate(&accountRow{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// GetByEmail describes the getbyemail operation and its observable behavior.
//
// GetByEmail may return an error when input validation, dependency calls, or security checks fail.
// GetByEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GetByEmail(ctx context.Context, email string) (goCred.Account, error) {
	var row accountRow
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return goCred.Account{}, goCred.ErrProviderNotFound
		}
		return goCred.Account{}, err
	}
	return row.toAccount(), nil
}

// GetByID describes the getbyid operation and its observable behavior.
//
// GetByID may return an error when input validation, dependency calls, or security checks fail.
// GetByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GetByID(ctx context.Context, id string) (goCred.Account, error) {
	var row accountRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return goCred.Account{}, goCred.ErrProviderNotFound
		}
		return goCred.Account{}, err
	}
	return row.toAccount(), nil
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Create(ctx context.Context, input goCred.CreateAccountInput) (goCred.Account, error) {
	row := accountRow{
		ID:           uuid.NewString(),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: input.PasswordHash,
		Verified:     input.Verified,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return goCred.Account{}, goCred.ErrProviderDuplicateEmail
		}
		return goCred.Account{}, err
	}

	return row.toAccount(), nil
}

// UpdatePasswordHash describes the updatepasswordhash operation and its observable behavior.
//
// UpdatePasswordHash may return an error when input validation, dependency calls, or security checks fail.
// UpdatePasswordHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return s.updateColumn(ctx, id, "password_hash", hash)
}

// UpdatePinHash describes the updatepinhash operation and its observable behavior.
//
// UpdatePinHash may return an error when input validation, dependency calls, or security checks fail.
// UpdatePinHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpdatePinHash(ctx context.Context, id, hash string) error {
	return s.updateColumn(ctx, id, "pin_hash", hash)
}

// MarkVerified describes the markverified operation and its observable behavior.
//
// MarkVerified may return an error when input validation, dependency calls, or security checks fail.
// MarkVerified does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) MarkVerified(ctx context.Context, id string) error {
	return s.updateColumn(ctx, id, "verified", true)
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&accountRow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return goCred.ErrProviderNotFound
	}
	return nil
}

func (s *Store) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	result := s.db.WithContext(ctx).
		Model(&accountRow{}).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing row from a no-op write of the same value.
		var count int64
		if err := s.db.WithContext(ctx).Model(&accountRow{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return goCred.ErrProviderNotFound
		}
	}
	return nil
}

func (r accountRow) toAccount() goCred.Account {
	return goCred.Account{
		ID:           r.ID,
		Email:        r.Email,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		PinHash:      r.PinHash,
		Verified:     r.Verified,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
