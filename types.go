package goCred

import (
	"context"
	"time"
)

// Account is the full account record exchanged with an [AccountProvider].
// It carries credential hashes and storage timestamps and must never be
// returned to clients directly; use [Account.Projection].
type Account struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	PinHash      string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Projection is the subset of an [Account] that is safe to return to a
// client. Secret hashes and storage timestamps are stripped.
type Projection struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Verified bool   `json:"verified"`
}

// Projection returns the client-safe view of the account.
func (a Account) Projection() Projection {
	return Projection{
		ID:       a.ID,
		Email:    a.Email,
		Username: a.Username,
		Verified: a.Verified,
	}
}

// CreateAccountInput is the input for [AccountProvider.Create].
type CreateAccountInput struct {
	Email        string
	Username     string
	PasswordHash string
	Verified     bool
}

// AccountProvider is the interface callers must implement to integrate
// goCred with their user database. Implementations must return
// [ErrProviderNotFound] when no account matches and
// [ErrProviderDuplicateEmail] when Create would violate email uniqueness.
//
// Reference implementations live under providers/ (memstore for tests,
// gormstore for MySQL).
type AccountProvider interface {
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	Create(ctx context.Context, input CreateAccountInput) (Account, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdatePinHash(ctx context.Context, id, hash string) error
	MarkVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// RegisterRequest is the input for [Engine.Register].
type RegisterRequest struct {
	Email    string
	Password string
	Username string
}

// RegisterResult is returned by [Engine.Register]. When registration is
// OTP-gated, PendingVerification is true and the token fields are empty.
// In the legacy immediate lineage the account is created verified and the
// result carries session and chat tokens like a successful login.
type RegisterResult struct {
	AccountID           string
	PendingVerification bool
	SessionToken        string
	ChatToken           string
	Account             *Projection
}

// LoginResult is returned by [Engine.Login].
type LoginResult struct {
	SessionToken string
	ChatToken    string
	Account      Projection
}
