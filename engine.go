package goCred

import (
	"context"
	"errors"
	"strings"

	"github.com/DrStellar9/goCred/chattoken"
	"github.com/DrStellar9/goCred/internal/stores"
	"github.com/DrStellar9/goCred/jwt"
	"github.com/DrStellar9/goCred/mail"
	"github.com/DrStellar9/goCred/password"
)

// Engine defines a public type used by goCred APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	accounts     AccountProvider
	otpStore     *stores.OtpStore
	mailer       mail.Sender
	chat         chattoken.Minter
	sessions     *jwt.Manager
	passwordHash *password.Argon2
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isNumericString(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// accountByEmail maps provider-level lookup errors onto the engine taxonomy.
func (e *Engine) accountByEmail(ctx context.Context, email string) (Account, error) {
	account, err := e.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, errors.Join(ErrStoreUnavailable, err)
	}
	return account, nil
}

func (e *Engine) accountByID(ctx context.Context, id string) (Account, error) {
	account, err := e.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, errors.Join(ErrStoreUnavailable, err)
	}
	return account, nil
}

// issueTokens mints the session JWT and, when a chat minter is configured,
// the chat provider token. A nil minter yields an empty chat token, not an
// error.
func (e *Engine) issueTokens(account Account) (string, string, error) {
	sessionToken, err := e.sessions.CreateSession(account.ID, account.Email)
	if err != nil {
		return "", "", errors.Join(ErrSessionCreationFailed, err)
	}

	var chatToken string
	if e.chat != nil {
		chatToken, err = e.chat.MintUserToken(account.ID)
		if err != nil {
			return "", "", errors.Join(ErrSessionCreationFailed, err)
		}
	}

	return sessionToken, chatToken, nil
}
