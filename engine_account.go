package goCred

import (
	"context"
	"errors"
)

// GetAccount describes the getaccount operation and its observable behavior.
//
// GetAccount may return an error when input validation, dependency calls, or security checks fail.
// GetAccount does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) GetAccount(ctx context.Context, id string) (*Projection, error) {
	if e == nil || e.accounts == nil {
		return nil, ErrEngineNotReady
	}
	if id == "" {
		return nil, ErrValidation
	}

	account, err := e.accountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	projection := account.Projection()
	return &projection, nil
}

// DeleteAccount describes the deleteaccount operation and its observable behavior.
//
// DeleteAccount may return an error when input validation, dependency calls, or security checks fail.
// DeleteAccount does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) DeleteAccount(ctx context.Context, id string) error {
	if e == nil || e.accounts == nil {
		return ErrEngineNotReady
	}
	if id == "" {
		e.emitAudit(ctx, auditEventAccountDelete, false, "", ErrValidation, nil)
		return ErrValidation
	}

	if err := e.accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			e.emitAudit(ctx, auditEventAccountDelete, false, id, ErrAccountNotFound, nil)
			return ErrAccountNotFound
		}
		e.emitAudit(ctx, auditEventAccountDelete, false, id, ErrStoreUnavailable, nil)
		return errors.Join(ErrStoreUnavailable, err)
	}

	// A pending code for a deleted account must not outlive it.
	if e.otpStore != nil {
		_ = e.otpStore.Delete(ctx, id)
	}

	e.metricInc(MetricAccountDeleted)
	e.emitAudit(ctx, auditEventAccountDelete, true, id, nil, nil)
	return nil
}
