package goCred

import (
	"context"
	"errors"
)

// CreatePin describes the createpin operation and its observable behavior.
//
// CreatePin may return an error when input validation, dependency calls, or security checks fail.
// CreatePin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CreatePin(ctx context.Context, email, pin string) error {
	if e == nil || e.accounts == nil || e.passwordHash == nil {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" || !e.validPin(pin) {
		e.emitAudit(ctx, auditEventPinCreate, false, "", ErrValidation, nil)
		return ErrValidation
	}

	account, err := e.accountByEmail(ctx, email)
	if err != nil {
		e.emitAudit(ctx, auditEventPinCreate, false, "", err, nil)
		return err
	}

	// Overwrite is unconditional: setting a PIN where one exists replaces
	// it without an OTP. Guarded replacement goes through ResetPin.
	hash, err := e.passwordHash.Hash(pin)
	if err != nil {
		e.emitAudit(ctx, auditEventPinCreate, false, account.ID, err, nil)
		return err
	}
	pin = ""

	if err := e.accounts.UpdatePinHash(ctx, account.ID, hash); err != nil {
		e.emitAudit(ctx, auditEventPinCreate, false, account.ID, ErrStoreUnavailable, nil)
		return errors.Join(ErrStoreUnavailable, err)
	}

	e.metricInc(MetricPinCreated)
	e.emitAudit(ctx, auditEventPinCreate, true, account.ID, nil, nil)
	return nil
}

// VerifyPin describes the verifypin operation and its observable behavior.
//
// VerifyPin may return an error when input validation, dependency calls, or security checks fail.
// VerifyPin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyPin(ctx context.Context, email, pin string) error {
	if e == nil || e.accounts == nil || e.passwordHash == nil {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" || !e.validPin(pin) {
		e.metricInc(MetricPinVerifyFailure)
		e.emitAudit(ctx, auditEventPinVerify, false, "", ErrValidation, nil)
		return ErrValidation
	}

	account, err := e.accountByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricPinVerifyFailure)
		e.emitAudit(ctx, auditEventPinVerify, false, "", err, nil)
		return err
	}

	if account.PinHash == "" {
		e.metricInc(MetricPinVerifyFailure)
		e.emitAudit(ctx, auditEventPinVerify, false, account.ID, ErrNoPinSet, nil)
		return ErrNoPinSet
	}

	ok, err := e.passwordHash.Verify(pin, account.PinHash)
	if err != nil || !ok {
		e.metricInc(MetricPinVerifyFailure)
		e.emitAudit(ctx, auditEventPinVerify, false, account.ID, ErrInvalidPin, nil)
		return ErrInvalidPin
	}
	pin = ""

	e.emitAudit(ctx, auditEventPinVerify, true, account.ID, nil, nil)
	return nil
}

func (e *Engine) validPin(pin string) bool {
	return isNumericString(pin) && len(pin) == e.config.Pin.Digits
}
