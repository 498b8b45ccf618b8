package goCred

import (
	"context"
	"errors"

	"github.com/DrStellar9/goCred/internal"
	"github.com/DrStellar9/goCred/internal/stores"
)

// ForgotPassword describes the forgotpassword operation and its observable behavior.
//
// ForgotPassword may return an error when input validation, dependency calls, or security checks fail.
// ForgotPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ForgotPassword(ctx context.Context, email string) error {
	return e.requestOtp(ctx, email, e.config.Mail.PasswordResetSubject)
}

// ForgotPin describes the forgotpin operation and its observable behavior.
//
// ForgotPin may return an error when input validation, dependency calls, or security checks fail.
// ForgotPin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ForgotPin(ctx context.Context, email string) error {
	return e.requestOtp(ctx, email, e.config.Mail.PinResetSubject)
}

// requestOtp regenerates the account's pending code. A second request
// supersedes the first atomically: the store keys records by account id, so
// the earlier code simply stops matching.
func (e *Engine) requestOtp(ctx context.Context, email, subject string) error {
	if e == nil || e.accounts == nil || e.otpStore == nil || e.mailer == nil {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" {
		e.emitAudit(ctx, auditEventOtpRequest, false, "", ErrValidation, nil)
		return ErrValidation
	}

	account, err := e.accountByEmail(ctx, email)
	if err != nil {
		e.emitAudit(ctx, auditEventOtpRequest, false, "", err, nil)
		return err
	}

	if err := e.issueOtp(ctx, account, subject); err != nil {
		e.emitAudit(ctx, auditEventOtpRequest, false, account.ID, err, nil)
		return err
	}

	e.emitAudit(ctx, auditEventOtpRequest, true, account.ID, nil, nil)
	return nil
}

// VerifyOtp describes the verifyotp operation and its observable behavior.
//
// VerifyOtp may return an error when input validation, dependency calls, or security checks fail.
// VerifyOtp does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyOtp(ctx context.Context, email, otp string) error {
	if e == nil || e.accounts == nil || e.otpStore == nil {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" || !isNumericString(otp) {
		e.emitAudit(ctx, auditEventOtpProbe, false, "", ErrValidation, nil)
		return ErrValidation
	}

	account, err := e.accountByEmail(ctx, email)
	if err != nil {
		e.emitAudit(ctx, auditEventOtpProbe, false, "", err, nil)
		return err
	}

	// A probe never consumes the record and never burns an attempt; the
	// record stays valid for the confirming reset call.
	err = e.otpStore.Peek(ctx, account.ID, internal.HashOtp(otp))
	switch {
	case err == nil:
		e.emitAudit(ctx, auditEventOtpProbe, true, account.ID, nil, nil)
		return nil
	case errors.Is(err, stores.ErrOtpNotFound):
		e.emitAudit(ctx, auditEventOtpProbe, false, account.ID, ErrNoPendingOtp, nil)
		return ErrNoPendingOtp
	case errors.Is(err, stores.ErrOtpMismatch):
		e.metricInc(MetricOtpInvalid)
		e.emitAudit(ctx, auditEventOtpProbe, false, account.ID, ErrInvalidOtp, nil)
		return ErrInvalidOtp
	default:
		e.emitAudit(ctx, auditEventOtpProbe, false, account.ID, ErrStoreUnavailable, nil)
		return errors.Join(ErrStoreUnavailable, err)
	}
}

// ResetPassword describes the resetpassword operation and its observable behavior.
//
// ResetPassword may return an error when input validation, dependency calls, or security checks fail.
// ResetPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	if e == nil || e.accounts == nil || e.otpStore == nil || e.passwordHash == nil {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" || !isNumericString(otp) || len(newPassword) < e.config.Password.MinLength {
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, "", ErrValidation, nil)
		return ErrValidation
	}

	account, err := e.accountByEmail(ctx, email)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, "", err, nil)
		return err
	}

	if err := e.consumeOtp(ctx, account.ID, otp); err != nil {
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, account.ID, err, nil)
		return err
	}

	newHash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, account.ID, err, nil)
		return err
	}
	newPassword = ""

	if err := e.accounts.UpdatePasswordHash(ctx, account.ID, newHash); err != nil {
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, account.ID, ErrStoreUnavailable, nil)
		return errors.Join(ErrStoreUnavailable, err)
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, auditEventPasswordResetConfirm, true, account.ID, nil, nil)
	return nil
}

// ResetPin describes the resetpin operation and its observable behavior.
//
// ResetPin may return an error when input validation, dependency calls, or security checks fail.
// ResetPin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ResetPin(ctx context.Context, email, otp, newPin string) error {
	if e == nil || e.accounts == nil || e.otpStore == nil || e.passwordHash == nil {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" || !isNumericString(otp) || !e.validPin(newPin) {
		e.emitAudit(ctx, auditEventPinResetConfirm, false, "", ErrValidation, nil)
		return ErrValidation
	}

	account, err := e.accountByEmail(ctx, email)
	if err != nil {
		e.emitAudit(ctx, auditEventPinResetConfirm, false, "", err, nil)
		return err
	}

	if err := e.consumeOtp(ctx, account.ID, otp); err != nil {
		e.emitAudit(ctx, auditEventPinResetConfirm, false, account.ID, err, nil)
		return err
	}

	newHash, err := e.passwordHash.Hash(newPin)
	if err != nil {
		e.emitAudit(ctx, auditEventPinResetConfirm, false, account.ID, err, nil)
		return err
	}
	newPin = ""

	if err := e.accounts.UpdatePinHash(ctx, account.ID, newHash); err != nil {
		e.emitAudit(ctx, auditEventPinResetConfirm, false, account.ID, ErrStoreUnavailable, nil)
		return errors.Join(ErrStoreUnavailable, err)
	}

	e.metricInc(MetricPinResetSuccess)
	e.emitAudit(ctx, auditEventPinResetConfirm, true, account.ID, nil, nil)
	return nil
}
