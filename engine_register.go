package goCred

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DrStellar9/goCred/internal"
	"github.com/DrStellar9/goCred/internal/stores"
)

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if e == nil || e.accounts == nil || e.passwordHash == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	if email == "" || !strings.Contains(email, "@") || username == "" {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", ErrValidation, func() map[string]string {
			return map[string]string{
				"reason": "missing_fields",
			}
		})
		return nil, ErrValidation
	}
	if len(req.Password) < e.config.Password.MinLength {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", ErrValidation, func() map[string]string {
			return map[string]string{
				"reason": "password_too_short",
			}
		})
		return nil, ErrValidation
	}

	_, err := e.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegisterDuplicate, false, "", ErrDuplicateAccount, func() map[string]string {
			return map[string]string{
				"email": email,
			}
		})
		return nil, ErrDuplicateAccount
	case errors.Is(err, ErrProviderNotFound):
	default:
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", ErrStoreUnavailable, nil)
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	passwordHash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"reason": "password_hash_failed",
			}
		})
		return nil, err
	}

	gated := e.config.Verification.RequireBeforeLogin

	account, err := e.accounts.Create(ctx, CreateAccountInput{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Verified:     !gated,
	})
	if err != nil {
		// Concurrent registration can lose the race between the duplicate
		// probe and Create; the provider's uniqueness constraint decides.
		if errors.Is(err, ErrProviderDuplicateEmail) {
			e.metricInc(MetricRegisterDuplicate)
			e.emitAudit(ctx, auditEventRegisterDuplicate, false, "", ErrDuplicateAccount, func() map[string]string {
				return map[string]string{
					"email": email,
				}
			})
			return nil, ErrDuplicateAccount
		}
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", ErrStoreUnavailable, nil)
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	if gated {
		if err := e.issueOtp(ctx, account, e.config.Mail.RegistrationSubject); err != nil {
			// The pending account and its code are already committed; the
			// caller can retry delivery through ForgotPassword-style reissue.
			e.metricInc(MetricRegisterFailure)
			e.emitAudit(ctx, auditEventRegisterFailure, false, account.ID, err, func() map[string]string {
				return map[string]string{
					"reason": "otp_dispatch_failed",
				}
			})
			return nil, err
		}

		e.metricInc(MetricRegisterSuccess)
		e.emitAudit(ctx, auditEventRegisterSuccess, true, account.ID, nil, nil)

		projection := account.Projection()
		return &RegisterResult{
			AccountID:           account.ID,
			PendingVerification: true,
			Account:             &projection,
		}, nil
	}

	sessionToken, chatToken, err := e.issueTokens(account)
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, account.ID, err, func() map[string]string {
			return map[string]string{
				"reason": "token_issue_failed",
			}
		})
		return nil, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, account.ID, nil, nil)

	projection := account.Projection()
	return &RegisterResult{
		AccountID:    account.ID,
		SessionToken: sessionToken,
		ChatToken:    chatToken,
		Account:      &projection,
	}, nil
}

// VerifyRegistrationOtp describes the verifyregistrationotp operation and its observable behavior.
//
// VerifyRegistrationOtp may return an error when input validation, dependency calls, or security checks fail.
// VerifyRegistrationOtp does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyRegistrationOtp(ctx context.Context, email, otp string) error {
	if e == nil || e.accounts == nil || e.otpStore == nil {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" || !isNumericString(otp) {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, auditEventVerificationConfirm, false, "", ErrValidation, nil)
		return ErrValidation
	}

	account, err := e.accountByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, auditEventVerificationConfirm, false, "", err, nil)
		return err
	}

	if err := e.consumeOtp(ctx, account.ID, otp); err != nil {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, auditEventVerificationConfirm, false, account.ID, err, nil)
		return err
	}

	if err := e.accounts.MarkVerified(ctx, account.ID); err != nil {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, auditEventVerificationConfirm, false, account.ID, ErrStoreUnavailable, nil)
		return errors.Join(ErrStoreUnavailable, err)
	}

	e.metricInc(MetricVerificationSuccess)
	e.emitAudit(ctx, auditEventVerificationConfirm, true, account.ID, nil, nil)
	return nil
}

// issueOtp generates a fresh code, persists its hash keyed by account id
// (superseding any earlier code), and only then emails the plaintext. The
// plaintext never touches storage.
func (e *Engine) issueOtp(ctx context.Context, account Account, subject string) error {
	if e.otpStore == nil || e.mailer == nil {
		return ErrEngineNotReady
	}

	code, err := internal.NewOTP(e.config.Otp.Digits)
	if err != nil {
		return err
	}

	record := &stores.OtpRecord{
		AccountID:  account.ID,
		SecretHash: internal.HashOtp(code),
		ExpiresAt:  time.Now().Add(e.config.Otp.TTL).Unix(),
	}
	if err := e.otpStore.Save(ctx, record, e.config.Otp.TTL); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	if err := e.mailer.Send(ctx, account.Email, subject, otpMessageBody(account.Username, code, e.config.Otp.TTL)); err != nil {
		e.metricInc(MetricMailFailure)
		return errors.Join(ErrNotificationFailed, err)
	}

	e.metricInc(MetricOtpIssued)
	e.emitAudit(ctx, auditEventOtpDispatch, true, account.ID, nil, nil)
	return nil
}

// consumeOtp maps store results onto the engine taxonomy. Exhausting the
// attempt budget destroys the record, so later calls report no pending code.
func (e *Engine) consumeOtp(ctx context.Context, accountID, otp string) error {
	err := e.otpStore.Consume(ctx, accountID, internal.HashOtp(otp), e.config.Otp.MaxAttempts)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, stores.ErrOtpNotFound):
		return ErrNoPendingOtp
	case errors.Is(err, stores.ErrOtpMismatch):
		e.metricInc(MetricOtpInvalid)
		return ErrInvalidOtp
	case errors.Is(err, stores.ErrOtpAttemptsExceeded):
		e.metricInc(MetricOtpAttemptsExceeded)
		return ErrInvalidOtp
	default:
		return errors.Join(ErrStoreUnavailable, err)
	}
}

func otpMessageBody(username, code string, ttl time.Duration) string {
	minutes := int(ttl.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf(
		"Hi %s,\r\n\r\nYour one-time code is: %s\r\nIt expires in %d minutes.\r\n\r\nIf you did not request this code, you can ignore this message.\r\n",
		username, code, minutes,
	)
}
