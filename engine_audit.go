package goCred

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventRegisterSuccess       = "register_success"
	auditEventRegisterFailure       = "register_failure"
	auditEventRegisterDuplicate     = "register_duplicate"
	auditEventVerificationConfirm   = "registration_verification_confirm"
	auditEventLoginSuccess          = "login_success"
	auditEventLoginFailure          = "login_failure"
	auditEventOtpRequest            = "otp_request"
	auditEventOtpProbe              = "otp_probe"
	auditEventOtpDispatch           = "otp_dispatch"
	auditEventPasswordResetConfirm  = "password_reset_confirm"
	auditEventPinResetConfirm       = "pin_reset_confirm"
	auditEventPinCreate             = "pin_create"
	auditEventPinVerify             = "pin_verify"
	auditEventAccountDelete         = "account_delete"
)

// AuditErrorCode defines a public type used by goCred APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrValidation          AuditErrorCode = "validation"
	auditErrAccountNotFound     AuditErrorCode = "account_not_found"
	auditErrDuplicate           AuditErrorCode = "duplicate"
	auditErrAccountUnverified   AuditErrorCode = "account_unverified"
	auditErrInvalidCredentials  AuditErrorCode = "invalid_credentials"
	auditErrNoPendingOtp        AuditErrorCode = "no_pending_otp"
	auditErrInvalidOtp          AuditErrorCode = "invalid_otp"
	auditErrNoPinSet            AuditErrorCode = "no_pin_set"
	auditErrInvalidPin          AuditErrorCode = "invalid_pin"
	auditErrNotificationFailed  AuditErrorCode = "notification_failed"
	auditErrSessionCreation     AuditErrorCode = "session_creation_failed"
	auditErrUnavailable         AuditErrorCode = "backend_unavailable"
	auditErrInternal            AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrValidation):
		return auditErrValidation
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrProviderNotFound):
		return auditErrAccountNotFound
	case errors.Is(err, ErrDuplicateAccount),
		errors.Is(err, ErrProviderDuplicateEmail):
		return auditErrDuplicate
	case errors.Is(err, ErrAccountUnverified):
		return auditErrAccountUnverified
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrNoPendingOtp):
		return auditErrNoPendingOtp
	case errors.Is(err, ErrInvalidOtp):
		return auditErrInvalidOtp
	case errors.Is(err, ErrNoPinSet):
		return auditErrNoPinSet
	case errors.Is(err, ErrInvalidPin):
		return auditErrInvalidPin
	case errors.Is(err, ErrNotificationFailed):
		return auditErrNotificationFailed
	case errors.Is(err, ErrSessionCreationFailed):
		return auditErrSessionCreation
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
