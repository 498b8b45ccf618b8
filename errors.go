package goCred

import "errors"

var (
	// ErrValidation is an exported constant or variable used by the credential engine.
	ErrValidation = errors.New("invalid input")
	// ErrAccountNotFound is an exported constant or variable used by the credential engine.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateAccount is an exported constant or variable used by the credential engine.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrAccountUnverified is an exported constant or variable used by the credential engine.
	ErrAccountUnverified = errors.New("account unverified")
	// ErrInvalidCredentials is an exported constant or variable used by the credential engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoPendingOtp is an exported constant or variable used by the credential engine.
	ErrNoPendingOtp = errors.New("no pending otp")
	// ErrInvalidOtp is an exported constant or variable used by the credential engine.
	ErrInvalidOtp = errors.New("invalid otp")
	// ErrNoPinSet is an exported constant or variable used by the credential engine.
	ErrNoPinSet = errors.New("no pin set")
	// ErrInvalidPin is an exported constant or variable used by the credential engine.
	ErrInvalidPin = errors.New("invalid pin")
	// ErrNotificationFailed is an exported constant or variable used by the credential engine.
	ErrNotificationFailed = errors.New("notification dispatch failed")
	// ErrSessionCreationFailed is an exported constant or variable used by the credential engine.
	ErrSessionCreationFailed = errors.New("session creation failed")
	// ErrStoreUnavailable is an exported constant or variable used by the credential engine.
	ErrStoreUnavailable = errors.New("credential backend unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the credential engine.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrProviderNotFound is an exported constant or variable used by the credential engine.
	ErrProviderNotFound = errors.New("provider account not found")
	// ErrProviderDuplicateEmail is an exported constant or variable used by the credential engine.
	ErrProviderDuplicateEmail = errors.New("provider duplicate email")
)
