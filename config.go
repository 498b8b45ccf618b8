package goCred

import (
	"errors"
	"time"
)

// Config defines a public type used by goCred APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session      SessionConfig
	Password     PasswordConfig
	Otp          OtpConfig
	Verification VerificationConfig
	Pin          PinConfig
	Mail         MailConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig configures the session token issuer.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	TokenTTL      time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	Secret        []byte // hs256 signing secret
	PrivateKey    []byte // ed25519
	PublicKey     []byte // ed25519
	Issuer        string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds the argon2id parameters used to protect passwords
// and PINs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
}

// OtpConfig configures one-time-code issuance and consumption.
//
// OtpConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OtpConfig struct {
	Digits      int
	TTL         time.Duration
	MaxAttempts int
	RedisPrefix string
}

// VerificationConfig selects the registration policy. When
// RequireBeforeLogin is true (the default), Register creates a pending
// account gated by an emailed OTP and Login rejects unverified accounts.
// When false, Register completes immediately and returns tokens — the
// legacy lineage.
type VerificationConfig struct {
	RequireBeforeLogin bool
}

// PinConfig configures the transaction PIN. Digits is the exact required
// length.
type PinConfig struct {
	Digits int
}

// MailConfig carries the subject lines used for outbound OTP notifications.
// Transport settings belong to the injected [mail.Sender], not here.
type MailConfig struct {
	RegistrationSubject  string
	PasswordResetSubject string
	PinResetSubject      string
}

// AuditConfig defines a public type used by goCred APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goCred APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration: OTP-gated registration,
// 4-digit one-hour codes, hs256 session tokens valid for 7 days.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TokenTTL:      7 * 24 * time.Hour,
			SigningMethod: "hs256",
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   6,
		},
		Otp: OtpConfig{
			Digits:      4,
			TTL:         time.Hour,
			MaxAttempts: 5,
			RedisPrefix: "co",
		},
		Verification: VerificationConfig{
			RequireBeforeLogin: true,
		},
		Pin: PinConfig{
			Digits: 4,
		},
		Mail: MailConfig{
			RegistrationSubject:  "Verify your account",
			PasswordResetSubject: "Your password reset code",
			PinResetSubject:      "Your PIN reset code",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Session.Secret = append([]byte(nil), cfg.Session.Secret...)
	out.Session.PrivateKey = append([]byte(nil), cfg.Session.PrivateKey...)
	out.Session.PublicKey = append([]byte(nil), cfg.Session.PublicKey...)
	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Session.TokenTTL <= 0 {
		return errors.New("session token TTL must be positive")
	}
	switch c.Session.SigningMethod {
	case "hs256":
		if len(c.Session.Secret) == 0 {
			return errors.New("hs256 requires a session secret")
		}
	case "ed25519":
		if len(c.Session.PrivateKey) == 0 {
			return errors.New("ed25519 requires a private key")
		}
	default:
		return errors.New("unsupported session signing method")
	}
	if c.Otp.Digits < 4 || c.Otp.Digits > 10 {
		return errors.New("otp digits must be between 4 and 10")
	}
	if c.Otp.TTL <= 0 {
		return errors.New("otp TTL must be positive")
	}
	if c.Otp.MaxAttempts <= 0 {
		return errors.New("otp max attempts must be positive")
	}
	if c.Pin.Digits < 4 || c.Pin.Digits > 8 {
		return errors.New("pin digits must be between 4 and 8")
	}
	if c.Password.MinLength < 6 {
		return errors.New("password minimum length must be at least 6")
	}
	return nil
}
