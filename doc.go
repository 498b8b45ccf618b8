// Package goCred provides the credential lifecycle engine for a chat-enabled
// application backend: OTP-gated registration, email verification, login,
// password/PIN reset, and PIN checks, backed by a Redis one-time-code store.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goCred is the public surface. It exposes [Engine], [Builder], [Config], the
// [AccountProvider] contract, and value types (Projection, LoginResult,
// MetricsSnapshot). All internal coordination — OTP record encoding, atomic
// consumption, audit dispatch — lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or record encodings in its public
//     API.
//   - Store any secret (password, PIN, OTP) in recoverable form. Passwords and
//     PINs are argon2id hashes; OTP codes are stored as SHA-256 digests.
//   - Roll back persisted account/OTP state when a notification dispatch
//     fails. Mail delivery is best-effort after commit; callers resend via the
//     Forgot* operations.
//
// # Consistency contract
//
// An account has at most one live OTP record at any time. Regeneration
// replaces the record atomically and consumption is a single atomic
// check-and-delete, so concurrent Forgot*/Reset* calls for the same account
// can never leave two live codes or consume a code twice.
package goCred
