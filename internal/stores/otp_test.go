package stores

import (
	"context"
	"crypto/sha256"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *OtpStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewOtpStore(rdb, "co")
}

func hashCode(code string) [32]byte {
	return sha256.Sum256([]byte(code))
}

func saveRecord(t *testing.T, store *OtpStore, accountID, code string, ttl time.Duration) {
	t.Helper()

	err := store.Save(context.Background(), &OtpRecord{
		AccountID:  accountID,
		SecretHash: hashCode(code),
		ExpiresAt:  time.Now().Add(ttl).Unix(),
	}, ttl)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}

func TestOtpConsumeOnce(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	saveRecord(t, store, "acct-1", "1234", time.Hour)

	if err := store.Consume(ctx, "acct-1", hashCode("1234"), 5); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if err := store.Consume(ctx, "acct-1", hashCode("1234"), 5); !errors.Is(err, ErrOtpNotFound) {
		t.Fatalf("second Consume: expected ErrOtpNotFound, got %v", err)
	}
}

func TestOtpConsumeMismatchCountsAttempts(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	saveRecord(t, store, "acct-1", "1234", time.Hour)

	for i := 0; i < 4; i++ {
		if err := store.Consume(ctx, "acct-1", hashCode("0000"), 5); !errors.Is(err, ErrOtpMismatch) {
			t.Fatalf("attempt %d: expected ErrOtpMismatch, got %v", i, err)
		}
	}

	// Fifth mismatch exhausts the budget and destroys the record.
	if err := store.Consume(ctx, "acct-1", hashCode("0000"), 5); !errors.Is(err, ErrOtpAttemptsExceeded) {
		t.Fatalf("expected ErrOtpAttemptsExceeded, got %v", err)
	}
	if err := store.Consume(ctx, "acct-1", hashCode("1234"), 5); !errors.Is(err, ErrOtpNotFound) {
		t.Fatalf("expected ErrOtpNotFound after exhaustion, got %v", err)
	}
}

func TestOtpSaveSupersedes(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	saveRecord(t, store, "acct-1", "1111", time.Hour)
	saveRecord(t, store, "acct-1", "2222", time.Hour)

	if err := store.Peek(ctx, "acct-1", hashCode("1111")); !errors.Is(err, ErrOtpMismatch) {
		t.Fatalf("superseded code: expected ErrOtpMismatch, got %v", err)
	}
	if err := store.Consume(ctx, "acct-1", hashCode("2222"), 5); err != nil {
		t.Fatalf("latest code Consume failed: %v", err)
	}
}

func TestOtpTTLExpiry(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	saveRecord(t, store, "acct-1", "1234", time.Minute)

	mr.FastForward(time.Minute + time.Second)

	if err := store.Peek(ctx, "acct-1", hashCode("1234")); !errors.Is(err, ErrOtpNotFound) {
		t.Fatalf("Peek after expiry: expected ErrOtpNotFound, got %v", err)
	}
	if err := store.Consume(ctx, "acct-1", hashCode("1234"), 5); !errors.Is(err, ErrOtpNotFound) {
		t.Fatalf("Consume after expiry: expected ErrOtpNotFound, got %v", err)
	}
}

func TestOtpPeekDoesNotMutate(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	saveRecord(t, store, "acct-1", "1234", time.Hour)

	// Repeated wrong probes never burn the attempt budget.
	for i := 0; i < 10; i++ {
		if err := store.Peek(ctx, "acct-1", hashCode("0000")); !errors.Is(err, ErrOtpMismatch) {
			t.Fatalf("probe %d: expected ErrOtpMismatch, got %v", i, err)
		}
	}

	if err := store.Consume(ctx, "acct-1", hashCode("1234"), 5); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
}

func TestOtpAccountsAreIsolated(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	saveRecord(t, store, "acct-1", "1111", time.Hour)
	saveRecord(t, store, "acct-2", "2222", time.Hour)

	if err := store.Consume(ctx, "acct-1", hashCode("1111"), 5); err != nil {
		t.Fatalf("acct-1 Consume failed: %v", err)
	}
	if err := store.Consume(ctx, "acct-2", hashCode("2222"), 5); err != nil {
		t.Fatalf("acct-2 Consume failed: %v", err)
	}
}

func TestOtpDelete(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	saveRecord(t, store, "acct-1", "1234", time.Hour)

	if err := store.Delete(ctx, "acct-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Peek(ctx, "acct-1", hashCode("1234")); !errors.Is(err, ErrOtpNotFound) {
		t.Fatalf("expected ErrOtpNotFound after delete, got %v", err)
	}
}

func TestOtpRecordRoundTrip(t *testing.T) {
	record := &OtpRecord{
		AccountID:  "acct-42",
		SecretHash: hashCode("9876"),
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
		Attempts:   3,
	}

	encoded, err := encodeOtpRecord(record)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := decodeOtpRecord(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.AccountID != record.AccountID ||
		decoded.SecretHash != record.SecretHash ||
		decoded.ExpiresAt != record.ExpiresAt ||
		decoded.Attempts != record.Attempts {
		t.Fatalf("round trip mismatch: %+v != %+v", decoded, record)
	}
}

func TestOtpDecodeRejectsUnknownVersion(t *testing.T) {
	record := &OtpRecord{
		AccountID:  "acct-1",
		SecretHash: hashCode("1234"),
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
	}

	encoded, err := encodeOtpRecord(record)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	encoded[0] = 99

	if _, err := decodeOtpRecord(encoded); err == nil {
		t.Fatal("expected version error")
	}
}
