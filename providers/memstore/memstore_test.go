package memstore

import (
	"context"
	"errors"
	"testing"

	goCred "github.com/DrStellar9/goCred"
)

func TestCreateAndGet(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.Create(ctx, goCred.CreateAccountInput{
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "$argon2id$...",
		Verified:     false,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create returned empty id")
	}

	byEmail, err := store.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("GetByEmail id = %q, want %q", byEmail.ID, created.ID)
	}

	byID, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Fatalf("GetByID email = %q", byID.Email)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.Create(ctx, goCred.CreateAccountInput{Email: "alice@example.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, goCred.CreateAccountInput{Email: "alice@example.com"}); !errors.Is(err, goCred.ErrProviderDuplicateEmail) {
		t.Fatalf("expected ErrProviderDuplicateEmail, got %v", err)
	}
}

func TestGetUnknownAccount(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, goCred.ErrProviderNotFound) {
		t.Fatalf("GetByEmail: expected ErrProviderNotFound, got %v", err)
	}
	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, goCred.ErrProviderNotFound) {
		t.Fatalf("GetByID: expected ErrProviderNotFound, got %v", err)
	}
}

func TestUpdates(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.Create(ctx, goCred.CreateAccountInput{
		Email:        "alice@example.com",
		PasswordHash: "old-hash",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.UpdatePasswordHash(ctx, created.ID, "new-hash"); err != nil {
		t.Fatalf("UpdatePasswordHash failed: %v", err)
	}
	if err := store.UpdatePinHash(ctx, created.ID, "pin-hash"); err != nil {
		t.Fatalf("UpdatePinHash failed: %v", err)
	}
	if err := store.MarkVerified(ctx, created.ID); err != nil {
		t.Fatalf("MarkVerified failed: %v", err)
	}

	account, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if account.PasswordHash != "new-hash" {
		t.Fatalf("password hash = %q", account.PasswordHash)
	}
	if account.PinHash != "pin-hash" {
		t.Fatalf("pin hash = %q", account.PinHash)
	}
	if !account.Verified {
		t.Fatal("account not verified")
	}
	if !account.UpdatedAt.After(created.UpdatedAt) && !account.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatal("UpdatedAt moved backwards")
	}

	if err := store.UpdatePasswordHash(ctx, "missing", "x"); !errors.Is(err, goCred.ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.Create(ctx, goCred.CreateAccountInput{Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, created.ID); !errors.Is(err, goCred.ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound after delete, got %v", err)
	}

	// The email slot frees up for re-registration.
	if _, err := store.Create(ctx, goCred.CreateAccountInput{Email: "alice@example.com"}); err != nil {
		t.Fatalf("re-Create after delete failed: %v", err)
	}

	if err := store.Delete(ctx, "missing"); !errors.Is(err, goCred.ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}
