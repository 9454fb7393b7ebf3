package store

import (
	"context"
	"testing"

	"github.com/whereismy/whereismy/internal/db"
)

func TestGetJWTSecretStable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("expected a 64-char hex secret, got %d chars", len(first))
	}

	// Every later call returns the persisted secret, not a new candidate,
	// or issued tokens would stop validating across restarts.
	second, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret (again): %v", err)
	}
	if second != first {
		t.Error("expected the stored secret to win over the fresh candidate")
	}
}

func TestEnsureSettingKeepsFirstValue(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	got, err := ensureSetting(ctx, database, "greeting", "hello")
	if err != nil {
		t.Fatalf("ensureSetting: %v", err)
	}
	if got != "hello" {
		t.Errorf("expected the new value back, got %q", got)
	}

	got, err = ensureSetting(ctx, database, "greeting", "goodbye")
	if err != nil {
		t.Fatalf("ensureSetting (existing): %v", err)
	}
	if got != "hello" {
		t.Errorf("expected the original value to stick, got %q", got)
	}
}
