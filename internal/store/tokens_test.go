package store

import (
	"context"
	"testing"
	"time"

	"github.com/whereismy/whereismy/internal/db"
)

func TestRevokeToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected an unknown jti to not be revoked")
	}

	if err := RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	revoked, err = IsTokenRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked (after revoke): %v", err)
	}
	if !revoked {
		t.Error("expected the jti to be revoked")
	}

	// Revoking the same jti twice is a no-op, not an error.
	if err := RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken (again): %v", err)
	}
}

func TestRevokeTokenSweepsExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// Seed a revocation whose token has long expired.
	_, err := database.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES ('stale', ?)`,
		time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("seeding stale revocation: %v", err)
	}

	// The next revocation sweeps it out.
	if err := RevokeToken(ctx, database, "fresh", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	var n int
	err = database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = 'stale'`).Scan(&n)
	if err != nil {
		t.Fatalf("counting stale rows: %v", err)
	}
	if n != 0 {
		t.Error("expected the expired revocation to be swept")
	}
}
