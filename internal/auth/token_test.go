package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/vendora/vendora/internal/shared"
)

func tokenFixture(t *testing.T) (*TokenManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenManager(client, time.Hour), mr
}

func TestTokenIssueAndLookup(t *testing.T) {
	tm, _ := tokenFixture(t)
	ctx := context.Background()

	user := &User{
		ID:               42,
		Email:            "agent@vendora.local",
		Role:             "field_refill_agent",
		AssignedMachines: []string{"m-1", "m-2"},
	}
	token, err := tm.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	principal, err := tm.Lookup(ctx, token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if principal.ID != 42 || principal.Role != "field_refill_agent" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
	if len(principal.AssignedMachines) != 2 {
		t.Fatalf("assigned machines lost: %v", principal.AssignedMachines)
	}
}

func TestTokenLookupUnknown(t *testing.T) {
	tm, _ := tokenFixture(t)

	if _, err := tm.Lookup(context.Background(), "bogus"); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenRevoke(t *testing.T) {
	tm, _ := tokenFixture(t)
	ctx := context.Background()

	token, err := tm.Issue(ctx, &User{ID: 1, Email: "a@b.c", Role: "auditor"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := tm.Revoke(ctx, token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := tm.Lookup(ctx, token); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("revoked token must be invalid, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	tm, mr := tokenFixture(t)
	ctx := context.Background()

	token, err := tm.Issue(ctx, &User{ID: 1, Email: "a@b.c", Role: "auditor"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	mr.FastForward(2 * time.Hour)
	if _, err := tm.Lookup(ctx, token); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expired token must be invalid, got %v", err)
	}
}
