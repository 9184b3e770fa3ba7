package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type countingStore struct {
	*memStore
	finds int
}

func (s *countingStore) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	s.finds++
	return s.memStore.FindRoleByName(ctx, name)
}

func newCacheFixture(t *testing.T) (*CachedStore, *countingStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backing := &countingStore{memStore: newMemStore()}
	return NewCachedStore(backing, client, 0, nil), backing
}

func TestCachedStoreServesRepeatLookupsFromCache(t *testing.T) {
	cached, backing := newCacheFixture(t)
	ctx := context.Background()

	def := validDefinition()
	if _, err := cached.SaveRole(ctx, def); err != nil {
		t.Fatalf("save: %v", err)
	}

	for i := 0; i < 3; i++ {
		role, err := cached.FindRoleByName(ctx, def.Name)
		if err != nil {
			t.Fatalf("find %d: %v", i, err)
		}
		if role.Name != def.Name {
			t.Fatalf("unexpected role %s", role.Name)
		}
	}
	if backing.finds != 1 {
		t.Fatalf("expected one store read, got %d", backing.finds)
	}
}

func TestCachedStoreCachesMisses(t *testing.T) {
	cached, backing := newCacheFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cached.FindRoleByName(ctx, "ghost"); !errors.Is(err, ErrRoleNotFound) {
			t.Fatalf("find %d: expected ErrRoleNotFound, got %v", i, err)
		}
	}
	if backing.finds != 1 {
		t.Fatalf("expected one store read for repeated misses, got %d", backing.finds)
	}
}

func TestCachedStoreSaveInvalidates(t *testing.T) {
	cached, backing := newCacheFixture(t)
	ctx := context.Background()

	def := validDefinition()
	if _, err := cached.SaveRole(ctx, def); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := cached.FindRoleByName(ctx, def.Name); err != nil {
		t.Fatalf("find: %v", err)
	}

	def.Description = "updated"
	if _, err := cached.SaveRole(ctx, def); err != nil {
		t.Fatalf("save updated: %v", err)
	}

	role, err := cached.FindRoleByName(ctx, def.Name)
	if err != nil {
		t.Fatalf("find after update: %v", err)
	}
	if role.Description != "updated" {
		t.Fatalf("stale cache entry survived invalidation: %q", role.Description)
	}
	if backing.finds != 2 {
		t.Fatalf("expected two store reads, got %d", backing.finds)
	}
}

func TestCachedStoreDeleteAllFlushes(t *testing.T) {
	cached, _ := newCacheFixture(t)
	ctx := context.Background()

	def := validDefinition()
	if _, err := cached.SaveRole(ctx, def); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := cached.FindRoleByName(ctx, def.Name); err != nil {
		t.Fatalf("find: %v", err)
	}

	if err := cached.DeleteAllRoles(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if _, err := cached.FindRoleByName(ctx, def.Name); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound after flush, got %v", err)
	}
}
