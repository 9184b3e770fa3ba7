package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// notFoundMarker is cached for missing roles so repeated lookups of a
// nonexistent role do not hammer the store.
const notFoundMarker = "__missing__"

// CachedStore is a read-through cache in front of a Store. The registry is
// read-mostly: cache entries carry a short TTL and writes invalidate. Cache
// failures are best effort and always fall through to the backing store.
type CachedStore struct {
	store  Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedStore wraps store with a redis read-through cache.
func NewCachedStore(store Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedStore{store: store, client: client, ttl: ttl, logger: logger}
}

func roleKey(name string) string {
	return "rbac:role:" + name
}

// FindRoleByName serves active-role lookups from cache when possible.
func (c *CachedStore) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	payload, err := c.client.Get(ctx, roleKey(name)).Bytes()
	if err == nil {
		if string(payload) == notFoundMarker {
			return nil, ErrRoleNotFound
		}
		var role Role
		if err := json.Unmarshal(payload, &role); err == nil {
			if !role.IsActive {
				return nil, ErrRoleNotFound
			}
			return &role, nil
		}
	} else if !errors.Is(err, redis.Nil) && c.logger != nil {
		c.logger.Warn("role cache read", slog.Any("error", err))
	}

	role, err := c.store.FindRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			c.set(ctx, roleKey(name), []byte(notFoundMarker))
		}
		return nil, err
	}
	if data, err := json.Marshal(role); err == nil {
		c.set(ctx, roleKey(name), data)
	}
	return role, nil
}

// FindRoleByNameAny bypasses the cache: include-inactive lookups serve
// administrative paths where staleness is not acceptable.
func (c *CachedStore) FindRoleByNameAny(ctx context.Context, name string) (*Role, error) {
	return c.store.FindRoleByNameAny(ctx, name)
}

// ListActiveRoles passes through to the store.
func (c *CachedStore) ListActiveRoles(ctx context.Context) ([]Role, error) {
	return c.store.ListActiveRoles(ctx)
}

// SaveRole writes through and invalidates the cached entry.
func (c *CachedStore) SaveRole(ctx context.Context, role Role) (Role, error) {
	saved, err := c.store.SaveRole(ctx, role)
	if err != nil {
		return Role{}, err
	}
	if err := c.client.Del(ctx, roleKey(saved.Name)).Err(); err != nil && c.logger != nil {
		c.logger.Warn("role cache invalidate", slog.String("role", saved.Name), slog.Any("error", err))
	}
	return saved, nil
}

// DeleteAllRoles flushes every cached role entry.
func (c *CachedStore) DeleteAllRoles(ctx context.Context) error {
	if err := c.store.DeleteAllRoles(ctx); err != nil {
		return err
	}
	iter := c.client.Scan(ctx, 0, "rbac:role:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil && c.logger != nil {
			c.logger.Warn("role cache flush", slog.Any("error", err))
		}
	}
	if err := iter.Err(); err != nil && c.logger != nil {
		c.logger.Warn("role cache scan", slog.Any("error", err))
	}
	return nil
}

func (c *CachedStore) set(ctx context.Context, key string, data []byte) {
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Warn("role cache write", slog.Any("error", err))
	}
}
