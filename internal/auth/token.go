package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vendora/vendora/internal/shared"
)

// TokenManager issues and resolves opaque bearer tokens backed by Redis.
// The principal snapshot is captured at issue time; role changes take effect
// on the next login or token refresh.
type TokenManager struct {
	client *redis.Client
	ttl    time.Duration
}

type tokenPayload struct {
	UserID           int64    `json:"user_id"`
	Email            string   `json:"email"`
	Role             string   `json:"role"`
	AssignedMachines []string `json:"assigned_machines,omitempty"`
	AssignedRegions  []string `json:"assigned_regions,omitempty"`
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(client *redis.Client, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenManager{client: client, ttl: ttl}
}

// Issue creates a new bearer token for the user.
func (tm *TokenManager) Issue(ctx context.Context, user *User) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("auth: generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	payload, err := json.Marshal(tokenPayload{
		UserID:           user.ID,
		Email:            user.Email,
		Role:             user.Role,
		AssignedMachines: user.AssignedMachines,
		AssignedRegions:  user.AssignedRegions,
	})
	if err != nil {
		return "", err
	}
	if err := tm.client.Set(ctx, tm.key(token), payload, tm.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: store token: %w", err)
	}
	return token, nil
}

// Lookup resolves a bearer token to its principal. Unknown or expired
// tokens return shared.ErrInvalidCredentials.
func (tm *TokenManager) Lookup(ctx context.Context, token string) (*shared.Principal, error) {
	data, err := tm.client.Get(ctx, tm.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	var payload tokenPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return &shared.Principal{
		ID:               payload.UserID,
		Email:            payload.Email,
		Role:             payload.Role,
		AssignedMachines: payload.AssignedMachines,
		AssignedRegions:  payload.AssignedRegions,
	}, nil
}

// Revoke invalidates the token immediately.
func (tm *TokenManager) Revoke(ctx context.Context, token string) error {
	return tm.client.Del(ctx, tm.key(token)).Err()
}

func (tm *TokenManager) key(token string) string {
	return "auth:token:" + token
}
