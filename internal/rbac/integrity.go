package rbac

import (
	"context"
	"fmt"
	"log/slog"
)

// CheckStoredRoles re-validates every active role definition in the store.
// A stored definition that no longer validates means the registry write path
// was bypassed; the sweep reports the first offender.
func CheckStoredRoles(ctx context.Context, store Store, logger *slog.Logger) error {
	registry := NewRegistry(store, nil, logger)
	roles, err := store.ListActiveRoles(ctx)
	if err != nil {
		return err
	}
	var bad int
	var firstErr error
	for _, role := range roles {
		if err := registry.validate(role); err != nil {
			bad++
			if firstErr == nil {
				firstErr = err
			}
			if logger != nil {
				logger.Error("stored role fails validation",
					slog.String("role", role.Name),
					slog.Any("error", err))
			}
		}
	}
	if bad > 0 {
		return fmt.Errorf("registry integrity: %d invalid role(s): %w", bad, firstErr)
	}
	if logger != nil {
		logger.Info("registry integrity check passed", slog.Int("roles", len(roles)))
	}
	return nil
}
