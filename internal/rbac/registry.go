package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Sentinel errors returned by the registry.
var (
	ErrRoleNotFound      = errors.New("rbac: role not found")
	ErrInvalidDefinition = errors.New("rbac: invalid role definition")
	ErrRoleHeld          = errors.New("rbac: role is held by active users")
	ErrSystemRole        = errors.New("rbac: system role cannot be deactivated")
)

// Store is the role persistence port. FindRoleByName must return
// ErrRoleNotFound (possibly wrapped) when no document matches.
type Store interface {
	FindRoleByName(ctx context.Context, name string) (*Role, error)
	FindRoleByNameAny(ctx context.Context, name string) (*Role, error)
	ListActiveRoles(ctx context.Context) ([]Role, error)
	SaveRole(ctx context.Context, role Role) (Role, error)
	DeleteAllRoles(ctx context.Context) error
}

// PrincipalCounter reports how many active users currently hold a role.
type PrincipalCounter interface {
	CountActiveByRole(ctx context.Context, roleName string) (int64, error)
}

// Registry is the source of truth for role to permission mappings.
type Registry struct {
	store      Store
	principals PrincipalCounter
	logger     *slog.Logger
}

// NewRegistry constructs a Registry over the given store.
func NewRegistry(store Store, principals PrincipalCounter, logger *slog.Logger) *Registry {
	return &Registry{store: store, principals: principals, logger: logger}
}

// GetRole returns the active role with the given name, case-sensitive.
// Deactivated roles are invisible to this lookup.
func (r *Registry) GetRole(ctx context.Context, name string) (*Role, error) {
	role, err := r.store.FindRoleByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if !role.IsActive {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

// GetRoleAny returns the role regardless of its active flag.
func (r *Registry) GetRoleAny(ctx context.Context, name string) (*Role, error) {
	return r.store.FindRoleByNameAny(ctx, name)
}

// ListRoles returns all active roles.
func (r *Registry) ListRoles(ctx context.Context) ([]Role, error) {
	return r.store.ListActiveRoles(ctx)
}

// UpsertRole validates and persists a role definition. Unknown resources,
// actions, scopes or interface tags are rejected outright rather than
// silently dropped, so configuration mistakes surface immediately.
func (r *Registry) UpsertRole(ctx context.Context, def Role) (Role, error) {
	if err := r.validate(def); err != nil {
		return Role{}, err
	}
	def.Name = strings.TrimSpace(def.Name)
	def.Description = strings.TrimSpace(def.Description)
	saved, err := r.store.SaveRole(ctx, def)
	if err != nil {
		return Role{}, err
	}
	return saved, nil
}

// DeactivateRole soft-deletes a role. System roles are protected, and a role
// still held by at least one active user cannot be deactivated.
func (r *Registry) DeactivateRole(ctx context.Context, name string) error {
	role, err := r.store.FindRoleByNameAny(ctx, name)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return ErrSystemRole
	}
	if r.principals != nil {
		held, err := r.principals.CountActiveByRole(ctx, name)
		if err != nil {
			return err
		}
		if held > 0 {
			return fmt.Errorf("%w: %d active users", ErrRoleHeld, held)
		}
	}
	role.IsActive = false
	_, err = r.store.SaveRole(ctx, *role)
	return err
}

// Reseed atomically validates the full definition set, then replaces the
// registry content. Intended for bootstrap only; a concurrent authorize call
// may observe a transiently empty registry and fails closed.
func (r *Registry) Reseed(ctx context.Context, defs []Role) error {
	for _, def := range defs {
		if err := r.validate(def); err != nil {
			return fmt.Errorf("seed role %q: %w", def.Name, err)
		}
	}
	if err := r.store.DeleteAllRoles(ctx); err != nil {
		return err
	}
	for _, def := range defs {
		if _, err := r.store.SaveRole(ctx, def); err != nil {
			return fmt.Errorf("seed role %q: %w", def.Name, err)
		}
	}
	if r.logger != nil {
		r.logger.Info("role registry reseeded", slog.Int("roles", len(defs)))
	}
	return nil
}

func (r *Registry) validate(def Role) error {
	if strings.TrimSpace(def.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidDefinition)
	}
	if strings.TrimSpace(def.Description) == "" {
		return fmt.Errorf("%w: description required", ErrInvalidDefinition)
	}
	if def.Scope != "" {
		if _, ok := knownScopes[def.Scope]; !ok {
			return fmt.Errorf("%w: unknown scope %q", ErrInvalidDefinition, def.Scope)
		}
	}
	for _, tag := range def.Interfaces {
		if _, ok := knownInterfaces[tag]; !ok {
			return fmt.Errorf("%w: unknown interface %q", ErrInvalidDefinition, tag)
		}
	}
	seen := make(map[Resource]struct{}, len(def.Permissions))
	for _, perm := range def.Permissions {
		if !ValidResource(perm.Resource) {
			return fmt.Errorf("%w: unknown resource %q", ErrInvalidDefinition, perm.Resource)
		}
		if len(perm.Actions) == 0 {
			return fmt.Errorf("%w: empty action set for resource %q", ErrInvalidDefinition, perm.Resource)
		}
		for _, action := range perm.Actions {
			if !ValidAction(action) {
				return fmt.Errorf("%w: unknown action %q on resource %q", ErrInvalidDefinition, action, perm.Resource)
			}
		}
		if _, dup := seen[perm.Resource]; dup {
			return fmt.Errorf("%w: duplicate entry for resource %q", ErrInvalidDefinition, perm.Resource)
		}
		seen[perm.Resource] = struct{}{}
		for key := range perm.Conditions {
			if key != CondAssignedOnly && key != CondRevenueOnly && r.logger != nil {
				// Accepted but will fail closed at enforcement time.
				r.logger.Warn("role references unimplemented condition",
					slog.String("role", def.Name),
					slog.String("resource", string(perm.Resource)),
					slog.String("condition", key))
			}
		}
	}
	return nil
}
