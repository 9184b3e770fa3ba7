package rbac

import (
	"context"
	"errors"
	"testing"
)

// memStore is an in-memory Store for registry tests.
type memStore struct {
	roles map[string]Role
}

func newMemStore() *memStore {
	return &memStore{roles: make(map[string]Role)}
}

func (s *memStore) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	role, ok := s.roles[name]
	if !ok {
		return nil, ErrRoleNotFound
	}
	copied := role
	return &copied, nil
}

func (s *memStore) FindRoleByNameAny(ctx context.Context, name string) (*Role, error) {
	return s.FindRoleByName(ctx, name)
}

func (s *memStore) ListActiveRoles(ctx context.Context) ([]Role, error) {
	var out []Role
	for _, role := range s.roles {
		if role.IsActive {
			out = append(out, role)
		}
	}
	return out, nil
}

func (s *memStore) SaveRole(ctx context.Context, role Role) (Role, error) {
	s.roles[role.Name] = role
	return role, nil
}

func (s *memStore) DeleteAllRoles(ctx context.Context) error {
	s.roles = make(map[string]Role)
	return nil
}

type stubCounter struct {
	count int64
}

func (s stubCounter) CountActiveByRole(ctx context.Context, roleName string) (int64, error) {
	return s.count, nil
}

func validDefinition() Role {
	return Role{
		Name:        "shift_lead",
		Description: "Supervises refill agents",
		Scope:       ScopeRegion,
		Interfaces:  []string{InterfaceAdminPanel},
		IsActive:    true,
		Permissions: []Permission{
			{Resource: ResourceRefills, Actions: []Action{ActionRead, ActionAssign}},
		},
	}
}

func TestUpsertRoleRejectsInvalidDefinitions(t *testing.T) {
	registry := NewRegistry(newMemStore(), nil, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Role)
	}{
		{"empty name", func(r *Role) { r.Name = "  " }},
		{"empty description", func(r *Role) { r.Description = "" }},
		{"unknown scope", func(r *Role) { r.Scope = "continent" }},
		{"unknown interface", func(r *Role) { r.Interfaces = []string{"smart_fridge"} }},
		{"unknown resource", func(r *Role) {
			r.Permissions = []Permission{{Resource: "snacks", Actions: []Action{ActionRead}}}
		}},
		{"unknown action", func(r *Role) {
			r.Permissions = []Permission{{Resource: ResourceRefills, Actions: []Action{"publish"}}}
		}},
		{"empty action set", func(r *Role) {
			r.Permissions = []Permission{{Resource: ResourceRefills, Actions: nil}}
		}},
		{"duplicate resource entry", func(r *Role) {
			r.Permissions = []Permission{
				{Resource: ResourceRefills, Actions: []Action{ActionRead}},
				{Resource: ResourceRefills, Actions: []Action{ActionUpdate}},
			}
		}},
	}
	for _, tc := range cases {
		def := validDefinition()
		tc.mutate(&def)
		if _, err := registry.UpsertRole(ctx, def); !errors.Is(err, ErrInvalidDefinition) {
			t.Fatalf("%s: expected ErrInvalidDefinition, got %v", tc.name, err)
		}
	}
}

func TestGetRoleSkipsDeactivated(t *testing.T) {
	store := newMemStore()
	registry := NewRegistry(store, nil, nil)
	ctx := context.Background()

	def := validDefinition()
	def.IsActive = false
	store.roles[def.Name] = def

	if _, err := registry.GetRole(ctx, def.Name); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("deactivated role must be invisible, got %v", err)
	}
	if _, err := registry.GetRoleAny(ctx, def.Name); err != nil {
		t.Fatalf("GetRoleAny must still find it: %v", err)
	}
}

func TestDeactivateRoleProtectsSystemRoles(t *testing.T) {
	store := newMemStore()
	registry := NewRegistry(store, stubCounter{}, nil)
	ctx := context.Background()

	store.roles[RoleSuperAdmin] = Role{Name: RoleSuperAdmin, Description: "x", IsSystem: true, IsActive: true}

	if err := registry.DeactivateRole(ctx, RoleSuperAdmin); !errors.Is(err, ErrSystemRole) {
		t.Fatalf("expected ErrSystemRole, got %v", err)
	}
}

func TestDeactivateRoleConflictsWhenHeld(t *testing.T) {
	store := newMemStore()
	registry := NewRegistry(store, stubCounter{count: 3}, nil)
	ctx := context.Background()

	def := validDefinition()
	store.roles[def.Name] = def

	if err := registry.DeactivateRole(ctx, def.Name); !errors.Is(err, ErrRoleHeld) {
		t.Fatalf("expected ErrRoleHeld, got %v", err)
	}
}

func TestDeactivateRoleSucceedsWhenUnheld(t *testing.T) {
	store := newMemStore()
	registry := NewRegistry(store, stubCounter{count: 0}, nil)
	ctx := context.Background()

	def := validDefinition()
	store.roles[def.Name] = def

	if err := registry.DeactivateRole(ctx, def.Name); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if store.roles[def.Name].IsActive {
		t.Fatal("role should be inactive after deactivation")
	}
}

func TestReseedReplacesRegistryContent(t *testing.T) {
	store := newMemStore()
	registry := NewRegistry(store, nil, nil)
	ctx := context.Background()

	stale := validDefinition()
	stale.Name = "legacy_role"
	store.roles[stale.Name] = stale

	if err := registry.Reseed(ctx, SystemRoleDefinitions()); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if _, err := registry.GetRole(ctx, "legacy_role"); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("stale role must be gone, got %v", err)
	}
	if _, err := registry.GetRole(ctx, RoleFieldRefillAgent); err != nil {
		t.Fatalf("seeded role missing: %v", err)
	}
}

func TestReseedRejectsInvalidSetWithoutWiping(t *testing.T) {
	store := newMemStore()
	registry := NewRegistry(store, nil, nil)
	ctx := context.Background()

	existing := validDefinition()
	store.roles[existing.Name] = existing

	bad := validDefinition()
	bad.Permissions = []Permission{{Resource: "refunds", Actions: []Action{ActionRead}}}

	if err := registry.Reseed(ctx, []Role{bad}); !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition, got %v", err)
	}
	if _, err := registry.GetRole(ctx, existing.Name); err != nil {
		t.Fatalf("failed reseed must not wipe existing content: %v", err)
	}
}
