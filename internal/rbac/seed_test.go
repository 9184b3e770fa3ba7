package rbac

import (
	"context"
	"testing"
)

func TestSystemRoleDefinitionsAreValid(t *testing.T) {
	defs := SystemRoleDefinitions()
	if len(defs) != 9 {
		t.Fatalf("expected 9 system roles, got %d", len(defs))
	}

	registry := NewRegistry(newMemStore(), nil, nil)
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if !def.IsSystem || !def.IsActive {
			t.Fatalf("role %s must be system and active", def.Name)
		}
		if !IsSystemRole(def.Name) {
			t.Fatalf("role %s missing from the system role set", def.Name)
		}
		if err := registry.validate(def); err != nil {
			t.Fatalf("role %s fails validation: %v", def.Name, err)
		}
		if _, dup := seen[def.Name]; dup {
			t.Fatalf("duplicate role %s", def.Name)
		}
		seen[def.Name] = struct{}{}
	}
}

func TestSeededFieldAgentIsMachineScoped(t *testing.T) {
	store := newMemStore()
	registry := NewRegistry(store, nil, nil)
	if err := registry.Reseed(context.Background(), SystemRoleDefinitions()); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	engine := NewEngine(registry)

	update := engine.Authorize(context.Background(), RoleFieldRefillAgent, ResourceRefills, ActionUpdate)
	if !update.Allowed {
		t.Fatalf("field agent should update refills, reason %s", update.Reason)
	}
	if !update.Conditions[CondAssignedOnly] {
		t.Fatal("field agent refill update must carry assignedOnly")
	}

	assign := engine.Authorize(context.Background(), RoleFieldRefillAgent, ResourceRefills, ActionAssign)
	if assign.Allowed {
		t.Fatal("field agent must not assign refill jobs")
	}
}

func TestSeededMaintenanceLeadReportsAreRevenueOnly(t *testing.T) {
	store := newMemStore()
	registry := NewRegistry(store, nil, nil)
	if err := registry.Reseed(context.Background(), SystemRoleDefinitions()); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	engine := NewEngine(registry)

	decision := engine.Authorize(context.Background(), RoleMaintenanceLead, ResourceReports, ActionRead)
	if !decision.Allowed {
		t.Fatalf("maintenance lead should read reports, reason %s", decision.Reason)
	}
	if !decision.Conditions[CondRevenueOnly] {
		t.Fatal("maintenance lead report read must carry revenueOnly")
	}
}

func TestSeededOperationsManagerCannotApprove(t *testing.T) {
	store := newMemStore()
	registry := NewRegistry(store, nil, nil)
	if err := registry.Reseed(context.Background(), SystemRoleDefinitions()); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	engine := NewEngine(registry)

	assign := engine.Authorize(context.Background(), RoleOperationsManager, ResourceRefills, ActionAssign)
	if !assign.Allowed {
		t.Fatalf("operations manager should assign refills, reason %s", assign.Reason)
	}
	approve := engine.Authorize(context.Background(), RoleOperationsManager, ResourceRefills, ActionApprove)
	if approve.Allowed {
		t.Fatal("manage grant must not imply approve")
	}
}
