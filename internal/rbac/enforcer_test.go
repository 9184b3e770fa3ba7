package rbac

import (
	"errors"
	"testing"

	"github.com/vendora/vendora/internal/shared"
)

func allowedDecision(conditions map[string]bool) Decision {
	return Decision{
		Allowed:    true,
		Role:       "field_refill_agent",
		Resource:   ResourceRefills,
		Action:     ActionUpdate,
		Conditions: conditions,
	}
}

func TestEnforceAssignedOnly(t *testing.T) {
	enforcer := NewEnforcer(nil)
	principal := &shared.Principal{ID: 7, AssignedMachines: []string{"m-1"}}

	_, err := enforcer.Enforce(allowedDecision(map[string]bool{CondAssignedOnly: true}), RequestContext{
		Principal:       principal,
		TargetMachineID: "m-1",
	})
	if err != nil {
		t.Fatalf("assigned machine should pass: %v", err)
	}

	_, err = enforcer.Enforce(allowedDecision(map[string]bool{CondAssignedOnly: true}), RequestContext{
		Principal:       principal,
		TargetMachineID: "m-2",
	})
	if !errors.Is(err, ErrScopeViolation) {
		t.Fatalf("expected scope violation, got %v", err)
	}
}

func TestEnforceAssignedOnlyWithoutTargetPassesThrough(t *testing.T) {
	enforcer := NewEnforcer(nil)

	_, err := enforcer.Enforce(allowedDecision(map[string]bool{CondAssignedOnly: true}), RequestContext{
		Principal: &shared.Principal{ID: 7},
	})
	if err != nil {
		t.Fatalf("list-style request without a target must pass: %v", err)
	}
}

func TestEnforceRevenueOnlySetsDirective(t *testing.T) {
	enforcer := NewEnforcer(nil)

	directives, err := enforcer.Enforce(allowedDecision(map[string]bool{CondRevenueOnly: true}), RequestContext{
		Principal: &shared.Principal{ID: 3},
	})
	if err != nil {
		t.Fatalf("revenueOnly must not block: %v", err)
	}
	if !directives.RevenueOnly {
		t.Fatal("expected RevenueOnly directive")
	}
}

func TestEnforceUnknownConditionFailsClosed(t *testing.T) {
	enforcer := NewEnforcer(nil)

	_, err := enforcer.Enforce(allowedDecision(map[string]bool{"timeWindow": true}), RequestContext{
		Principal: &shared.Principal{ID: 3},
	})
	if !errors.Is(err, ErrUnknownCondition) {
		t.Fatalf("expected unknown condition error, got %v", err)
	}
}

func TestEnforceDisabledConditionIsIgnored(t *testing.T) {
	enforcer := NewEnforcer(nil)

	_, err := enforcer.Enforce(allowedDecision(map[string]bool{"timeWindow": false}), RequestContext{
		Principal: &shared.Principal{ID: 3},
	})
	if err != nil {
		t.Fatalf("disabled condition must be ignored: %v", err)
	}
}

func TestEnforceRejectsDeniedDecision(t *testing.T) {
	enforcer := NewEnforcer(nil)

	_, err := enforcer.Enforce(Decision{Allowed: false}, RequestContext{})
	if !errors.Is(err, ErrScopeViolation) {
		t.Fatalf("denied decision must not pass enforcement, got %v", err)
	}
}
