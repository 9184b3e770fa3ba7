package rbac

import (
	"context"
	"errors"
)

// RoleSource resolves active roles by name. Satisfied by *Registry.
type RoleSource interface {
	GetRole(ctx context.Context, name string) (*Role, error)
}

// Engine is the pure authorization decision function. It performs no I/O
// beyond the role lookup and never inspects request-specific data.
type Engine struct {
	roles RoleSource
}

// NewEngine constructs an Engine over the given role source.
func NewEngine(roles RoleSource) *Engine {
	return &Engine{roles: roles}
}

// Authorize decides whether roleName may perform action on resource. It
// never returns an error: store failures map to a registry_unavailable DENY
// so that availability problems fail closed.
func (e *Engine) Authorize(ctx context.Context, roleName string, resource Resource, action Action) Decision {
	deny := func(reason Reason) Decision {
		return Decision{Allowed: false, Reason: reason, Role: roleName, Resource: resource, Action: action}
	}

	role, err := e.roles.GetRole(ctx, roleName)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return deny(ReasonRoleNotFound)
		}
		return deny(ReasonRegistryUnavailable)
	}

	// Duplicate entries for a resource should not exist under registry
	// validation but are tolerated with union semantics: any granting entry
	// allows. A granting entry without conditions makes the grant
	// unconditional; otherwise the conditions of all granting entries apply.
	matched := false
	granted := false
	unconditional := false
	var conditions map[string]bool
	for _, perm := range role.Permissions {
		if perm.Resource != resource {
			continue
		}
		matched = true
		if !perm.Grants(action) {
			continue
		}
		granted = true
		if len(perm.Conditions) == 0 {
			unconditional = true
			continue
		}
		if conditions == nil {
			conditions = make(map[string]bool, len(perm.Conditions))
		}
		for key, enabled := range perm.Conditions {
			conditions[key] = enabled
		}
	}

	if !matched {
		return deny(ReasonNoPermission)
	}
	if !granted {
		return deny(ReasonActionNotGranted)
	}
	if unconditional {
		conditions = nil
	}
	return Decision{
		Allowed:    true,
		Role:       roleName,
		Resource:   resource,
		Action:     action,
		Conditions: conditions,
	}
}
