package rbac

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vendora/vendora/internal/shared"
)

// Enforcement errors. Both translate to a Forbidden outcome at the gate.
var (
	ErrScopeViolation   = errors.New("rbac: scope violation")
	ErrUnknownCondition = errors.New("rbac: unknown condition")
)

// RequestContext carries the request-specific data conditions are evaluated
// against. TargetMachineID is empty for list-style requests that do not
// address a single machine.
type RequestContext struct {
	Principal       *shared.Principal
	TargetMachineID string
}

// Directives are data-shaping flags a granted request carries onward to the
// business handler. They narrow the response, not the access itself.
type Directives struct {
	RevenueOnly bool
}

type conditionHandler func(rc RequestContext, d *Directives) error

// Enforcer applies attached permission conditions against request context.
// The condition set is closed: keys without a registered handler fail closed.
type Enforcer struct {
	logger   *slog.Logger
	handlers map[string]conditionHandler
}

// NewEnforcer constructs an Enforcer with the built-in condition handlers.
func NewEnforcer(logger *slog.Logger) *Enforcer {
	e := &Enforcer{logger: logger}
	e.handlers = map[string]conditionHandler{
		CondAssignedOnly: e.assignedOnly,
		CondRevenueOnly:  e.revenueOnly,
	}
	return e
}

// Enforce evaluates every enabled condition on an allowing decision. It
// returns the shaping directives for the handler, or an error when a
// condition is violated or not recognized.
func (e *Enforcer) Enforce(dec Decision, rc RequestContext) (Directives, error) {
	var d Directives
	if !dec.Allowed {
		return d, ErrScopeViolation
	}
	for key, enabled := range dec.Conditions {
		if !enabled {
			continue
		}
		handler, ok := e.handlers[key]
		if !ok {
			if e.logger != nil {
				e.logger.Warn("permission carries unimplemented condition",
					slog.String("role", dec.Role),
					slog.String("resource", string(dec.Resource)),
					slog.String("condition", key))
			}
			return Directives{}, fmt.Errorf("%w: %s", ErrUnknownCondition, key)
		}
		if err := handler(rc, &d); err != nil {
			return Directives{}, err
		}
	}
	return d, nil
}

// assignedOnly restricts machine-addressed requests to the principal's
// assigned machines. Requests without a target machine pass through.
func (e *Enforcer) assignedOnly(rc RequestContext, _ *Directives) error {
	if rc.TargetMachineID == "" {
		return nil
	}
	if rc.Principal == nil {
		return ErrScopeViolation
	}
	for _, id := range rc.Principal.AssignedMachines {
		if id == rc.TargetMachineID {
			return nil
		}
	}
	return fmt.Errorf("%w: machine %s not assigned", ErrScopeViolation, rc.TargetMachineID)
}

// revenueOnly is a data-shaping directive, not an access gate: it signals
// the handler to restrict the response to revenue fields.
func (e *Enforcer) revenueOnly(_ RequestContext, d *Directives) error {
	d.RevenueOnly = true
	return nil
}
