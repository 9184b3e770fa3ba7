package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/shared"
)

// AuthzEvent is the structured record emitted for audit on authorization
// outcomes.
type AuthzEvent struct {
	PrincipalID int64    `json:"principalId"`
	Role        string   `json:"role"`
	Resource    Resource `json:"resource"`
	Action      Action   `json:"action"`
	Outcome     string   `json:"outcome"`
	Reason      Reason   `json:"reason,omitempty"`
}

// AuditSink receives authorization events. Implementations must be
// fire-and-forget: they may drop events but must never block or fail the
// decision path.
type AuditSink interface {
	RecordAuthz(ctx context.Context, event AuthzEvent)
}

// Middleware is the request gate every protected route passes through. It
// runs the Engine, then the Enforcer, before any business logic executes.
type Middleware struct {
	Engine   *Engine
	Enforcer *Enforcer
	Audit    AuditSink
	Metrics  *Metrics
	Logger   *slog.Logger
}

type accessContextKey struct{}

// Access bundles the decision and shaping directives the gate attaches to a
// granted request.
type Access struct {
	Decision   Decision
	Directives Directives
}

// ContextWithAccess stores the granted access in context.
func ContextWithAccess(ctx context.Context, access Access) context.Context {
	return context.WithValue(ctx, accessContextKey{}, access)
}

// AccessFromContext extracts the granted access from context.
func AccessFromContext(ctx context.Context) (Access, bool) {
	access, ok := ctx.Value(accessContextKey{}).(Access)
	return access, ok
}

// Require gates a route on the statically declared (resource, action) pair.
func (m Middleware) Require(resource Resource, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal := shared.PrincipalFromContext(ctx)
			if principal == nil {
				m.deny(w, resource, action)
				return
			}

			decision := m.Engine.Authorize(ctx, principal.Role, resource, action)
			if !decision.Allowed {
				m.observe(ctx, principal, decision)
				if decision.Reason == ReasonRegistryUnavailable {
					// Distinguishable from a legitimate denial: the store is
					// unreachable, not the permission missing.
					httpx.Problem(w, http.StatusServiceUnavailable, "Authorization Unavailable", "")
					return
				}
				m.deny(w, resource, action)
				return
			}

			directives, err := m.Enforcer.Enforce(decision, RequestContext{
				Principal:       principal,
				TargetMachineID: TargetMachineID(r),
			})
			if err != nil {
				decision = forbidden(decision, err)
				m.observe(ctx, principal, decision)
				m.deny(w, resource, action)
				return
			}

			m.observe(ctx, principal, decision)
			next.ServeHTTP(w, r.WithContext(ContextWithAccess(ctx, Access{
				Decision:   decision,
				Directives: directives,
			})))
		})
	}
}

// CheckAssigned re-applies the assignedOnly condition once the target
// machine is known, for entities whose machine is only resolved after a
// repository load. Returns nil when the request's grant carries no
// assignedOnly condition.
func (m Middleware) CheckAssigned(ctx context.Context, machineID string) error {
	access, ok := AccessFromContext(ctx)
	if !ok {
		return ErrScopeViolation
	}
	if !access.Decision.Conditions[CondAssignedOnly] {
		return nil
	}
	principal := shared.PrincipalFromContext(ctx)
	_, err := m.Enforcer.Enforce(access.Decision, RequestContext{
		Principal:       principal,
		TargetMachineID: machineID,
	})
	if err != nil {
		m.observe(ctx, principal, forbidden(access.Decision, err))
	}
	return err
}

// TargetMachineID extracts the target machine identifier from the request
// path or query, if any.
func TargetMachineID(r *http.Request) string {
	if id := chi.URLParam(r, "machineID"); id != "" {
		return id
	}
	return r.URL.Query().Get("machine_id")
}

// deny writes the generic rejection. The precise reason is logged and
// audited but never returned, so a probe cannot map the permission matrix.
func (m Middleware) deny(w http.ResponseWriter, resource Resource, action Action) {
	httpx.Problem(w, http.StatusForbidden, "Access Denied",
		fmt.Sprintf("required permission: %s on %s", action, resource))
}

func (m Middleware) observe(ctx context.Context, principal *shared.Principal, decision Decision) {
	outcome := "allow"
	if !decision.Allowed {
		outcome = "deny"
	}
	if m.Logger != nil && !decision.Allowed {
		m.Logger.Info("authorization denied",
			slog.String("role", decision.Role),
			slog.String("resource", string(decision.Resource)),
			slog.String("action", string(decision.Action)),
			slog.String("reason", string(decision.Reason)))
	}
	if m.Metrics != nil {
		m.Metrics.ObserveDecision(decision)
	}
	if m.Audit == nil {
		return
	}
	if decision.Allowed && !sensitiveResource(decision.Resource) {
		return
	}
	event := AuthzEvent{
		Role:     decision.Role,
		Resource: decision.Resource,
		Action:   decision.Action,
		Outcome:  outcome,
		Reason:   decision.Reason,
	}
	if principal != nil {
		event.PrincipalID = principal.ID
	}
	m.Audit.RecordAuthz(ctx, event)
}

// Allowed outcomes are audited only for resources where reads and writes
// are themselves security-relevant.
func sensitiveResource(resource Resource) bool {
	switch resource {
	case ResourceRoles, ResourceSecurity, ResourceFinance, ResourcePayouts, ResourceSettlements:
		return true
	}
	return false
}

func forbidden(decision Decision, err error) Decision {
	decision.Allowed = false
	if errors.Is(err, ErrUnknownCondition) {
		decision.Reason = ReasonUnknownCondition
	} else {
		decision.Reason = ReasonScopeViolation
	}
	return decision
}
