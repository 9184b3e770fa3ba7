package shared

import "context"

// Principal is the authenticated actor attached to a request by the auth
// layer. The RBAC core trusts it verbatim; it is never persisted here.
type Principal struct {
	ID               int64
	Email            string
	Role             string
	AssignedMachines []string
	AssignedRegions  []string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
