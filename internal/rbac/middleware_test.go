package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vendora/vendora/internal/shared"
)

type captureSink struct {
	mu     sync.Mutex
	events []AuthzEvent
}

func (c *captureSink) RecordAuthz(ctx context.Context, event AuthzEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureSink) last(t *testing.T) AuthzEvent {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		t.Fatal("no audit event recorded")
	}
	return c.events[len(c.events)-1]
}

func testGate(sink AuditSink, roles ...Role) Middleware {
	return Middleware{
		Engine:   engineWith(roles...),
		Enforcer: NewEnforcer(nil),
		Audit:    sink,
	}
}

func serve(gate Middleware, resource Resource, action Action, principal *shared.Principal, target string, next http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.With(gate.Require(resource, action)).Put("/{machineID}", next)
	r.With(gate.Require(resource, action)).Put("/", next)

	path := "/" + target
	req := httptest.NewRequest(http.MethodPut, path, nil)
	if principal != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), principal))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRequireDeniesWithGenericBody(t *testing.T) {
	sink := &captureSink{}
	gate := testGate(sink, Role{
		Name:     "viewer",
		IsActive: true,
		Permissions: []Permission{
			{Resource: ResourceMachines, Actions: []Action{ActionRead}},
		},
	})

	invoked := false
	rr := serve(gate, ResourceMachines, ActionUpdate, &shared.Principal{ID: 1, Role: "viewer"}, "m-1",
		func(w http.ResponseWriter, r *http.Request) { invoked = true })

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if invoked {
		t.Fatal("handler must not run on deny")
	}
	body := rr.Body.String()
	if !strings.Contains(body, "required permission: update on machines") {
		t.Fatalf("expected generic permission hint, got %s", body)
	}
	if strings.Contains(body, string(ReasonActionNotGranted)) {
		t.Fatalf("reason code must not leak to the client: %s", body)
	}

	event := sink.last(t)
	if event.Outcome != "deny" || event.Reason != ReasonActionNotGranted {
		t.Fatalf("unexpected audit event: %+v", event)
	}
	if event.PrincipalID != 1 {
		t.Fatalf("expected principal id 1, got %d", event.PrincipalID)
	}
}

func TestRequireRegistryUnavailableIsServiceError(t *testing.T) {
	gate := Middleware{
		Engine:   NewEngine(&stubRoleSource{err: context.DeadlineExceeded}),
		Enforcer: NewEnforcer(nil),
	}

	rr := serve(gate, ResourceMachines, ActionRead, &shared.Principal{ID: 1, Role: "viewer"}, "m-1",
		func(w http.ResponseWriter, r *http.Request) {})

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestRequireWithoutPrincipalDenies(t *testing.T) {
	gate := testGate(nil)

	rr := serve(gate, ResourceMachines, ActionRead, nil, "m-1",
		func(w http.ResponseWriter, r *http.Request) {})

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRequireEnforcesAssignedOnlyFromPath(t *testing.T) {
	gate := testGate(nil, Role{
		Name:     RoleFieldRefillAgent,
		IsActive: true,
		Permissions: []Permission{
			{Resource: ResourceMachines, Actions: []Action{ActionRead, ActionUpdate}, Conditions: map[string]bool{CondAssignedOnly: true}},
		},
	})
	principal := &shared.Principal{ID: 4, Role: RoleFieldRefillAgent, AssignedMachines: []string{"m-1"}}

	allowed := serve(gate, ResourceMachines, ActionUpdate, principal, "m-1",
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	if allowed.Code != http.StatusNoContent {
		t.Fatalf("assigned machine should pass, got %d", allowed.Code)
	}

	denied := serve(gate, ResourceMachines, ActionUpdate, principal, "m-2",
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	if denied.Code != http.StatusForbidden {
		t.Fatalf("unassigned machine must be rejected, got %d", denied.Code)
	}
}

func TestRequireAttachesAccessToContext(t *testing.T) {
	gate := testGate(nil, Role{
		Name:     RoleMaintenanceLead,
		IsActive: true,
		Permissions: []Permission{
			{Resource: ResourceReports, Actions: []Action{ActionRead}, Conditions: map[string]bool{CondRevenueOnly: true}},
		},
	})
	principal := &shared.Principal{ID: 9, Role: RoleMaintenanceLead}

	var got Access
	var ok bool
	rr := serve(gate, ResourceReports, ActionRead, principal, "",
		func(w http.ResponseWriter, r *http.Request) {
			got, ok = AccessFromContext(r.Context())
		})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !ok {
		t.Fatal("access missing from request context")
	}
	if !got.Directives.RevenueOnly {
		t.Fatal("expected RevenueOnly directive")
	}
	if !got.Decision.Conditions[CondRevenueOnly] {
		t.Fatal("expected revenueOnly condition on decision")
	}
}

func TestCheckAssignedAfterLoad(t *testing.T) {
	gate := testGate(nil)
	principal := &shared.Principal{ID: 4, Role: RoleFieldRefillAgent, AssignedMachines: []string{"m-1"}}

	decision := Decision{
		Allowed:    true,
		Role:       RoleFieldRefillAgent,
		Resource:   ResourceRefills,
		Action:     ActionUpdate,
		Conditions: map[string]bool{CondAssignedOnly: true},
	}
	ctx := shared.ContextWithPrincipal(context.Background(), principal)
	ctx = ContextWithAccess(ctx, Access{Decision: decision})

	if err := gate.CheckAssigned(ctx, "m-1"); err != nil {
		t.Fatalf("assigned machine should pass: %v", err)
	}
	if err := gate.CheckAssigned(ctx, "m-2"); err == nil {
		t.Fatal("unassigned machine must be rejected")
	}

	// Without a gated grant in context there is nothing to trust.
	if err := gate.CheckAssigned(context.Background(), "m-1"); err == nil {
		t.Fatal("missing access context must fail closed")
	}
}

func TestRequireAuditsAllowedSensitiveResource(t *testing.T) {
	sink := &captureSink{}
	gate := testGate(sink, Role{
		Name:     RoleSuperAdmin,
		IsActive: true,
		Permissions: []Permission{
			{Resource: ResourceRoles, Actions: crudManage()},
		},
	})

	rr := serve(gate, ResourceRoles, ActionRead, &shared.Principal{ID: 2, Role: RoleSuperAdmin}, "",
		func(w http.ResponseWriter, r *http.Request) {})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	event := sink.last(t)
	if event.Outcome != "allow" || event.Resource != ResourceRoles {
		t.Fatalf("expected allow event on roles, got %+v", event)
	}
}
