package rbac

import "time"

// Resource names a domain noun subject to access control.
type Resource string

// Fixed resource enumeration. These values are part of the API contract and
// must match what clients and role documents use on the wire.
const (
	ResourceUsers          Resource = "users"
	ResourceRoles          Resource = "roles"
	ResourceMachines       Resource = "machines"
	ResourcePlanograms     Resource = "planograms"
	ResourceRefills        Resource = "refills"
	ResourceMaintenance    Resource = "maintenance"
	ResourceFinance        Resource = "finance"
	ResourceSupport        Resource = "support"
	ResourceInventory      Resource = "inventory"
	ResourceAudit          Resource = "audit"
	ResourceReports        Resource = "reports"
	ResourceCatalogue      Resource = "catalogue"
	ResourceAlerts         Resource = "alerts"
	ResourceStock          Resource = "stock"
	ResourcePayouts        Resource = "payouts"
	ResourceSettlements    Resource = "settlements"
	ResourceDispatch       Resource = "dispatch"
	ResourceProducts       Resource = "products"
	ResourceOrders         Resource = "orders"
	ResourcePayments       Resource = "payments"
	ResourceProfile        Resource = "profile"
	ResourceTransactions   Resource = "transactions"
	ResourceDepartments    Resource = "departments"
	ResourcePartners       Resource = "partners"
	ResourceSecurity       Resource = "security"
	ResourceAccessRequests Resource = "access_requests"
)

var knownResources = map[Resource]struct{}{
	ResourceUsers: {}, ResourceRoles: {}, ResourceMachines: {},
	ResourcePlanograms: {}, ResourceRefills: {}, ResourceMaintenance: {},
	ResourceFinance: {}, ResourceSupport: {}, ResourceInventory: {},
	ResourceAudit: {}, ResourceReports: {}, ResourceCatalogue: {},
	ResourceAlerts: {}, ResourceStock: {}, ResourcePayouts: {},
	ResourceSettlements: {}, ResourceDispatch: {}, ResourceProducts: {},
	ResourceOrders: {}, ResourcePayments: {}, ResourceProfile: {},
	ResourceTransactions: {}, ResourceDepartments: {}, ResourcePartners: {},
	ResourceSecurity: {}, ResourceAccessRequests: {},
}

// ValidResource reports whether r is part of the fixed resource enumeration.
func ValidResource(r Resource) bool {
	_, ok := knownResources[r]
	return ok
}

// Action is an operation verb applied to a resource.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionManage  Action = "manage"
	ActionAssign  Action = "assign"
	ActionApprove Action = "approve"
)

var knownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {},
	ActionManage: {}, ActionAssign: {}, ActionApprove: {},
}

// manageCovers lists the actions implied by a manage grant. Assign and
// approve are workflow-control actions and always require an explicit grant.
var manageCovers = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {},
}

// ValidAction reports whether a is part of the fixed action enumeration.
func ValidAction(a Action) bool {
	_, ok := knownActions[a]
	return ok
}

// Scope describes the breadth of entities a role's grants apply to.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopePartner Scope = "partner"
	ScopeRegion  Scope = "region"
	ScopeMachine Scope = "machine"
)

var knownScopes = map[Scope]struct{}{
	ScopeGlobal: {}, ScopePartner: {}, ScopeRegion: {}, ScopeMachine: {},
}

// Client interface tags controlling which front-ends may use a role.
const (
	InterfaceAdminPanel       = "admin_panel"
	InterfaceMobileApp        = "mobile_app"
	InterfaceFieldApp         = "field_app"
	InterfaceTechnicianApp    = "technician_app"
	InterfaceFinanceDashboard = "finance_dashboard"
	InterfaceSupportDashboard = "support_dashboard"
	InterfaceWarehousePortal  = "warehouse_portal"
	InterfaceWebPortal        = "web_portal"
)

var knownInterfaces = map[string]struct{}{
	InterfaceAdminPanel: {}, InterfaceMobileApp: {}, InterfaceFieldApp: {},
	InterfaceTechnicianApp: {}, InterfaceFinanceDashboard: {},
	InterfaceSupportDashboard: {}, InterfaceWarehousePortal: {},
	InterfaceWebPortal: {},
}

// Recognized condition keys. The set is closed: extending it requires a new
// key plus a handler registered in the Enforcer dispatch table. Any other
// key fails closed at enforcement time.
const (
	CondAssignedOnly = "assignedOnly"
	CondRevenueOnly  = "revenueOnly"
)

// Permission grants a set of actions on one resource, optionally narrowed by
// conditions evaluated against request context.
type Permission struct {
	Resource   Resource        `json:"resource"`
	Actions    []Action        `json:"actions"`
	Conditions map[string]bool `json:"conditions,omitempty"`
}

// Grants reports whether this entry allows the given action, honouring the
// manage superset rule.
func (p Permission) Grants(action Action) bool {
	for _, a := range p.Actions {
		if a == action {
			return true
		}
		if a == ActionManage {
			if _, ok := manageCovers[action]; ok {
				return true
			}
		}
	}
	return false
}

// Role is a named permission grouping. System roles are seeded at bootstrap
// and cannot be removed, only deactivated.
type Role struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
	Interfaces  []string     `json:"interfaces"`
	Scope       Scope        `json:"scope"`
	ScopeRefs   []string     `json:"scopeRefs,omitempty"`
	IsSystem    bool         `json:"isSystem"`
	IsActive    bool         `json:"isActive"`
	Version     int64        `json:"version"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// System role names. These are the built-in roles created by the seed.
const (
	RoleSuperAdmin        = "super_admin"
	RoleOperationsManager = "operations_manager"
	RoleFieldRefillAgent  = "field_refill_agent"
	RoleMaintenanceLead   = "maintenance_lead"
	RoleFinanceTeam       = "finance_team"
	RoleSupportAgent      = "support_agent"
	RoleWarehouseManager  = "warehouse_manager"
	RoleAuditor           = "auditor"
	RoleCustomer          = "customer"
)

var systemRoleNames = map[string]struct{}{
	RoleSuperAdmin: {}, RoleOperationsManager: {}, RoleFieldRefillAgent: {},
	RoleMaintenanceLead: {}, RoleFinanceTeam: {}, RoleSupportAgent: {},
	RoleWarehouseManager: {}, RoleAuditor: {}, RoleCustomer: {},
}

// IsSystemRole reports whether name is one of the built-in role names.
func IsSystemRole(name string) bool {
	_, ok := systemRoleNames[name]
	return ok
}

// Reason is a machine-readable denial reason code.
type Reason string

const (
	ReasonRoleNotFound        Reason = "role_not_found"
	ReasonNoPermission        Reason = "no_permission"
	ReasonActionNotGranted    Reason = "action_not_granted"
	ReasonScopeViolation      Reason = "scope_violation"
	ReasonUnknownCondition    Reason = "unknown_condition"
	ReasonRegistryUnavailable Reason = "registry_unavailable"
)

// Decision is the ephemeral outcome of one authorization check. Conditions
// are carried unevaluated; the Enforcer applies them against request context.
type Decision struct {
	Allowed    bool
	Reason     Reason
	Role       string
	Resource   Resource
	Action     Action
	Conditions map[string]bool
}
