package rbac

// crud is shorthand for the four actions covered by manage.
func crud() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
}

func crudManage() []Action {
	return append(crud(), ActionManage)
}

// SystemRoleDefinitions returns the canonical seed for the nine built-in
// roles. This is the single source of role literals in the codebase; the
// registry reseeds from it at bootstrap.
func SystemRoleDefinitions() []Role {
	return []Role{
		{
			Name:        RoleSuperAdmin,
			Description: "Platform owner with complete control",
			Interfaces:  []string{InterfaceAdminPanel},
			Scope:       ScopeGlobal,
			IsSystem:    true,
			IsActive:    true,
			Permissions: []Permission{
				{Resource: ResourceUsers, Actions: crudManage()},
				{Resource: ResourceRoles, Actions: crudManage()},
				{Resource: ResourceMachines, Actions: crudManage()},
				{Resource: ResourcePlanograms, Actions: crudManage()},
				{Resource: ResourceRefills, Actions: append(crudManage(), ActionAssign)},
				{Resource: ResourceMaintenance, Actions: crudManage()},
				{Resource: ResourceFinance, Actions: crudManage()},
				{Resource: ResourceSupport, Actions: crudManage()},
				{Resource: ResourceInventory, Actions: crudManage()},
				{Resource: ResourceAudit, Actions: crudManage()},
				{Resource: ResourceReports, Actions: crudManage()},
			},
		},
		{
			Name:        RoleOperationsManager,
			Description: "Oversees daily machine operations across regions",
			Interfaces:  []string{InterfaceAdminPanel},
			Scope:       ScopeRegion,
			IsSystem:    true,
			IsActive:    true,
			Permissions: []Permission{
				{Resource: ResourceMachines, Actions: []Action{ActionRead, ActionUpdate, ActionManage}},
				{Resource: ResourcePlanograms, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionManage}},
				{Resource: ResourceRefills, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionAssign, ActionManage}},
				{Resource: ResourceCatalogue, Actions: []Action{ActionRead, ActionAssign}},
				{Resource: ResourceAlerts, Actions: []Action{ActionRead, ActionUpdate, ActionManage}},
			},
		},
		{
			Name:        RoleFieldRefillAgent,
			Description: "On-ground staff handling machine refills",
			Interfaces:  []string{InterfaceFieldApp},
			Scope:       ScopeMachine,
			IsSystem:    true,
			IsActive:    true,
			Permissions: []Permission{
				{Resource: ResourceRefills, Actions: []Action{ActionRead, ActionUpdate}, Conditions: map[string]bool{CondAssignedOnly: true}},
				{Resource: ResourceMachines, Actions: []Action{ActionRead}, Conditions: map[string]bool{CondAssignedOnly: true}},
				{Resource: ResourceStock, Actions: []Action{ActionRead, ActionUpdate}},
			},
		},
		{
			Name:        RoleMaintenanceLead,
			Description: "Manages machine servicing and maintenance",
			Interfaces:  []string{InterfaceAdminPanel, InterfaceTechnicianApp},
			Scope:       ScopeMachine,
			IsSystem:    true,
			IsActive:    true,
			Permissions: []Permission{
				{Resource: ResourceMaintenance, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionManage, ActionAssign}},
				{Resource: ResourceMachines, Actions: []Action{ActionRead}, Conditions: map[string]bool{CondAssignedOnly: true}},
				{Resource: ResourceReports, Actions: []Action{ActionRead}, Conditions: map[string]bool{CondRevenueOnly: true}},
			},
		},
		{
			Name:        RoleFinanceTeam,
			Description: "Handles all monetary and accounting tasks",
			Interfaces:  []string{InterfaceFinanceDashboard},
			Scope:       ScopeGlobal,
			IsSystem:    true,
			IsActive:    true,
			Permissions: []Permission{
				{Resource: ResourceFinance, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionManage}},
				{Resource: ResourcePayouts, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionManage}},
				{Resource: ResourceSettlements, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionManage}},
				{Resource: ResourceReports, Actions: []Action{ActionRead}},
			},
		},
		{
			Name:        RoleSupportAgent,
			Description: "Resolves customer queries and escalations",
			Interfaces:  []string{InterfaceSupportDashboard},
			Scope:       ScopeGlobal,
			IsSystem:    true,
			IsActive:    true,
			Permissions: []Permission{
				{Resource: ResourceSupport, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionManage}},
				// Refund handling lives on the transactions resource.
				{Resource: ResourceTransactions, Actions: []Action{ActionCreate, ActionRead, ActionUpdate}},
				{Resource: ResourceUsers, Actions: []Action{ActionRead}},
			},
		},
		{
			Name:        RoleWarehouseManager,
			Description: "Handles stock and warehouse operations",
			Interfaces:  []string{InterfaceWarehousePortal},
			Scope:       ScopeRegion,
			IsSystem:    true,
			IsActive:    true,
			Permissions: []Permission{
				{Resource: ResourceInventory, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionManage}},
				{Resource: ResourceStock, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionManage}},
				{Resource: ResourceDispatch, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionManage}},
			},
		},
		{
			Name:        RoleAuditor,
			Description: "Ensures compliance and data accuracy",
			Interfaces:  []string{InterfaceAdminPanel},
			Scope:       ScopeGlobal,
			IsSystem:    true,
			IsActive:    true,
			Permissions: []Permission{
				{Resource: ResourceAudit, Actions: []Action{ActionRead}},
				{Resource: ResourceReports, Actions: []Action{ActionRead}},
				{Resource: ResourceFinance, Actions: []Action{ActionRead}},
			},
		},
		{
			Name:        RoleCustomer,
			Description: "End customer who buys products from vending machines",
			Interfaces:  []string{InterfaceMobileApp, InterfaceWebPortal},
			Scope:       ScopeGlobal,
			IsSystem:    true,
			IsActive:    true,
			Permissions: []Permission{
				{Resource: ResourceProducts, Actions: []Action{ActionRead}},
				{Resource: ResourceMachines, Actions: []Action{ActionRead}},
				{Resource: ResourceTransactions, Actions: []Action{ActionCreate, ActionRead}},
				{Resource: ResourceOrders, Actions: []Action{ActionCreate, ActionRead, ActionUpdate}},
				{Resource: ResourcePayments, Actions: []Action{ActionCreate, ActionRead}},
				{Resource: ResourceProfile, Actions: []Action{ActionRead, ActionUpdate}},
			},
		},
	}
}
