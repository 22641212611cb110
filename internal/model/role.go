package model

// Role represents user roles in the system
type Role string

// Role codes as constants
const (
	RoleAdmin  Role = "administrador"
	RoleClient Role = "cliente"
)

// Privilege codes checked by middleware.RequirePrivilege
const (
	PrivProductView     = "product:view"
	PrivProductCreate   = "product:create"
	PrivProductUpdate   = "product:update"
	PrivProductRetire   = "product:retire"
	PrivCatalogView     = "catalog:view"
	PrivPurchaseCreate  = "purchase:create"
	PrivPurchaseOwn     = "purchase:view_own"
	PrivPurchaseViewAll = "purchase:view_all"
	PrivDashboardView   = "dashboard:view"
)

// rolePrivileges is the fixed privilege set per role
var rolePrivileges = map[Role][]string{
	RoleAdmin: {
		PrivProductView,
		PrivProductCreate,
		PrivProductUpdate,
		PrivProductRetire,
		PrivPurchaseViewAll,
		PrivDashboardView,
	},
	RoleClient: {
		PrivCatalogView,
		PrivPurchaseCreate,
		PrivPurchaseOwn,
	},
}

func (r Role) IsValid() bool {
	_, ok := rolePrivileges[r]
	return ok
}

// Privileges returns a copy of the role's privilege codes
func (r Role) Privileges() []string {
	privs := rolePrivileges[r]
	out := make([]string, len(privs))
	copy(out, privs)
	return out
}

func (r Role) HasPrivilege(code string) bool {
	for _, p := range rolePrivileges[r] {
		if p == code {
			return true
		}
	}
	return false
}
