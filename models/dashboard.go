package models

// Dashboard identifiers returned by role dispatch.
const (
	DashboardAdmin      = "admin"
	DashboardTechnician = "technician"
	DashboardCustomer   = "customer"
)

// dashboardByRole is the single authoritative mapping from role slug to
// dashboard. Every place that routes by role goes through [DashboardFor];
// nothing else may hardcode the pairs.
var dashboardByRole = map[string]string{
	RoleSlugAdmin:      DashboardAdmin,
	RoleSlugManager:    DashboardAdmin,
	RoleSlugTechnician: DashboardTechnician,
	RoleSlugSupport:    DashboardTechnician,
	RoleSlugCustomer:   DashboardCustomer,
}

// DashboardFor resolves the dashboard for a role slug. The second return is
// false for unknown slugs; callers treat that as a corrupt session and
// destroy it rather than guessing a fallback.
func DashboardFor(roleSlug string) (string, bool) {
	dashboard, ok := dashboardByRole[roleSlug]
	return dashboard, ok
}
