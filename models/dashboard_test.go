package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDashboardFor checks the role→dashboard pairs and that the package
// exposes exactly one dispatch table for them.
func TestDashboardFor(t *testing.T) {
	tests := []struct {
		roleSlug  string
		dashboard string
		known     bool
	}{
		{RoleSlugAdmin, DashboardAdmin, true},
		{RoleSlugManager, DashboardAdmin, true},
		{RoleSlugTechnician, DashboardTechnician, true},
		{RoleSlugSupport, DashboardTechnician, true},
		{RoleSlugCustomer, DashboardCustomer, true},
		{"auditor", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		dashboard, known := DashboardFor(tt.roleSlug)
		assert.Equal(t, tt.dashboard, dashboard, "role %q", tt.roleSlug)
		assert.Equal(t, tt.known, known, "role %q", tt.roleSlug)
	}

	assert.Len(t, dashboardByRole, 5, "every seeded role must be routable")
}
