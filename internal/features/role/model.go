package role

import (
	"time"

	"eic-admin/internal/features/auth"
	"eic-admin/internal/features/permission"
)

// System role ids.
const (
	Employee   = "employee"
	Manager    = "manager"
	Admin      = "admin"
	SuperAdmin = auth.SuperAdminRole
)

// Role represents a named permission set assignable to users.
type Role struct {
	ID            string         `json:"id" bson:"_id"`
	Name          string         `json:"name" bson:"name"`
	Description   string         `json:"description" bson:"description"`
	Permissions   permission.Set `json:"permissions" bson:"permissions"`
	IsSystem      bool           `json:"is_system" bson:"is_system"`
	IsActive      bool           `json:"is_active" bson:"is_active"`
	UsersAssigned int64          `json:"users_assigned" bson:"users_assigned"` // refreshed on demand, not authoritative
	Version       int64          `json:"version" bson:"version"`
	CreatedAt     *time.Time     `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

type RoleInput struct {
	Name        string         `json:"name" validate:"required,min=2,max=50"`
	Description string         `json:"description" validate:"required,max=500"`
	Permissions permission.Set `json:"permissions"`
}

// CountPermissions returns the number of granted permissions.
func CountPermissions(perms permission.Set) int {
	return perms.Count()
}

// DefaultRoles returns the four system roles seeded at startup.
func DefaultRoles() []Role {
	roles := []Role{
		{
			ID:          Employee,
			Name:        "Employee",
			Description: "Basic employee with limited access to perform inspections",
			Permissions: permission.Set{
				permission.ModuleDashboard:   {"view": true},
				permission.ModuleInspections: {"view": true, "perform": true},
				permission.ModuleReports:     {"view": true, "create": true},
			},
		},
		{
			ID:          Manager,
			Name:        "Manager",
			Description: "Manager with additional permissions to approve reports and view analytics",
			Permissions: permission.Set{
				permission.ModuleDashboard:   {"view": true, "manage_stats": true},
				permission.ModuleInspections: {"view": true, "create": true, "edit": true, "perform": true, "approve": true},
				permission.ModuleReports:     {"view": true, "create": true, "edit": true, "approve": true},
				permission.ModuleAnalytics:   {"view": true},
				permission.ModuleTemplates:   {"view": true},
			},
		},
		{
			ID:          Admin,
			Name:        "Administrator",
			Description: "Administrator with full access except role management",
			Permissions: permission.Set{
				permission.ModuleDashboard:      {"view": true, "manage_stats": true},
				permission.ModuleInspections:    {"view": true, "create": true, "edit": true, "delete": true, "approve": true, "perform": true},
				permission.ModuleReports:        {"view": true, "create": true, "edit": true, "delete": true, "approve": true, "export": true},
				permission.ModuleAnalytics:      {"view": true, "export": true, "advanced": true},
				permission.ModuleUserManagement: {"view": true, "create": true, "edit": true, "delete": true, "assign_roles": true},
				permission.ModuleTemplates:      {"view": true, "create": true, "edit": true, "delete": true},
				permission.ModuleSettings:       {"view": true, "edit": true},
			},
		},
		{
			ID:          SuperAdmin,
			Name:        "Super Administrator",
			Description: "Super Administrator with complete system access",
			Permissions: permission.DefaultCatalog().Full(),
		},
	}
	for i := range roles {
		roles[i].IsSystem = true
		roles[i].IsActive = true
	}
	return roles
}

func defaultPermissions(id string) (permission.Set, bool) {
	for _, r := range DefaultRoles() {
		if r.ID == id {
			return r.Permissions, true
		}
	}
	return nil, false
}
