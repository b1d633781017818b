package permission

import (
	"fmt"

	"eic-admin/internal/common/errs"
)

const (
	ModuleDashboard      = "dashboard"
	ModuleInspections    = "inspections"
	ModuleReports        = "reports"
	ModuleAnalytics      = "analytics"
	ModuleUserManagement = "user_management"
	ModuleRoleManagement = "role_management"
	ModuleTemplates      = "templates"
	ModuleSettings       = "settings"
)

type perm struct{ key, label string }

func module(key, label string, perms ...perm) Module {
	m := Module{Key: key, Label: label, Permissions: make(map[string]string, len(perms))}
	for _, p := range perms {
		m.Permissions[p.key] = p.label
		m.Order = append(m.Order, p.key)
	}
	return m
}

var defaultModules = []Module{
	module(ModuleDashboard, "Dashboard",
		perm{"view", "View Dashboard"},
		perm{"manage_stats", "Manage Statistics"},
	),
	module(ModuleInspections, "Inspections",
		perm{"view", "View Inspections"},
		perm{"create", "Create Inspections"},
		perm{"edit", "Edit Inspections"},
		perm{"delete", "Delete Inspections"},
		perm{"approve", "Approve Inspections"},
		perm{"perform", "Perform Inspections"},
	),
	module(ModuleReports, "Reports",
		perm{"view", "View Reports"},
		perm{"create", "Create Reports"},
		perm{"edit", "Edit Reports"},
		perm{"delete", "Delete Reports"},
		perm{"approve", "Approve Reports"},
		perm{"export", "Export Reports"},
	),
	module(ModuleAnalytics, "Analytics",
		perm{"view", "View Analytics"},
		perm{"export", "Export Analytics"},
		perm{"advanced", "Advanced Analytics"},
	),
	module(ModuleUserManagement, "User Management",
		perm{"view", "View Users"},
		perm{"create", "Create Users"},
		perm{"edit", "Edit Users"},
		perm{"delete", "Delete Users"},
		perm{"assign_roles", "Assign Roles"},
	),
	module(ModuleRoleManagement, "Role Management",
		perm{"view", "View Roles"},
		perm{"create", "Create Roles"},
		perm{"edit", "Edit Roles"},
		perm{"delete", "Delete Roles"},
		perm{"manage_permissions", "Manage Permissions"},
	),
	module(ModuleTemplates, "Templates",
		perm{"view", "View Templates"},
		perm{"create", "Create Templates"},
		perm{"edit", "Edit Templates"},
		perm{"delete", "Delete Templates"},
	),
	module(ModuleSettings, "System Settings",
		perm{"view", "View Settings"},
		perm{"edit", "Edit Settings"},
		perm{"backup", "Backup System"},
		perm{"restore", "Restore System"},
	),
}

// Catalog is the fixed registry of modules and permissions.
type Catalog struct {
	modules []Module
	byKey   map[string]Module
}

func newCatalog(modules []Module) *Catalog {
	c := &Catalog{modules: modules, byKey: make(map[string]Module, len(modules))}
	for _, m := range modules {
		c.byKey[m.Key] = m
	}
	return c
}

var defaultCatalog = newCatalog(defaultModules)

func DefaultCatalog() *Catalog {
	return defaultCatalog
}

func (c *Catalog) Modules() []Module {
	out := make([]Module, len(c.modules))
	copy(out, c.modules)
	return out
}

func (c *Catalog) Module(key string) (Module, bool) {
	m, ok := c.byKey[key]
	return m, ok
}

func (c *Catalog) Exists(module, perm string) bool {
	m, ok := c.byKey[module]
	if !ok {
		return false
	}
	_, ok = m.Permissions[perm]
	return ok
}

// Validate rejects granted permissions that are not in the catalog.
func (c *Catalog) Validate(set Set) error {
	for module, perms := range set {
		if _, ok := c.byKey[module]; !ok {
			return errs.Validation("permissions", "module", fmt.Sprintf("unknown module %q", module))
		}
		for perm, granted := range perms {
			if granted && !c.Exists(module, perm) {
				return errs.Validation("permissions", "permission", fmt.Sprintf("unknown permission %s.%s", module, perm))
			}
		}
	}
	return nil
}

// Full grants every permission of the catalog.
func (c *Catalog) Full() Set {
	out := make(Set, len(c.modules))
	for _, m := range c.modules {
		out[m.Key] = make(map[string]bool, len(m.Permissions))
		for key := range m.Permissions {
			out[m.Key][key] = true
		}
	}
	return out
}

// Size is the total number of permissions in the catalog.
func (c *Catalog) Size() int {
	n := 0
	for _, m := range c.modules {
		n += len(m.Permissions)
	}
	return n
}
