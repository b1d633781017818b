package realtime

import (
	"net/http/httptest"
	"testing"

	"eic-admin/internal/features/auth"
	"eic-admin/internal/features/permission"
	"eic-admin/internal/features/role"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// rolePermissions grants the default permission sets of the system roles.
type rolePermissions map[string]permission.Set

func defaultRolePermissions() rolePermissions {
	out := rolePermissions{}
	for _, r := range role.DefaultRoles() {
		out[r.ID] = r.Permissions
	}
	return out
}

func (r rolePermissions) HasPermission(roleID, module, perm string) bool {
	return r[roleID].Has(module, perm)
}

func TestEntitlements(t *testing.T) {
	perms := defaultRolePermissions()
	perms["auditor"] = permission.Set{permission.ModuleRoleManagement: {"view": true}}

	require.Empty(t, Entitlements(perms, role.Employee))
	require.Empty(t, Entitlements(perms, role.Manager))
	require.Equal(t, []string{EntityUsers}, Entitlements(perms, role.Admin))
	require.Equal(t, []string{EntityRoles}, Entitlements(perms, "auditor"))
	require.Equal(t, []string{EntityRoles, EntityUsers}, Entitlements(perms, role.SuperAdmin))
}

func TestUpgradeRequiresAReadableStream(t *testing.T) {
	api := &WebSocketApi{checker: defaultRolePermissions()}

	app := fiber.New()
	app.Get("/api/ws", func(c *fiber.Ctx) error {
		if id := c.Get("X-Role"); id != "" {
			c.SetUserContext(auth.WithActor(c.UserContext(), &auth.Actor{ID: "u-" + id, Role: id}))
		}
		return c.Next()
	}, api.upgrade, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		role string
		want int
	}{
		{"", fiber.StatusUnauthorized},
		{role.Employee, fiber.StatusForbidden},
		{role.Admin, fiber.StatusUpgradeRequired},
		{role.SuperAdmin, fiber.StatusUpgradeRequired},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/api/ws", nil)
		if tt.role != "" {
			req.Header.Set("X-Role", tt.role)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, tt.want, resp.StatusCode, tt.role)
	}
}
