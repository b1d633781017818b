package middleware

import (
	"net/http/httptest"
	"testing"

	"eic-admin/internal/features/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type roleGrants map[string]map[string]bool

func (g roleGrants) HasPermission(roleID, module, perm string) bool {
	return g[roleID][module+"."+perm]
}

func withActor(actor *auth.Actor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if actor != nil {
			c.SetUserContext(auth.WithActor(c.UserContext(), actor))
		}
		return c.Next()
	}
}

func ok(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }

func TestRequireSuperAdmin(t *testing.T) {
	tests := []struct {
		name  string
		actor *auth.Actor
		want  int
	}{
		{"anonymous", nil, fiber.StatusUnauthorized},
		{"manager", &auth.Actor{ID: "m1", Role: "manager"}, fiber.StatusForbidden},
		{"superadmin", &auth.Actor{ID: "s1", Role: auth.SuperAdminRole}, fiber.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Post("/roles", withActor(tt.actor), RequireSuperAdmin(), ok)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/roles", nil))
			require.NoError(t, err)
			require.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	grants := roleGrants{"manager": {"user_management.view": false, "role_management.view": true}}

	tests := []struct {
		name   string
		actor  *auth.Actor
		module string
		want   int
	}{
		{"anonymous", nil, "role_management", fiber.StatusUnauthorized},
		{"granted", &auth.Actor{ID: "m1", Role: "manager"}, "role_management", fiber.StatusNoContent},
		{"denied", &auth.Actor{ID: "m1", Role: "manager"}, "user_management", fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/x", withActor(tt.actor), RequirePermission(grants, tt.module, "view"), ok)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/x", nil))
			require.NoError(t, err)
			require.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
