package role

import (
	"eic-admin/internal/features/auth"
	"eic-admin/internal/features/permission"
	"eic-admin/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RoleApi struct {
	controller  *RoleController
	auth        *auth.AuthMiddleware
	roleService RoleService
}

func NewRoleApi(controller *RoleController, authMiddleware *auth.AuthMiddleware, roleService RoleService) *RoleApi {
	return &RoleApi{
		controller:  controller,
		auth:        authMiddleware,
		roleService: roleService,
	}
}

// Setup registers role routes
func (h *RoleApi) Setup(app *fiber.App) {
	roles := app.Group("/api/roles", h.auth.Handle)

	// Reads follow the catalog, writes are super admin only
	view := middleware.RequirePermission(h.roleService, permission.ModuleRoleManagement, "view")
	roles.Get("/", view, h.controller.ListRoles)
	roles.Get("/available", h.controller.AvailableRoles)
	roles.Get("/:id", view, h.controller.GetRole)

	roles.Post("/", middleware.RequireSuperAdmin(), h.controller.CreateRole)
	roles.Put("/:id", middleware.RequireSuperAdmin(), h.controller.UpdateRole)
	roles.Delete("/:id", middleware.RequireSuperAdmin(), h.controller.DeleteRole)
	roles.Post("/:id/recount", middleware.RequireSuperAdmin(), h.controller.RecountUsers)
}
