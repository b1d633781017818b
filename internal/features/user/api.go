package user

import (
	"eic-admin/internal/features/auth"
	"eic-admin/internal/features/permission"
	"eic-admin/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	auth       *auth.AuthMiddleware
	checker    middleware.PermissionChecker
}

func NewUserApi(controller *UserController, authMiddleware *auth.AuthMiddleware, checker middleware.PermissionChecker) *UserApi {
	return &UserApi{
		controller: controller,
		auth:       authMiddleware,
		checker:    checker,
	}
}

// Setup registers all user-related routes
func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users", h.auth.Handle)

	view := middleware.RequirePermission(h.checker, permission.ModuleUserManagement, "view")
	users.Get("/", view, h.controller.ListUsers)
	users.Get("/stats", view, h.controller.GetUserStats)
	users.Get("/:id", view, h.controller.GetUser)

	users.Post("/", middleware.RequireSuperAdmin(), h.controller.CreateUser)
	users.Put("/:id", middleware.RequireSuperAdmin(), h.controller.UpdateUser)
	users.Delete("/:id", middleware.RequireSuperAdmin(), h.controller.DeleteUser)
	users.Post("/:id/restore", middleware.RequireSuperAdmin(), h.controller.RestoreUser)
}
