package permission

import (
	"eic-admin/internal/features/auth"

	"github.com/gofiber/fiber/v2"
)

type PermissionApi struct {
	Controller *PermissionController
	auth       *auth.AuthMiddleware
}

func NewPermissionApi(controller *PermissionController, authMiddleware *auth.AuthMiddleware) *PermissionApi {
	return &PermissionApi{
		Controller: controller,
		auth:       authMiddleware,
	}
}

func (a *PermissionApi) Setup(app *fiber.App) {
	permissions := app.Group("/api/permissions", a.auth.Handle)
	permissions.Get("/", a.Controller.ListCatalog)
}
