package permission

import (
	"github.com/gofiber/fiber/v2"
)

type PermissionController struct {
	PermissionService PermissionService
}

func NewPermissionController(permissionService PermissionService) *PermissionController {
	return &PermissionController{
		PermissionService: permissionService,
	}
}

// ListCatalog godoc
// @Summary      List the permission catalog
// @Description  Get every module with its assignable permissions
// @Tags         permissions
// @Produce      json
// @Success      200  {array} Module
// @Router       /api/permissions [get]
func (ctrl *PermissionController) ListCatalog(c *fiber.Ctx) error {
	modules := ctrl.PermissionService.Catalog()
	return c.JSON(fiber.Map{
		"modules": modules,
		"total":   len(modules),
	})
}
