package role

import (
	common_api "eic-admin/internal/common/api"
	"eic-admin/internal/common/errs"
	"eic-admin/internal/config"

	"github.com/gofiber/fiber/v2"
)

type RoleController struct {
	Service RoleService
	Config  *config.Config
}

func NewRoleController(service RoleService, cfg *config.Config) *RoleController {
	return &RoleController{Service: service, Config: cfg}
}

func (ctrl *RoleController) fail(c *fiber.Ctx, err error) error {
	return c.Status(errs.StatusCode(err)).JSON(errs.Body(err))
}

// ListRoles godoc
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Param        search query string false "Matches name or description"
// @Param        sort_by query string false "name, createdAt, updatedAt, usersAssigned or permissionCount"
// @Param        sort_order query string false "asc or desc"
// @Param        page query int false "Page number"
// @Param        limit query int false "Items per page"
// @Success      200  {object} listview.Page[Role]
// @Router       /api/roles [get]
func (ctrl *RoleController) ListRoles(c *fiber.Ctx) error {
	defaults := DefaultViewState()
	if ctrl.Config != nil && ctrl.Config.DefaultPageSize > 0 {
		defaults.ItemsPerPage = ctrl.Config.DefaultPageSize
	}
	return c.JSON(ctrl.Service.ListRolesView(common_api.ViewState(c, defaults)))
}

// GetRole godoc
// @Summary      Get role
// @Tags         roles
// @Produce      json
// @Param        id path string true "Role ID"
// @Success      200  {object} Role
// @Router       /api/roles/{id} [get]
func (ctrl *RoleController) GetRole(c *fiber.Ctx) error {
	r, err := ctrl.Service.GetRoleByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(r)
}

// CreateRole godoc
// @Summary      Create role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        role body RoleInput true "Role"
// @Success      201  {object} Role
// @Router       /api/roles [post]
func (ctrl *RoleController) CreateRole(c *fiber.Ctx) error {
	var in RoleInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	r, err := ctrl.Service.CreateRole(c.UserContext(), in)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

// UpdateRole godoc
// @Summary      Update role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id path string true "Role ID"
// @Param        role body RoleInput true "Role"
// @Success      200  {object} Role
// @Router       /api/roles/{id} [put]
func (ctrl *RoleController) UpdateRole(c *fiber.Ctx) error {
	var in RoleInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	r, err := ctrl.Service.UpdateRole(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(r)
}

// DeleteRole godoc
// @Summary      Delete role
// @Tags         roles
// @Param        id path string true "Role ID"
// @Success      204
// @Router       /api/roles/{id} [delete]
func (ctrl *RoleController) DeleteRole(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteRole(c.UserContext(), c.Params("id")); err != nil {
		return ctrl.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RecountUsers godoc
// @Summary      Refresh the users_assigned counter of a role
// @Tags         roles
// @Produce      json
// @Param        id path string true "Role ID"
// @Success      200  {object} Role
// @Router       /api/roles/{id}/recount [post]
func (ctrl *RoleController) RecountUsers(c *fiber.Ctx) error {
	r, err := ctrl.Service.RecountUsers(c.UserContext(), c.Params("id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(r)
}

// AvailableRoles godoc
// @Summary      Active roles for assignment pickers
// @Tags         roles
// @Produce      json
// @Success      200  {array} Role
// @Router       /api/roles/available [get]
func (ctrl *RoleController) AvailableRoles(c *fiber.Ctx) error {
	return c.JSON(ctrl.Service.AvailableRoles())
}
