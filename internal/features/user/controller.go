package user

import (
	common_api "eic-admin/internal/common/api"
	"eic-admin/internal/common/errs"
	"eic-admin/internal/config"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	UserService UserService
	Config      *config.Config
}

func NewUserController(userService UserService, cfg *config.Config) *UserController {
	return &UserController{
		UserService: userService,
		Config:      cfg,
	}
}

func (ctrl *UserController) fail(c *fiber.Ctx, err error) error {
	return c.Status(errs.StatusCode(err)).JSON(errs.Body(err))
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}

// ListUsers godoc
// @Summary      List users
// @Description  Filtered, sorted and paginated view of the user cache
// @Tags         users
// @Produce      json
// @Param        search query string false "Matches display name, email or role"
// @Param        category query string false "Role id or all"
// @Param        status query string false "all, active or inactive"
// @Param        sort_by query string false "displayName, email, role, createdAt, lastLogin or updatedAt"
// @Param        sort_order query string false "asc or desc"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Success      200  {object} listview.Page[User]
// @Router       /api/users [get]
func (ctrl *UserController) ListUsers(c *fiber.Ctx) error {
	defaults := DefaultViewState()
	if ctrl.Config != nil && ctrl.Config.DefaultPageSize > 0 {
		defaults.ItemsPerPage = ctrl.Config.DefaultPageSize
	}
	return c.JSON(ctrl.UserService.ListUsers(common_api.ViewState(c, defaults)))
}

// GetUserStats godoc
// @Summary      User counters
// @Tags         users
// @Produce      json
// @Success      200  {object} UserStats
// @Router       /api/users/stats [get]
func (ctrl *UserController) GetUserStats(c *fiber.Ctx) error {
	return c.JSON(ctrl.UserService.GetUserStats())
}

// GetUser godoc
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200  {object} User
// @Failure      404  {string} string "User not found"
// @Router       /api/users/{id} [get]
func (ctrl *UserController) GetUser(c *fiber.Ctx) error {
	user, err := ctrl.UserService.GetUserByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(user)
}

// CreateUser godoc
// @Summary      Create user
// @Description  Creates the auth identity and the user document
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input body CreateUserInput true "Create User Input"
// @Success      201  {object} User
// @Failure      400  {string} string "Invalid request body"
// @Router       /api/users [post]
func (ctrl *UserController) CreateUser(c *fiber.Ctx) error {
	var in CreateUserInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}

	user, err := ctrl.UserService.CreateUser(c.UserContext(), in)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// UpdateUser godoc
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        input body UpdateUserInput true "Update User Input"
// @Success      200  {object} User
// @Router       /api/users/{id} [put]
func (ctrl *UserController) UpdateUser(c *fiber.Ctx) error {
	var in UpdateUserInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}

	user, err := ctrl.UserService.UpdateUser(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(user)
}

// DeleteUser godoc
// @Summary      Deactivate user
// @Tags         users
// @Param        id path string true "User ID"
// @Param        confirm query bool true "Must be true"
// @Success      204
// @Router       /api/users/{id} [delete]
func (ctrl *UserController) DeleteUser(c *fiber.Ctx) error {
	confirmed := c.QueryBool("confirm", false)
	if err := ctrl.UserService.DeleteUser(c.UserContext(), c.Params("id"), confirmed); err != nil {
		return ctrl.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RestoreUser godoc
// @Summary      Reactivate a deleted user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200  {object} User
// @Router       /api/users/{id}/restore [post]
func (ctrl *UserController) RestoreUser(c *fiber.Ctx) error {
	user, err := ctrl.UserService.RestoreUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(user)
}
