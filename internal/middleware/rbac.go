package middleware

import (
	"eic-admin/internal/common/errs"
	"eic-admin/internal/features/auth"

	"github.com/gofiber/fiber/v2"
)

// PermissionChecker answers whether a role grants module.perm.
type PermissionChecker interface {
	HasPermission(roleID, module, perm string) bool
}

// RequirePermission checks the actor's role against one catalog permission.
// It must run after the auth middleware.
func RequirePermission(checker PermissionChecker, module, perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := auth.ActorFromContext(c.UserContext())
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if !checker.HasPermission(actor.Role, module, perm) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Insufficient permissions",
			})
		}

		return c.Next()
	}
}

// RequireSuperAdmin rejects callers that are not super admins.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, _ := auth.ActorFromContext(c.UserContext())
		if err := auth.RequireSuperAdmin(actor); err != nil {
			return c.Status(errs.StatusCode(err)).JSON(errs.Body(err))
		}
		return c.Next()
	}
}
