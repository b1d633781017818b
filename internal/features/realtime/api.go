package realtime

import (
	"fmt"

	"eic-admin/internal/common/errs"
	"eic-admin/internal/features/auth"
	"eic-admin/internal/features/permission"
	"eic-admin/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const entitiesKey = "realtime_entities"

// entityPermissions is the view permission each stream requires.
var entityPermissions = []struct {
	entity string
	module string
}{
	{EntityRoles, permission.ModuleRoleManagement},
	{EntityUsers, permission.ModuleUserManagement},
}

// Entitlements lists the entities whose changes roleID may receive.
func Entitlements(checker middleware.PermissionChecker, roleID string) []string {
	var out []string
	for _, p := range entityPermissions {
		if checker.HasPermission(roleID, p.module, "view") {
			out = append(out, p.entity)
		}
	}
	return out
}

type WebSocketApi struct {
	Controller *WebSocketController
	auth       *auth.AuthMiddleware
	checker    middleware.PermissionChecker
}

func NewWebSocketApi(controller *WebSocketController, authMiddleware *auth.AuthMiddleware, checker middleware.PermissionChecker) *WebSocketApi {
	return &WebSocketApi{
		Controller: controller,
		auth:       authMiddleware,
		checker:    checker,
	}
}

// upgrade resolves the caller's streams before accepting the websocket.
func (h *WebSocketApi) upgrade(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c.UserContext())
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(errs.Body(errs.ErrAuthentication))
	}

	entities := Entitlements(h.checker, actor.Role)
	if len(entities) == 0 {
		err := fmt.Errorf("%w: no readable streams for role %s", errs.ErrAuthorization, actor.Role)
		return c.Status(errs.StatusCode(err)).JSON(errs.Body(err))
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals(entitiesKey, entities)
	return c.Next()
}

func (h *WebSocketApi) Setup(app *fiber.App) {
	app.Get("/api/ws", h.auth.Handle, h.upgrade, websocket.New(h.Controller.HandleWebSocket))
}
