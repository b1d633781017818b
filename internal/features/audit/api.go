package audit

import (
	"eic-admin/internal/features/auth"
	"eic-admin/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	auth       *auth.AuthMiddleware
}

func NewAuditApi(controller *AuditController, authMiddleware *auth.AuthMiddleware) *AuditApi {
	return &AuditApi{
		controller: controller,
		auth:       authMiddleware,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit-logs", h.auth.Handle)

	audit.Get("/", middleware.RequireSuperAdmin(), h.controller.ListLogs)
}
