package inspection

import (
	"eic-admin/internal/features/auth"

	"github.com/gofiber/fiber/v2"
)

type InspectionApi struct {
	controller *InspectionController
	auth       *auth.AuthMiddleware
}

func NewInspectionApi(controller *InspectionController, authMiddleware *auth.AuthMiddleware) *InspectionApi {
	return &InspectionApi{
		controller: controller,
		auth:       authMiddleware,
	}
}

// Setup registers inspection routes. Access is decided per inspection by the service.
func (h *InspectionApi) Setup(app *fiber.App) {
	inspections := app.Group("/api/inspections", h.auth.Handle)

	inspections.Get("/", h.controller.ListInspections)
	inspections.Get("/:id", h.controller.GetInspection)
	inspections.Get("/:id/compliance", h.controller.GetCompliance)
	inspections.Post("/", h.controller.CreateInspection)
	inspections.Put("/:id", h.controller.UpdateInspection)
	inspections.Put("/:id/status", h.controller.ChangeStatus)
	inspections.Delete("/:id", h.controller.DeleteInspection)
}
