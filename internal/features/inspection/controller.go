package inspection

import (
	"time"

	common_api "eic-admin/internal/common/api"
	"eic-admin/internal/common/errs"
	"eic-admin/internal/config"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

type InspectionController struct {
	Service InspectionService
	Config  *config.Config
}

func NewInspectionController(service InspectionService, cfg *config.Config) *InspectionController {
	return &InspectionController{Service: service, Config: cfg}
}

func (ctrl *InspectionController) fail(c *fiber.Ctx, err error) error {
	return c.Status(errs.StatusCode(err)).JSON(errs.Body(err))
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}

func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, errs.Validation(key, "date", key+" must be formatted as YYYY-MM-DD")
	}
	return &t, nil
}

// ListInspections godoc
// @Summary      List inspections
// @Description  Callers without inspections.approve only see their own inspections
// @Tags         inspections
// @Produce      json
// @Param        search query string false "Matches establishment, address or inspector email"
// @Param        category query string false "Status or all"
// @Param        inspector_id query string false "Inspector user ID"
// @Param        date_from query string false "YYYY-MM-DD"
// @Param        date_to query string false "YYYY-MM-DD, inclusive"
// @Param        sort_by query string false "date, establishmentName, status, createdAt or updatedAt"
// @Param        sort_order query string false "asc or desc"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Success      200  {object} listview.Page[Inspection]
// @Router       /api/inspections [get]
func (ctrl *InspectionController) ListInspections(c *fiber.Ctx) error {
	from, err := queryDate(c, "date_from")
	if err != nil {
		return ctrl.fail(c, err)
	}
	to, err := queryDate(c, "date_to")
	if err != nil {
		return ctrl.fail(c, err)
	}

	defaults := DefaultViewState()
	if ctrl.Config != nil && ctrl.Config.DefaultPageSize > 0 {
		defaults.ItemsPerPage = ctrl.Config.DefaultPageSize
	}
	q := Query{InspectorID: c.Query("inspector_id"), From: from, To: to}

	page, err := ctrl.Service.ListInspections(c.UserContext(), q, common_api.ViewState(c, defaults))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(page)
}

// GetInspection godoc
// @Summary      Get inspection by ID
// @Tags         inspections
// @Produce      json
// @Param        id path string true "Inspection ID"
// @Success      200  {object} Inspection
// @Router       /api/inspections/{id} [get]
func (ctrl *InspectionController) GetInspection(c *fiber.Ctx) error {
	insp, err := ctrl.Service.GetInspection(c.UserContext(), c.Params("id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(insp)
}

// GetCompliance godoc
// @Summary      Checklist compliance of an inspection
// @Tags         inspections
// @Produce      json
// @Param        id path string true "Inspection ID"
// @Success      200  {object} ComplianceStats
// @Router       /api/inspections/{id}/compliance [get]
func (ctrl *InspectionController) GetCompliance(c *fiber.Ctx) error {
	stats, err := ctrl.Service.ComplianceStats(c.UserContext(), c.Params("id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(stats)
}

// CreateInspection godoc
// @Summary      Create inspection
// @Description  New inspections start as draft and belong to the caller
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Param        input body InspectionInput true "Inspection"
// @Success      201  {object} Inspection
// @Router       /api/inspections [post]
func (ctrl *InspectionController) CreateInspection(c *fiber.Ctx) error {
	var in InspectionInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}

	insp, err := ctrl.Service.CreateInspection(c.UserContext(), in)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(insp)
}

// UpdateInspection godoc
// @Summary      Update inspection
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Param        id path string true "Inspection ID"
// @Param        input body InspectionInput true "Inspection"
// @Success      200  {object} Inspection
// @Router       /api/inspections/{id} [put]
func (ctrl *InspectionController) UpdateInspection(c *fiber.Ctx) error {
	var in InspectionInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}

	insp, err := ctrl.Service.UpdateInspection(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(insp)
}

type statusRequest struct {
	Status Status `json:"status"`
}

// ChangeStatus godoc
// @Summary      Change inspection status
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Param        id path string true "Inspection ID"
// @Param        input body statusRequest true "Target status"
// @Success      200  {object} Inspection
// @Router       /api/inspections/{id}/status [put]
func (ctrl *InspectionController) ChangeStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	insp, err := ctrl.Service.ChangeStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(insp)
}

// DeleteInspection godoc
// @Summary      Delete inspection
// @Tags         inspections
// @Param        id path string true "Inspection ID"
// @Success      204
// @Router       /api/inspections/{id} [delete]
func (ctrl *InspectionController) DeleteInspection(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteInspection(c.UserContext(), c.Params("id")); err != nil {
		return ctrl.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
