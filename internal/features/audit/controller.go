package audit

import (
	"eic-admin/internal/common/errs"

	"github.com/gofiber/fiber/v2"
)

// Audit entries are only ever written for these stores.
var auditedModules = map[string]bool{"roles": true, "users": true, "inspections": true}

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListLogs godoc
// @Summary      List audit logs
// @Tags         audit
// @Produce      json
// @Param        module query string false "roles, users or inspections"
// @Param        record_id query string false "Role, user or inspection ID"
// @Param        actor_id query string false "Acting user ID"
// @Param        action query string false "CREATE, UPDATE, DELETE, RESTORE, LOGIN or SEED"
// @Param        page query int false "Page number"
// @Param        limit query int false "Page size"
// @Success      200  {array} models.AuditLog
// @Failure      400  {object} map[string]string
// @Router       /api/audit-logs [get]
func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	filters := make(map[string]interface{})
	if module := c.Query("module"); module != "" {
		if !auditedModules[module] {
			err := errs.Validation("module", "oneof", "module must be roles, users or inspections")
			return c.Status(errs.StatusCode(err)).JSON(errs.Body(err))
		}
		filters["module"] = module
	}
	for _, key := range []string{"record_id", "actor_id", "action"} {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}

	page := int64(c.QueryInt("page", 1))
	limit := int64(c.QueryInt("limit", 20))

	logs, err := ctrl.Service.ListLogs(c.UserContext(), filters, page, limit)
	if err != nil {
		return c.Status(errs.StatusCode(err)).JSON(errs.Body(err))
	}
	return c.JSON(logs)
}
