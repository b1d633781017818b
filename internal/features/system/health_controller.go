package system

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheStatus reports how many records a store holds.
type CacheStatus interface {
	Name() string
	Len() int
	Loaded() bool
}

type HealthController struct {
	db     Pinger
	caches []CacheStatus
}

func NewHealthController(db Pinger, caches ...CacheStatus) *HealthController {
	return &HealthController{db: db, caches: caches}
}

// Health godoc
// @Summary      Liveness and cache state
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthController) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	body := fiber.Map{"status": "ok"}
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			status = fiber.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = err.Error()
		}
	}

	caches := fiber.Map{}
	for _, s := range h.caches {
		caches[s.Name()] = fiber.Map{"items": s.Len(), "loaded": s.Loaded()}
	}
	body["caches"] = caches

	return c.Status(status).JSON(body)
}
