package api

import "github.com/gofiber/fiber/v2"

// Route is implemented by every feature Api; fx collects them in the "routes" group.
type Route interface {
	Setup(app *fiber.App)
}
