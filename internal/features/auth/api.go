package auth

import (
	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	middleware *AuthMiddleware
}

func NewAuthApi(controller *AuthController, middleware *AuthMiddleware) *AuthApi {
	return &AuthApi{
		controller: controller,
		middleware: middleware,
	}
}

// Setup registers all auth-related routes
func (h *AuthApi) Setup(app *fiber.App) {
	app.Post("/api/auth/login", h.controller.Login)
	app.Get("/api/auth/me", h.middleware.Handle, h.controller.Me)
}
