package errs

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var statusByKind = []struct {
	target error
	status int
}{
	{ErrAuthentication, fiber.StatusUnauthorized},
	{ErrAuthorization, fiber.StatusForbidden},
	{ErrValidation, fiber.StatusBadRequest},
	{ErrConfirmationRequired, fiber.StatusBadRequest},
	{ErrNotFound, fiber.StatusNotFound},
	{ErrDuplicate, fiber.StatusConflict},
	{ErrConflict, fiber.StatusConflict},
	{ErrImmutableEntity, fiber.StatusUnprocessableEntity},
	{ErrSelfDeletion, fiber.StatusUnprocessableEntity},
	{ErrLastSuperAdmin, fiber.StatusUnprocessableEntity},
}

// StatusCode maps an error kind to the HTTP status returned to clients.
func StatusCode(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	for _, k := range statusByKind {
		if errors.Is(err, k.target) {
			return k.status
		}
	}
	return fiber.StatusInternalServerError
}

// Body renders err as the JSON payload used by every handler.
func Body(err error) fiber.Map {
	body := fiber.Map{"error": err.Error()}
	if ve, ok := AsValidation(err); ok {
		body["field"] = ve.Field
		body["rule"] = ve.Rule
	}
	return body
}
