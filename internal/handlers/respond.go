package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/ta28nov/appandroid-sub000/internal/services"
)

const (
	codeValidation       = "VALIDATION_ERROR"
	codeInvalidOperation = "INVALID_OPERATION"
	codeForbidden        = "AUTHORIZATION_ERROR"
	codeNotFound         = "NOT_FOUND"
	codeInternal         = "INTERNAL_ERROR"
	codeUnauthorized     = "UNAUTHENTICATED"
	codeConflict         = "CONFLICT"
)

// errorDetail controls whether internal error text leaks into responses.
// Enabled only outside production-like configuration.
var errorDetail bool

func EnableErrorDetail() {
	errorDetail = true
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   errorBody{Message: message, Code: code},
	})
}

func failInternal(c *fiber.Ctx, message string, err error) error {
	body := errorBody{Message: message, Code: codeInternal}
	if errorDetail && err != nil {
		body.Detail = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   body,
	})
}

// mapServiceError translates the service error taxonomy onto HTTP statuses:
// validation and invalid operations are 400, authorization 403, missing or
// ownership-mismatched resources 404, everything else 500.
func mapServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fail(c, fiber.StatusBadRequest, codeValidation, "Invalid request")
	case errors.Is(err, services.ErrInvalidOperation):
		return fail(c, fiber.StatusBadRequest, codeInvalidOperation, "Operation not allowed")
	case errors.Is(err, services.ErrForbidden):
		return fail(c, fiber.StatusForbidden, codeForbidden, "Forbidden")
	case errors.Is(err, services.ErrNotFound):
		return fail(c, fiber.StatusNotFound, codeNotFound, "Not found")
	default:
		return failInternal(c, "Request failed", err)
	}
}

// actorID reads the authenticated user id placed in Locals by the auth
// middleware.
func actorID(c *fiber.Ctx) (int64, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0, errors.New("missing user id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}

func failUnauthorized(c *fiber.Ctx) error {
	return fail(c, fiber.StatusUnauthorized, codeUnauthorized, "Invalid token")
}
