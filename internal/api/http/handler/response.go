package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
)

// Kind classifies an error response for clients.
type Kind string

const (
	KindInvalidInput    Kind = "InvalidInput"
	KindUnauthenticated Kind = "Unauthenticated"
	KindForbidden       Kind = "Forbidden"
	KindNotFound        Kind = "NotFound"
	KindTooManyRequests Kind = "TooManyRequests"
	KindInternal        Kind = "Internal"
)

// ErrorBody is the payload under the "error" key of every failed response.
type ErrorBody struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func kindFor(status int) Kind {
	switch status {
	case fiber.StatusUnauthorized:
		return KindUnauthenticated
	case fiber.StatusForbidden:
		return KindForbidden
	case fiber.StatusNotFound:
		return KindNotFound
	case fiber.StatusTooManyRequests:
		return KindTooManyRequests
	}
	if status >= 500 {
		return KindInternal
	}
	return KindInvalidInput
}

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func fail(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": ErrorBody{
		Kind:    kindFor(status),
		Message: msg,
		Status:  status,
	}})
}

func badRequest(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusBadRequest, msg)
}

func unauthorized(c fiber.Ctx) error {
	return fail(c, fiber.StatusUnauthorized, "Authentication required")
}

func forbidden(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusForbidden, msg)
}

func notFound(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusNotFound, msg)
}

func internalError(c fiber.Ctx) error {
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}

// ErrorHandler renders errors returned by middleware and handlers in the
// same envelope as handler responses. Anything that is not a *fiber.Error
// is logged and hidden behind a generic 500.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fail(c, fe.Code, fe.Message)
		}
		logger.ErrorContext(c.Context(), "unhandled error",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		return internalError(c)
	}
}
