package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/caseservice/pkg/constants"
)

// Health answers GET /health. It does not check dependencies; /readyz does.
func Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": constants.ServiceName,
		"version": constants.ServiceVersion,
	})
}
