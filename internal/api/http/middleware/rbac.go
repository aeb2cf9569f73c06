package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/caseservice/pkg/authorize"
)

// RequirePermission checks the scoped principal's membership role against
// the policy for the current lab domain. It must run after LabScope.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		err := authorize.EnforceContext(c.Context(), auth, resource, action)
		switch {
		case err == nil:
			return c.Next()
		case errors.Is(err, authorize.ErrNoSubjectInContext):
			return fiber.NewError(fiber.StatusForbidden, "User lab information not available")
		case errors.Is(err, authorize.ErrForbidden):
			return fiber.ErrForbidden
		default:
			return err
		}
	}
}
