package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/caseservice/internal/service/auth"
	"github.com/Alijeyrad/caseservice/pkg/reqctx"
)

const (
	// HeaderLabID optionally names the lab a multi-lab user acts in.
	HeaderLabID = "X-Lab-ID"

	LocalsLabID      = "lab_id"
	LocalsMemberRole = "member_role"
)

// LabScope resolves the caller's lab and attaches it to the principal. It
// must run after AuthRequired. Without a resolvable lab the request is
// forbidden.
func LabScope(svc auth.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, ok := IdentityFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		p, ok := PrincipalFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		scope, err := svc.SelectScope(id, c.Get(HeaderLabID))
		if err != nil {
			if errors.Is(err, auth.ErrLabNotAllowed) {
				return fiber.NewError(fiber.StatusForbidden, "Not a member of the requested lab")
			}
			return fiber.NewError(fiber.StatusForbidden, "User lab information not available")
		}

		scoped := *p
		scoped.LabID = scope.LabID
		scoped.Role = scope.Role

		c.Locals(LocalsPrincipal, &scoped)
		c.Locals(LocalsLabID, scope.LabID)
		c.Locals(LocalsMemberRole, scope.Role)
		c.SetContext(reqctx.WithPrincipal(c.Context(), &scoped))

		return c.Next()
	}
}

// LabIDFromFiber returns the lab stored by LabScope.
func LabIDFromFiber(c fiber.Ctx) (string, bool) {
	s, ok := c.Locals(LocalsLabID).(string)
	return s, ok && s != ""
}
