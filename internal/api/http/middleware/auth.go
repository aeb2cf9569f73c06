package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/caseservice/internal/service/auth"
	"github.com/Alijeyrad/caseservice/pkg/reqctx"
	"github.com/Alijeyrad/caseservice/pkg/ums"
)

const (
	LocalsIdentity  = "identity"
	LocalsPrincipal = "principal"
)

// AuthRequired verifies the Bearer token with the identity service. On
// success the identity is stored in c.Locals(LocalsIdentity) and the
// principal in c.Locals(LocalsPrincipal) and in the request context.
// It does not pick a lab; LabScope does that.
func AuthRequired(svc auth.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		if h == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header is required")
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
		}
		token := strings.TrimSpace(parts[1])

		id, err := svc.Verify(c.Context(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		p := &reqctx.Principal{
			UserID: id.Subject(),
			Email:  id.Email,
			Token:  token,
		}
		c.Locals(LocalsIdentity, id)
		c.Locals(LocalsPrincipal, p)
		c.SetContext(reqctx.WithPrincipal(c.Context(), p))

		return c.Next()
	}
}

// IdentityFromFiber returns the identity stored by AuthRequired.
func IdentityFromFiber(c fiber.Ctx) (*ums.Identity, bool) {
	id, ok := c.Locals(LocalsIdentity).(*ums.Identity)
	return id, ok && id != nil
}

// PrincipalFromFiber returns the principal stored by AuthRequired, with the
// lab scope filled in once LabScope has run.
func PrincipalFromFiber(c fiber.Ctx) (*reqctx.Principal, bool) {
	p, ok := c.Locals(LocalsPrincipal).(*reqctx.Principal)
	return p, ok && p != nil
}
