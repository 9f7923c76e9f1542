package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// RequireAdmin ensures the caller is an administrator. Reference data is
// only writable by admins.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil || !principal.User.Admin {
			return apperrors.NewForbidden("administrator required")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
