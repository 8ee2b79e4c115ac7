package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/site-auth/internal/domain"
	apperrors "github.com/spec-kit/site-auth/pkg/util/errorutil"
)

// RequireAuthenticated ensures a principal was loaded by AuthMiddleware.
func RequireAuthenticated(loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.WithRedirect(apperrors.NewUnauthorized("authentication required"), loginPath)
		}
		return c.Next()
	}
}

// RequireUserType ensures the principal holds one of the allowed user types.
// Anonymous callers and callers of another type are both sent to loginPath.
func RequireUserType(loginPath string, allowed ...domain.UserType) fiber.Handler {
	allowedSet := make(map[domain.UserType]struct{}, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.WithRedirect(apperrors.NewUnauthorized("authentication required"), loginPath)
		}
		if _, exists := allowedSet[principal.User.UserType]; !exists {
			return apperrors.WithRedirect(apperrors.NewForbidden("insufficient permissions"), loginPath)
		}
		return c.Next()
	}
}
