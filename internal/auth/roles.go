package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireSelfOrSupervisor lets the request through when the route parameter names
// the caller, or the caller is a supervisor.
func RequireSelfOrSupervisor(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if !principal.CanActFor(c.Params(param)) {
			return fiber.NewError(http.StatusForbidden, "may only act for yourself")
		}
		return c.Next()
	}
}

// RequireIngressKey guards the ingress route with a shared key. An empty key disables the check.
func RequireIngressKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}
		supplied := c.Get("X-Ingress-Key")
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(key)) != 1 {
			return fiber.NewError(http.StatusUnauthorized, "invalid ingress key")
		}
		return c.Next()
	}
}
