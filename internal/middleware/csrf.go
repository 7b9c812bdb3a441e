package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// CsrfHeader is the request header carrying the per-session anti-forgery token.
const CsrfHeader = "X-Csrf-Token"

// validateSession is injected at bootstrap (cache.ValidateSession). Kept as a
// function value so this package does not depend on the cache package.
var validateSession func(ctx context.Context, sessionID, token string) bool

// InitCsrf wires the session validator used by CsrfRequired.
func InitCsrf(validate func(ctx context.Context, sessionID, token string) bool) {
	validateSession = validate
}

// CsrfRequired enforces the per-session anti-forgery token on mutating routes.
// Must run after AuthRequired so the session ID is available in locals.
// Absence or mismatch is unauthorized, matching the cookie-session contract
// of form-posted CSRF tokens.
func CsrfRequired(c *fiber.Ctx) error {
	sessionID, _ := c.Locals("sessionID").(string)
	token := c.Get(CsrfHeader)

	if sessionID == "" || token == "" || validateSession == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Access unauthorized",
		})
	}

	if !validateSession(c.Context(), sessionID, token) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Access unauthorized",
		})
	}

	return c.Next()
}
