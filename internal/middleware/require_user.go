package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/scoreline/scoreline-api/internal/utils"
)

// RequireUser rejects requests that carry no authenticated user. It runs
// after JWTProtected and guards routes that act on the caller's own data.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if value := c.Locals("user_id"); value != nil {
			if id, ok := value.(uint); ok && id > 0 {
				return c.Next()
			}
		}
		return utils.SendErrorWithAction(c, fiber.StatusUnauthorized, "authentication required", utils.ActionSignIn)
	}
}
