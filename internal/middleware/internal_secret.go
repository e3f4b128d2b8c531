package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/scoreline/scoreline-api/internal/utils"
)

// InternalSecretHeader carries the shared secret on service-to-service calls.
const InternalSecretHeader = "X-Internal-Secret"

// InternalOnly guards routes reserved for trusted backend callers such as
// the grading worker and the payment webhook relay. An empty configured
// secret disables the routes entirely rather than leaving them open.
func InternalOnly(secret string) fiber.Handler {
	secret = strings.TrimSpace(secret)

	return func(c *fiber.Ctx) error {
		if secret == "" {
			return utils.SendError(c, fiber.StatusForbidden, "internal endpoints disabled")
		}

		presented := strings.TrimSpace(c.Get(InternalSecretHeader))
		if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			return utils.SendError(c, fiber.StatusForbidden, "invalid internal secret")
		}

		return c.Next()
	}
}
