package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/menutranslator-backend/internal/models"
)

// MetricsAuth only lets scrapers presenting the configured bearer token through.
// With no token configured the endpoint answers 404.
func MetricsAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.SendStatus(fiber.StatusNotFound)
		}

		presented, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(presented)), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(models.CodedErrorResponse("unauthenticated", "Invalid metrics token"))
		}
		return c.Next()
	}
}
