package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/menutranslator-backend/internal/models"
	jwtPkg "github.com/sefazor/menutranslator-backend/pkg/jwt"
	"go.uber.org/zap"
)

const (
	LocalUserID    = "userID"
	LocalUserEmail = "userEmail"
)

// AuthMiddleware rejects requests without a valid bearer token and stores the
// caller's id and email in the request locals.
func AuthMiddleware(tokens *jwtPkg.Manager, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.CodedErrorResponse("unauthenticated", "Authorization header is required"))
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(models.CodedErrorResponse("unauthenticated", "Invalid authorization header format"))
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil || claims.UserID == 0 {
			log.Debug("rejected bearer token", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(models.CodedErrorResponse("unauthenticated", "Invalid token"))
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUserEmail, claims.Email)

		return c.Next()
	}
}
