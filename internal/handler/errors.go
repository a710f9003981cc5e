package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/menutranslator-backend/internal/middleware"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/service"
	"go.uber.org/zap"
)

// writeError maps service errors onto HTTP statuses and the response envelope.
// Unknown errors are logged and reported as 500 without details.
func writeError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var insufficient *service.InsufficientCreditsError

	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusPaymentRequired).JSON(models.Response{
			Success: false,
			Code:    "insufficient_credits",
			Error:   "Insufficient credits",
			Data: fiber.Map{
				"required":  insufficient.Required,
				"available": insufficient.Available,
			},
		})
	case errors.Is(err, service.ErrInsufficientCredits):
		return c.Status(fiber.StatusPaymentRequired).JSON(models.CodedErrorResponse("insufficient_credits", "Insufficient credits"))
	case errors.Is(err, service.ErrEmptyInput):
		return c.Status(fiber.StatusBadRequest).JSON(models.CodedErrorResponse("empty_input", err.Error()))
	case errors.Is(err, service.ErrNoTargetLanguages):
		return c.Status(fiber.StatusBadRequest).JSON(models.CodedErrorResponse("no_target_languages", err.Error()))
	case errors.Is(err, service.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(models.CodedErrorResponse("invalid_request", err.Error()))
	case errors.Is(err, service.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(models.CodedErrorResponse("unauthenticated", "Authentication required"))
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(models.CodedErrorResponse("invalid_credentials", err.Error()))
	case errors.Is(err, service.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(models.CodedErrorResponse("forbidden", "Forbidden"))
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(models.CodedErrorResponse("not_found", err.Error()))
	case errors.Is(err, service.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(models.CodedErrorResponse("email_taken", err.Error()))
	case errors.Is(err, service.ErrProvider):
		log.Warn("provider error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(models.CodedErrorResponse("provider_error", "Upstream provider is unavailable, please try again"))
	}

	log.Error("request failed", zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(models.CodedErrorResponse("internal", "Internal server error"))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.CodedErrorResponse("invalid_request", msg))
}

// userID reads the authenticated caller set by AuthMiddleware. It returns 0
// when the request is anonymous.
func userID(c *fiber.Ctx) uint {
	id, _ := c.Locals(middleware.LocalUserID).(uint)
	return id
}
