package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/service"
	"go.uber.org/zap"
)

type CreditHandler struct {
	creditService *service.CreditService
	log           *zap.Logger
}

func NewCreditHandler(creditService *service.CreditService, log *zap.Logger) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
		log:           log,
	}
}

// GetCredits returns the caller's balance, creating the account on first use.
func (h *CreditHandler) GetCredits(c *fiber.Ctx) error {
	summary, err := h.creditService.GetSummary(c.UserContext(), userID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(summary, ""))
}
