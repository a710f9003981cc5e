package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/service"
	"go.uber.org/zap"
)

type TranslationHandler struct {
	translationService *service.TranslationService
	log                *zap.Logger
}

func NewTranslationHandler(translationService *service.TranslationService, log *zap.Logger) *TranslationHandler {
	return &TranslationHandler{
		translationService: translationService,
		log:                log.Named("translate"),
	}
}

func (h *TranslationHandler) Translate(c *fiber.Ctx) error {
	var req models.TranslateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.translationService.Translate(c.UserContext(), userID(c), req)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(resp, ""))
}

func (h *TranslationHandler) ListTranslations(c *fiber.Ctx) error {
	items, err := h.translationService.History(c.UserContext(), userID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(items, ""))
}

func (h *TranslationHandler) GetTranslation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "Invalid translation ID")
	}

	item, err := h.translationService.GetTranslation(c.UserContext(), userID(c), uint(id))
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(item, ""))
}
