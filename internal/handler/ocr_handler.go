package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/service"
	"github.com/sefazor/menutranslator-backend/pkg/utils"
	"go.uber.org/zap"
)

// 10 MB
const maxImageSize = 10 << 20

type OCRHandler struct {
	ocrService *service.OCRService
	validator  *utils.Validator
	log        *zap.Logger
}

func NewOCRHandler(ocrService *service.OCRService, validator *utils.Validator, log *zap.Logger) *OCRHandler {
	return &OCRHandler{
		ocrService: ocrService,
		validator:  validator,
		log:        log,
	}
}

// Extract reads the multipart "image" field and returns the recognised text.
func (h *OCRHandler) Extract(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "image file is required")
	}
	if file.Size > maxImageSize {
		return badRequest(c, "image exceeds 10MB")
	}

	var image []byte
	if file.Size > 0 {
		contentType := file.Header.Get(fiber.HeaderContentType)
		if err := h.validator.Var(contentType, "supported_image"); err != nil {
			return badRequest(c, "Unsupported image type")
		}

		f, err := file.Open()
		if err != nil {
			return writeError(c, h.log, err)
		}
		defer f.Close()

		image, err = io.ReadAll(io.LimitReader(f, maxImageSize))
		if err != nil {
			return writeError(c, h.log, err)
		}
	}

	resp, err := h.ocrService.Extract(c.UserContext(), userID(c), file.Filename, file.Header.Get(fiber.HeaderContentType), image)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(resp, ""))
}
