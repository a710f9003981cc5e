package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/service"
	"github.com/sefazor/menutranslator-backend/pkg/qrcode"
	"github.com/sefazor/menutranslator-backend/pkg/utils"
	"go.uber.org/zap"
)

const maxQRCodeSize = 1024

type MenuHandler struct {
	menuService *service.MenuService
	validator   *utils.Validator
	log         *zap.Logger
}

func NewMenuHandler(menuService *service.MenuService, validator *utils.Validator, log *zap.Logger) *MenuHandler {
	return &MenuHandler{
		menuService: menuService,
		validator:   validator,
		log:         log,
	}
}

func (h *MenuHandler) List(c *fiber.Ctx) error {
	menus, err := h.menuService.List(c.UserContext(), userID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(menus, ""))
}

func (h *MenuHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "Invalid menu ID")
	}

	menu, err := h.menuService.Get(c.UserContext(), userID(c), uint(id))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(menu, ""))
}

func (h *MenuHandler) Create(c *fiber.Ctx) error {
	var req models.MenuRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, utils.FormatErrors(err))
	}

	menu, err := h.menuService.Create(c.UserContext(), userID(c), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(menu, "Menu created successfully"))
}

func (h *MenuHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "Invalid menu ID")
	}

	var req models.MenuRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, utils.FormatErrors(err))
	}

	menu, err := h.menuService.Update(c.UserContext(), userID(c), uint(id), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(menu, "Menu updated successfully"))
}

func (h *MenuHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "Invalid menu ID")
	}

	if err := h.menuService.Delete(c.UserContext(), userID(c), uint(id)); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Menu deleted successfully"))
}

// QRCode streams a PNG linking to the menu's public page.
func (h *MenuHandler) QRCode(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "Invalid menu ID")
	}

	size := c.QueryInt("size", qrcode.DefaultSize)
	if size <= 0 || size > maxQRCodeSize {
		size = qrcode.DefaultSize
	}

	png, err := h.menuService.QRCode(c.UserContext(), userID(c), uint(id), size)
	if err != nil {
		return writeError(c, h.log, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
