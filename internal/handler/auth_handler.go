package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/menutranslator-backend/internal/controller"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/pkg/utils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authController *controller.AuthController
	validator      *utils.Validator
	log            *zap.Logger
}

func NewAuthHandler(authController *controller.AuthController, validator *utils.Validator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authController: authController,
		validator:      validator,
		log:            log,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, utils.FormatErrors(err))
	}

	resp, err := h.authController.Register(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(resp, "User registered successfully"))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, utils.FormatErrors(err))
	}

	resp, err := h.authController.Login(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(resp, "Login successful"))
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, utils.FormatErrors(err))
	}

	if err := h.authController.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(nil, "If the address is registered, a reset link has been sent"))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, utils.FormatErrors(err))
	}

	if err := h.authController.ResetPassword(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(nil, "Password reset successful"))
}
