package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/menutranslator-backend/internal/controller"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/pkg/utils"
	"go.uber.org/zap"
)

type UserHandler struct {
	userController *controller.UserController
	validator      *utils.Validator
	log            *zap.Logger
}

func NewUserHandler(userController *controller.UserController, validator *utils.Validator, log *zap.Logger) *UserHandler {
	return &UserHandler{
		userController: userController,
		validator:      validator,
		log:            log,
	}
}

func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	profile, err := h.userController.GetProfile(c.UserContext(), userID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(profile, ""))
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req models.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, utils.FormatErrors(err))
	}

	if err := h.userController.ChangePassword(c.UserContext(), userID(c), req); err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(nil, "Password changed successfully"))
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, utils.FormatErrors(err))
	}

	updatedUser, err := h.userController.UpdateProfile(c.UserContext(), userID(c), req)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(updatedUser, "Profile updated successfully"))
}
