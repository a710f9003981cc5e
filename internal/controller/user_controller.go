package controller

import (
	"context"

	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/service"
)

type UserController struct {
	userService   *service.UserService
	creditService *service.CreditService
}

func NewUserController(userService *service.UserService, creditService *service.CreditService) *UserController {
	return &UserController{
		userService:   userService,
		creditService: creditService,
	}
}

func (c *UserController) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return c.userService.GetUserByID(ctx, id)
}

// GetProfile returns the user together with their credit summary.
func (c *UserController) GetProfile(ctx context.Context, id uint) (*models.ProfileResponse, error) {
	user, err := c.userService.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	credits, err := c.creditService.GetSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ProfileResponse{
		User:    *user,
		Credits: *credits,
	}, nil
}

func (c *UserController) ChangePassword(ctx context.Context, userID uint, req models.ChangePasswordRequest) error {
	return c.userService.ChangePassword(ctx, userID, req)
}

func (c *UserController) UpdateProfile(ctx context.Context, userID uint, req models.UpdateProfileRequest) (*models.User, error) {
	return c.userService.UpdateProfile(ctx, userID, req)
}
