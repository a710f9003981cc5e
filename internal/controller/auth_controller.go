package controller

import (
	"context"

	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/service"
)

type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

func (c *AuthController) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	return c.authService.Register(ctx, req)
}

func (c *AuthController) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	return c.authService.Login(ctx, req)
}

func (c *AuthController) ForgotPassword(ctx context.Context, email string) error {
	return c.authService.ForgotPassword(ctx, email)
}

func (c *AuthController) ResetPassword(ctx context.Context, token string, newPassword string) error {
	return c.authService.ResetPassword(ctx, token, newPassword)
}
