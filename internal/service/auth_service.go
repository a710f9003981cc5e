package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/repository"
	"github.com/sefazor/menutranslator-backend/pkg/bcrypt"
	jwtPkg "github.com/sefazor/menutranslator-backend/pkg/jwt"
	"go.uber.org/zap"
)

const (
	TokenExpiryReset = 60 * time.Minute

	tokenTypePasswordReset = "password_reset"
)

// PasswordResetMailer sends the reset link.
type PasswordResetMailer interface {
	SendPasswordResetEmail(email, resetToken string) error
}

type AuthService struct {
	userRepo  *repository.UserRepository
	mailer    PasswordResetMailer
	tokens    *jwtPkg.Manager
	jwtSecret []byte
	jwtIssuer string
	log       *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, mailer PasswordResetMailer, tokens *jwtPkg.Manager, secret, issuer string, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		mailer:    mailer,
		tokens:    tokens,
		jwtSecret: []byte(secret),
		jwtIssuer: issuer,
		log:       log.Named("auth"),
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	emailAddr := normalizeEmail(req.Email)

	exists, err := s.userRepo.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName: strings.TrimSpace(req.FullName),
		Email:    emailAddr,
		Password: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.Email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("token generation failed: %w", err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID))
	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.ComparePassword(user.Password, req.Password); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatch) {
			s.log.Error("stored password hash is unusable", zap.Uint("user_id", user.ID), zap.Error(err))
		}
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.Email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("token generation failed: %w", err)
	}

	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

// ForgotPassword never reveals whether the address is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if !repository.IsNotFound(err) {
			s.log.Error("forgot-password lookup failed", zap.Error(err))
		}
		return nil
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.Email,
		"exp":  now.Add(TokenExpiryReset).Unix(),
		"iat":  now.Unix(),
		"iss":  s.jwtIssuer,
		"type": tokenTypePasswordReset,
		"hp":   passwordFingerprint(user.Password),
	}
	resetToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetEmail(user.Email, resetToken); err != nil {
		s.log.Error("failed to send password reset email", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// ResetPassword accepts a token only while the password it was issued for is
// still current, so a token works once.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	emailAddr, fingerprint, err := s.parseResetToken(token)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("%w: invalid or expired token", ErrInvalidRequest)
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(fingerprint), []byte(passwordFingerprint(user.Password))) != 1 {
		return fmt.Errorf("%w: invalid or expired token", ErrInvalidRequest)
	}

	hashedPassword, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword)
}

func (s *AuthService) parseResetToken(token string) (string, string, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", fmt.Errorf("%w: invalid or expired token", ErrInvalidRequest)
	}

	if typ, _ := claims["type"].(string); typ != tokenTypePasswordReset {
		return "", "", fmt.Errorf("%w: invalid token type", ErrInvalidRequest)
	}
	emailAddr, ok := claims["sub"].(string)
	fingerprint, _ := claims["hp"].(string)
	if !ok || emailAddr == "" || fingerprint == "" {
		return "", "", fmt.Errorf("%w: invalid token claims", ErrInvalidRequest)
	}
	return emailAddr, fingerprint, nil
}

// passwordFingerprint binds a reset token to the stored hash without
// exposing any of it.
func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return hashed, err
}

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
