package service

import (
	"context"
	"strings"

	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/repository"
	"github.com/sefazor/menutranslator-backend/pkg/qrcode"
	"github.com/sefazor/menutranslator-backend/pkg/storage"
	"go.uber.org/zap"
)

type MenuService struct {
	menuRepo *repository.MenuRepository
	qr       *qrcode.QRService
	storage  storage.StorageService
	log      *zap.Logger
}

// NewMenuService accepts a nil store; stored menu images are then left alone.
func NewMenuService(menuRepo *repository.MenuRepository, qr *qrcode.QRService, store storage.StorageService, log *zap.Logger) *MenuService {
	return &MenuService{
		menuRepo: menuRepo,
		qr:       qr,
		storage:  store,
		log:      log.Named("menu"),
	}
}

func (s *MenuService) List(ctx context.Context, userID uint) ([]models.Menu, error) {
	return s.menuRepo.ListByUser(ctx, userID)
}

// Get returns the menu only to its owner; anyone else sees ErrNotFound.
func (s *MenuService) Get(ctx context.Context, userID, id uint) (*models.Menu, error) {
	menu, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if menu.UserID != userID {
		return nil, ErrNotFound
	}
	return menu, nil
}

func (s *MenuService) Create(ctx context.Context, userID uint, req models.MenuRequest) (*models.Menu, error) {
	menu := &models.Menu{
		UserID:   userID,
		Name:     strings.TrimSpace(req.Name),
		Content:  req.Content,
		ImageKey: imageKeyFor(userID, req.ImageKey),
	}
	if menu.Name == "" || strings.TrimSpace(menu.Content) == "" {
		return nil, ErrEmptyInput
	}
	if err := s.menuRepo.Create(ctx, menu); err != nil {
		return nil, err
	}
	return menu, nil
}

func (s *MenuService) Update(ctx context.Context, userID, id uint, req models.MenuRequest) (*models.Menu, error) {
	menu, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyInput
	}
	menu.Name = name
	menu.Content = req.Content
	if err := s.menuRepo.Update(ctx, menu); err != nil {
		return nil, err
	}
	return menu, nil
}

// Delete removes the menu and, when storage is configured, its source image.
// A failed image delete is logged and does not fail the request.
func (s *MenuService) Delete(ctx context.Context, userID, id uint) error {
	menu, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	deleted, err := s.menuRepo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	if s.storage != nil && menu.ImageKey != "" {
		if err := s.storage.Delete(ctx, menu.ImageKey); err != nil {
			s.log.Warn("menu image not deleted", zap.String("key", menu.ImageKey), zap.Error(err))
		}
	}
	return nil
}

// imageKeyFor only accepts keys the OCR upload produced for this user.
func imageKeyFor(userID uint, key string) string {
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, menuImagePrefix(userID)) {
		return ""
	}
	return key
}

// QRCode renders a PNG pointing at the menu's public page.
func (s *MenuService) QRCode(ctx context.Context, userID, id uint, size int) ([]byte, error) {
	menu, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.qr.GenerateMenuQRCode(menu.ID, size)
}
