package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/pkg/storage"
	"go.uber.org/zap"
)

// OCRProvider extracts text from an image.
type OCRProvider interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

type OCRService struct {
	provider OCRProvider
	storage  storage.StorageService
	log      *zap.Logger
}

// NewOCRService accepts a nil store, in which case uploads are not kept.
func NewOCRService(provider OCRProvider, store storage.StorageService, log *zap.Logger) *OCRService {
	return &OCRService{
		provider: provider,
		storage:  store,
		log:      log.Named("ocr"),
	}
}

func (s *OCRService) Extract(ctx context.Context, userID uint, filename, contentType string, image []byte) (*models.OCRResponse, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if len(image) == 0 {
		return nil, ErrEmptyInput
	}

	resp := &models.OCRResponse{}
	if s.storage != nil {
		key := menuImagePrefix(userID) + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
		if err := s.storage.Upload(ctx, key, contentType, bytes.NewReader(image)); err != nil {
			s.log.Warn("menu image not stored", zap.Uint("user_id", userID), zap.Error(err))
		} else {
			resp.ImageKey = key
		}
	}

	text, err := s.provider.ExtractText(ctx, image)
	if err != nil {
		s.log.Error("ocr failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, providerError("ocr", err)
	}
	resp.Text = text
	return resp, nil
}

func menuImagePrefix(userID uint) string {
	return fmt.Sprintf("menus/%d/", userID)
}
