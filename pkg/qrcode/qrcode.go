package qrcode

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

// QRService renders QR codes that point at public menu pages.
type QRService struct {
	baseURL string // e.g. "https://app.example.com/menus/"
}

func NewQRService(baseURL string) *QRService {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &QRService{
		baseURL: baseURL,
	}
}

func (s *QRService) MenuURL(menuID uint) string {
	return fmt.Sprintf("%s%d", s.baseURL, menuID)
}

// GenerateMenuQRCode returns a PNG for the menu's public URL.
func (s *QRService) GenerateMenuQRCode(menuID uint, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(s.MenuURL(menuID), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code PNG: %w", err)
	}
	return png, nil
}
