package models

import "time"

type Menu struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	ImageKey  string    `json:"image_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MenuRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`

	// ImageKey links the menu to an image returned by OCR.
	ImageKey string `json:"imageKey,omitempty" validate:"omitempty,max=300"`
}

type OCRResponse struct {
	Text     string `json:"text"`
	ImageKey string `json:"image_key,omitempty"`
}
