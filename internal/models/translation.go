package models

import "time"

const (
	TranslationStatusPending   = "pending"
	TranslationStatusCompleted = "completed"
	TranslationStatusError     = "error"
)

// AutoDetectLanguage asks the provider to detect the source language.
const AutoDetectLanguage = "auto"

// TranslationRecord is append-only: one row per target language of a translate action.
type TranslationRecord struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	BatchID           string    `json:"batch_id" gorm:"index;not null"`
	UserID            uint      `json:"user_id" gorm:"index;not null"`
	MenuID            *uint     `json:"menu_id,omitempty" gorm:"index"`
	Menu              *Menu     `json:"menu,omitempty" gorm:"foreignKey:MenuID;constraint:OnDelete:SET NULL"`
	SourceLanguage    string    `json:"source_language" gorm:"not null"`
	TargetLanguage    string    `json:"target_language" gorm:"not null"`
	SourceContent     string    `json:"source_content" gorm:"type:text;not null"`
	TranslatedContent string    `json:"translated_content" gorm:"type:text"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	Status            string    `json:"status" gorm:"not null"`
	CreatedAt         time.Time `json:"created_at"`
}

func (TranslationRecord) TableName() string {
	return "translations"
}

type TranslateRequest struct {
	Text         string   `json:"text"`
	FromLanguage string   `json:"fromLanguage"`
	ToLanguages  []string `json:"toLanguages"`
	MenuID       *uint    `json:"menuId,omitempty"`
}

type TranslateResponse struct {
	BatchID          string            `json:"batch_id"`
	Translations     map[string]string `json:"translations"`
	Errors           map[string]string `json:"errors,omitempty"`
	CreditsCharged   int               `json:"credits_charged"`
	CreditsAvailable int               `json:"credits_available"`
}

type TranslationHistoryItem struct {
	ID                uint      `json:"id"`
	MenuID            *uint     `json:"menu_id,omitempty"`
	MenuName          string    `json:"menu_name,omitempty"`
	SourceLanguage    string    `json:"source_language"`
	TargetLanguage    string    `json:"target_language"`
	SourceContent     string    `json:"source_content"`
	TranslatedContent string    `json:"translated_content"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}
