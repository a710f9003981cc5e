package repository

import (
	"context"

	"github.com/sefazor/menutranslator-backend/internal/models"
	"gorm.io/gorm"
)

type TranslationRepository struct {
	db *gorm.DB
}

func NewTranslationRepository(db *gorm.DB) *TranslationRepository {
	return &TranslationRepository{db: db}
}

// CreateBatch appends all records of one translate action in a single statement.
func (r *TranslationRepository) CreateBatch(ctx context.Context, records []models.TranslationRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Menu").Create(&records).Error
}

func (r *TranslationRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.TranslationRecord, error) {
	var records []models.TranslationRecord
	query := r.db.WithContext(ctx).
		Preload("Menu").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	return records, err
}

func (r *TranslationRepository) GetByIDForUser(ctx context.Context, id, userID uint) (*models.TranslationRecord, error) {
	var record models.TranslationRecord
	err := r.db.WithContext(ctx).
		Preload("Menu").
		Where("id = ? AND user_id = ?", id, userID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *TranslationRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TranslationRecord{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
