package repository

import (
	"context"
	"time"

	"github.com/sefazor/menutranslator-backend/internal/models"
	"gorm.io/gorm"
)

type PaymentIntentRepository struct {
	db *gorm.DB
}

func NewPaymentIntentRepository(db *gorm.DB) *PaymentIntentRepository {
	return &PaymentIntentRepository{
		db: db,
	}
}

func (r *PaymentIntentRepository) WithTx(tx *gorm.DB) *PaymentIntentRepository {
	return &PaymentIntentRepository{db: tx}
}

func (r *PaymentIntentRepository) Create(ctx context.Context, intent *models.PaymentIntent) error {
	return r.db.WithContext(ctx).Create(intent).Error
}

func (r *PaymentIntentRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.db.WithContext(ctx).Where("provider_session_id = ?", sessionID).First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// UpdateStatus records a provider-reported status. Completed intents are never
// touched.
func (r *PaymentIntentRepository) UpdateStatus(ctx context.Context, sessionID, status string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("provider_session_id = ? AND status <> ?", sessionID, models.PaymentStatusCompleted).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkCompleted performs the single transition into completed. It reports
// false when another caller already completed the intent.
func (r *PaymentIntentRepository) MarkCompleted(ctx context.Context, sessionID string) (bool, error) {
	return r.UpdateStatus(ctx, sessionID, models.PaymentStatusCompleted)
}

func (r *PaymentIntentRepository) GetUserHistory(ctx context.Context, userID uint) ([]models.PaymentIntent, error) {
	var intents []models.PaymentIntent
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&intents).Error
	return intents, err
}
