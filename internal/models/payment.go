package models

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusCanceled  = "canceled"
	PaymentStatusCompleted = "completed"
)

// Result statuses returned by payment verification.
const (
	VerifyStatusCompleted        = "completed"
	VerifyStatusAlreadyProcessed = "already_processed"
)

// PaymentIntent records one checkout attempt. It reaches completed at most once.
type PaymentIntent struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            uint      `json:"user_id" gorm:"index;not null"`
	PackageID         *uint     `json:"package_id,omitempty"`
	ProviderSessionID string    `json:"provider_session_id" gorm:"uniqueIndex;not null"`
	AmountCents       int64     `json:"amount_cents" gorm:"not null"`
	Currency          string    `json:"currency" gorm:"not null"`
	Credits           int       `json:"credits" gorm:"not null"`
	ProductName       string    `json:"product_name"`
	Status            string    `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type CreateCheckoutRequest struct {
	Credits     int    `json:"credits" validate:"required,gt=0"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	ProductName string `json:"productName" validate:"required,max=200"`
}

type CheckoutSession struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
}

type VerifyPaymentRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type CreditsAdded struct {
	Total int `json:"total"`
	Added int `json:"added"`
}

type VerifyPaymentResponse struct {
	Success bool          `json:"success"`
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Credits *CreditsAdded `json:"credits,omitempty"`
}
