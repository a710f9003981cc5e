package models

import "time"

type CreditPackage struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"uniqueIndex;not null"`
	Description   string    `json:"description"`
	Credits       int       `json:"credits" gorm:"not null"`
	PriceCents    int64     `json:"price_cents" gorm:"not null"`
	Currency      string    `json:"currency" gorm:"not null;default:'brl'"`
	DiscountLabel string    `json:"discount_label"`
	IsActive      bool      `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PricePerCreditCents is rounded down to the minor unit.
func (p *CreditPackage) PricePerCreditCents() int64 {
	if p.Credits <= 0 {
		return 0
	}
	return p.PriceCents / int64(p.Credits)
}
