package models

import "time"

const (
	TierFree = "free"
)

// CreditAccount is the per-user ledger row. used_credits never exceeds
// total_credits; every write goes through a conditional UPDATE.
type CreditAccount struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	TotalCredits int       `json:"total_credits" gorm:"not null;default:0;check:chk_credit_accounts_balance,used_credits <= total_credits"`
	UsedCredits  int       `json:"used_credits" gorm:"not null;default:0"`
	Tier         string    `json:"tier" gorm:"not null;default:'free'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *CreditAccount) Available() int {
	if a.TotalCredits <= a.UsedCredits {
		return 0
	}
	return a.TotalCredits - a.UsedCredits
}

type CreditSummary struct {
	TotalCredits     int       `json:"total_credits"`
	UsedCredits      int       `json:"used_credits"`
	AvailableCredits int       `json:"available_credits"`
	UsagePercentage  float64   `json:"usage_percentage"`
	Tier             string    `json:"tier"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewCreditSummary(a *CreditAccount) CreditSummary {
	var pct float64
	if a.TotalCredits > 0 {
		pct = float64(a.UsedCredits) / float64(a.TotalCredits) * 100
		if pct > 100 {
			pct = 100
		}
		if pct < 0 {
			pct = 0
		}
	}
	return CreditSummary{
		TotalCredits:     a.TotalCredits,
		UsedCredits:      a.UsedCredits,
		AvailableCredits: a.Available(),
		UsagePercentage:  pct,
		Tier:             a.Tier,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}
