package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Eco points entry types. Earned and bonus entries carry positive points,
// spent and penalty entries negative.
const (
	PointsEarnedSale     = "earned_sale"
	PointsEarnedPurchase = "earned_purchase"
	PointsEarnedReview   = "earned_review"
	PointsEarnedReferral = "earned_referral"
	PointsSpentDiscount  = "spent_discount"
	PointsSpentCashout   = "spent_cashout"
	PointsSpentDonation  = "spent_donation"
	PointsBonus          = "bonus"
	PointsPenalty        = "penalty"
)

// PointsEntryPolarity returns +1 for entry types that must carry positive
// points, -1 for those that must carry negative points, and 0 for unknown
// types.
func PointsEntryPolarity(entryType string) int {
	switch entryType {
	case PointsEarnedSale, PointsEarnedPurchase, PointsEarnedReview, PointsEarnedReferral, PointsBonus:
		return 1
	case PointsSpentDiscount, PointsSpentCashout, PointsSpentDonation, PointsPenalty:
		return -1
	}
	return 0
}

// EcoPointsEntry is one append-only ledger row. The sum of a user's entries
// must always equal User.EcoPoints.
type EcoPointsEntry struct {
	EntryID     uuid.UUID `gorm:"column:entry_id;type:uuid;primaryKey" json:"entry_id"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	EntryType   string    `gorm:"column:entry_type;type:varchar(20);not null" json:"entry_type"`
	Points      int       `gorm:"column:points;not null" json:"points"`
	Description string    `gorm:"column:description;not null" json:"description"`
	ReferenceID string    `gorm:"column:reference_id" json:"reference_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *EcoPointsEntry) BeforeCreate(tx *gorm.DB) error {
	if e.EntryID == uuid.Nil {
		e.EntryID = uuid.New()
	}
	return nil
}
