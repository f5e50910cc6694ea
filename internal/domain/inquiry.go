package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Listing inquiry statuses. accepted/rejected/completed end the workflow;
// acceptance is the only path that creates a transaction.
const (
	InquiryPending   = "pending"
	InquiryResponded = "responded"
	InquiryAccepted  = "accepted"
	InquiryRejected  = "rejected"
	InquiryCompleted = "completed"
)

// ListingInquiry is a buyer's interest in one listing. The seller is derived
// from the referenced listing, never stored independently.
type ListingInquiry struct {
	InquiryID uuid.UUID `gorm:"column:inquiry_id;type:uuid;primaryKey" json:"inquiry_id"`
	BuyerID   uuid.UUID `gorm:"column:buyer_id;type:uuid;not null;index" json:"buyer_id"`

	ListingRef `gorm:"embedded"`

	Message         string           `gorm:"column:message;not null" json:"message"`
	OfferedPrice    *decimal.Decimal `gorm:"column:offered_price;type:decimal(10,2)" json:"offered_price"`
	OfferedQuantity *decimal.Decimal `gorm:"column:offered_quantity;type:decimal(10,2)" json:"offered_quantity"`

	Status         string    `gorm:"column:status;type:varchar(20);not null;default:pending" json:"status"`
	SellerResponse string    `gorm:"column:seller_response" json:"seller_response"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (i *ListingInquiry) BeforeCreate(tx *gorm.DB) error {
	if i.InquiryID == uuid.Nil {
		i.InquiryID = uuid.New()
	}
	return nil
}
