package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction statuses. The happy path moves strictly forward:
// pending -> confirmed -> in_progress -> completed. cancelled and disputed
// are reachable from any non-completed state; completed is final.
const (
	TxPending    = "pending"
	TxConfirmed  = "confirmed"
	TxInProgress = "in_progress"
	TxCompleted  = "completed"
	TxCancelled  = "cancelled"
	TxDisputed   = "disputed"
)

// NextTxStatus returns the single legal forward step from status, or "" if
// there is none.
func NextTxStatus(status string) string {
	switch status {
	case TxPending:
		return TxConfirmed
	case TxConfirmed:
		return TxInProgress
	case TxInProgress:
		return TxCompleted
	}
	return ""
}

// Payment statuses are stored placeholders; no gateway is integrated.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentReleased = "released"
	PaymentRefunded = "refunded"
)

// Transaction is a finalized exchange. Created only by inquiry acceptance so
// every exchange traces back to a buyer contact.
type Transaction struct {
	TxID     uuid.UUID `gorm:"column:tx_id;type:uuid;primaryKey" json:"tx_id"`
	BuyerID  uuid.UUID `gorm:"column:buyer_id;type:uuid;not null;index" json:"buyer_id"`
	SellerID uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`

	// InquiryID records the accepted inquiry this transaction came from.
	InquiryID uuid.UUID `gorm:"column:inquiry_id;type:uuid;not null" json:"inquiry_id"`

	ListingRef `gorm:"embedded"`

	Quantity  decimal.Decimal `gorm:"column:quantity;type:decimal(10,2);not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2);not null" json:"unit_price"`
	// TotalAmount always equals Quantity * UnitPrice.
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(10,2);not null" json:"total_amount"`

	SellerEcoPoints int `gorm:"column:seller_eco_points;not null;default:0" json:"seller_eco_points"`
	BuyerEcoPoints  int `gorm:"column:buyer_eco_points;not null;default:0" json:"buyer_eco_points"`

	Status        string `gorm:"column:status;type:varchar(20);not null;default:pending" json:"status"`
	PaymentStatus string `gorm:"column:payment_status;type:varchar(20);not null;default:pending" json:"payment_status"`
	CancelReason  string `gorm:"column:cancel_reason" json:"cancel_reason"`

	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at" json:"confirmed_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TxID == uuid.Nil {
		t.TxID = uuid.New()
	}
	return nil
}
