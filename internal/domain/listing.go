package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Listing statuses. "active" is the only non-terminal state; sold/completed,
// cancelled and expired have no outgoing transitions.
const (
	ListingActive    = "active"
	ListingSold      = "sold"      // scrap terminal
	ListingCompleted = "completed" // reusable terminal
	ListingCancelled = "cancelled"
	ListingExpired   = "expired"
)

// TerminalListingStatus reports whether status accepts no further transitions.
func TerminalListingStatus(status string) bool {
	return status != ListingActive
}

// Reusable item conditions.
const (
	ConditionLikeNew   = "like_new"
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionFair      = "fair"
	ConditionPoor      = "poor"
)

// ValidCondition reports whether c is a known reusable-item condition.
func ValidCondition(c string) bool {
	switch c {
	case ConditionLikeNew, ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// Reusable listing exchange modes.
const (
	ListingForSale  = "sale"
	ListingFree     = "free"
	ListingExchange = "exchange"
)

// AIAssessment holds advisory fields written by the external classifier.
// They never gate listing creation or transitions.
type AIAssessment struct {
	AIQualityGrade   string           `gorm:"column:ai_quality_grade;type:varchar(20)" json:"ai_quality_grade"`
	AIMaterialType   string           `gorm:"column:ai_material_type" json:"ai_material_type"`
	AIConfidence     float64          `gorm:"column:ai_confidence_score;default:0" json:"ai_confidence_score"`
	AISuggestedPrice *decimal.Decimal `gorm:"column:ai_suggested_price;type:decimal(10,2)" json:"ai_suggested_price"`
}

// ScrapListing is a seller's offer of scrap material. Rows are never
// physically deleted; terminal statuses retain them for history.
type ScrapListing struct {
	ListingID     uuid.UUID       `gorm:"column:listing_id;type:uuid;primaryKey" json:"listing_id"`
	SellerID      uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	MaterialID    uuid.UUID       `gorm:"column:material_id;type:uuid;not null;index" json:"material_id"`
	Title         string          `gorm:"column:title;not null" json:"title"`
	Description   string          `gorm:"column:description" json:"description"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:decimal(10,2);not null" json:"quantity"`
	QualityGrade  string          `gorm:"column:quality_grade;type:varchar(1);not null;default:B" json:"quality_grade"`
	ExpectedPrice decimal.Decimal `gorm:"column:expected_price;type:decimal(10,2);not null" json:"expected_price"`

	PickupAddress string `gorm:"column:pickup_address" json:"pickup_address"`
	City          string `gorm:"column:city" json:"city"`
	State         string `gorm:"column:state" json:"state"`
	Pincode       string `gorm:"column:pincode;type:varchar(10)" json:"pincode"`

	Image1URL string `gorm:"column:image1_url" json:"image1_url"`
	Image2URL string `gorm:"column:image2_url" json:"image2_url"`
	Image3URL string `gorm:"column:image3_url" json:"image3_url"`

	AIAssessment `gorm:"embedded"`

	Status     string     `gorm:"column:status;type:varchar(20);not null;default:active" json:"status"`
	ViewsCount int        `gorm:"column:views_count;not null;default:0" json:"views_count"`
	IsFeatured bool       `gorm:"column:is_featured;default:false" json:"is_featured"`
	ExpiresAt  *time.Time `gorm:"column:expires_at" json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (l *ScrapListing) BeforeCreate(tx *gorm.DB) error {
	if l.ListingID == uuid.Nil {
		l.ListingID = uuid.New()
	}
	return nil
}

// ReusableItemListing is a seller's offer of a second-hand item for sale,
// giveaway or exchange.
type ReusableItemListing struct {
	ListingID       uuid.UUID        `gorm:"column:listing_id;type:uuid;primaryKey" json:"listing_id"`
	SellerID        uuid.UUID        `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	CategoryID      uuid.UUID        `gorm:"column:category_id;type:uuid;not null;index" json:"category_id"`
	Title           string           `gorm:"column:title;not null" json:"title"`
	Description     string           `gorm:"column:description" json:"description"`
	Brand           string           `gorm:"column:brand" json:"brand"`
	Model           string           `gorm:"column:model" json:"model"`
	Condition       string           `gorm:"column:condition;type:varchar(20);not null" json:"condition"`
	TransactionType string           `gorm:"column:transaction_type;type:varchar(20);not null" json:"transaction_type"`
	Price           *decimal.Decimal `gorm:"column:price;type:decimal(10,2)" json:"price"`

	// What the seller wants back when TransactionType is "exchange".
	ExchangeRequirements string `gorm:"column:exchange_requirements" json:"exchange_requirements"`

	PickupAddress string `gorm:"column:pickup_address" json:"pickup_address"`
	City          string `gorm:"column:city" json:"city"`
	State         string `gorm:"column:state" json:"state"`
	Pincode       string `gorm:"column:pincode;type:varchar(10)" json:"pincode"`

	Image1URL string `gorm:"column:image1_url" json:"image1_url"`
	Image2URL string `gorm:"column:image2_url" json:"image2_url"`
	Image3URL string `gorm:"column:image3_url" json:"image3_url"`
	Image4URL string `gorm:"column:image4_url" json:"image4_url"`

	AIAssessment `gorm:"embedded"`

	Status     string     `gorm:"column:status;type:varchar(20);not null;default:active" json:"status"`
	ViewsCount int        `gorm:"column:views_count;not null;default:0" json:"views_count"`
	IsFeatured bool       `gorm:"column:is_featured;default:false" json:"is_featured"`
	ExpiresAt  *time.Time `gorm:"column:expires_at" json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (l *ReusableItemListing) BeforeCreate(tx *gorm.DB) error {
	if l.ListingID == uuid.Nil {
		l.ListingID = uuid.New()
	}
	return nil
}
