package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dealer verification statuses. Transitions are deliberately unguarded:
// administrators may re-verify a rejected dealer or suspend a verified one.
const (
	VerificationPending   = "pending"
	VerificationVerified  = "verified"
	VerificationRejected  = "rejected"
	VerificationSuspended = "suspended"
)

// DealerProfile extends a dealer-role user with business identity and the
// denormalized rating/transaction counters maintained by the dealers service.
type DealerProfile struct {
	DealerID                   uuid.UUID  `gorm:"column:dealer_id;type:uuid;primaryKey" json:"dealer_id"`
	UserID                     uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	BusinessName               string     `gorm:"column:business_name;not null" json:"business_name"`
	BusinessRegistrationNumber string     `gorm:"column:business_registration_number;not null;uniqueIndex" json:"business_registration_number"`
	GstNumber                  string     `gorm:"column:gst_number;type:varchar(15)" json:"gst_number"`
	BusinessAddress            string     `gorm:"column:business_address;not null" json:"business_address"`
	BusinessPhone              string     `gorm:"column:business_phone;not null" json:"business_phone"`
	BusinessEmail              string     `gorm:"column:business_email;not null" json:"business_email"`
	Website                    string     `gorm:"column:website" json:"website"`
	VerificationStatus         string     `gorm:"column:verification_status;type:varchar(20);not null;default:pending" json:"verification_status"`
	VerificationDate           *time.Time `gorm:"column:verification_date" json:"verification_date"`
	VerifiedBy                 *uuid.UUID `gorm:"column:verified_by;type:uuid" json:"verified_by"`
	YearsInBusiness            int        `gorm:"column:years_in_business" json:"years_in_business"`
	Specialization             string     `gorm:"column:specialization" json:"specialization"`
	PickupAvailable            bool       `gorm:"column:pickup_available;default:true" json:"pickup_available"`
	DeliveryAvailable          bool       `gorm:"column:delivery_available;default:false" json:"delivery_available"`
	OperatingHours             string     `gorm:"column:operating_hours" json:"operating_hours"`

	// AverageRating and TotalRatings are derived from dealer_ratings and
	// recomputed inside the same transaction as every rating write.
	AverageRating     decimal.Decimal `gorm:"column:average_rating;type:decimal(3,2);not null;default:0" json:"average_rating"`
	TotalRatings      int             `gorm:"column:total_ratings;not null;default:0" json:"total_ratings"`
	TotalTransactions int             `gorm:"column:total_transactions;not null;default:0" json:"total_transactions"`

	Latitude  *decimal.Decimal `gorm:"column:latitude;type:decimal(9,6)" json:"latitude"`
	Longitude *decimal.Decimal `gorm:"column:longitude;type:decimal(9,6)" json:"longitude"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *DealerProfile) BeforeCreate(tx *gorm.DB) error {
	if d.DealerID == uuid.Nil {
		d.DealerID = uuid.New()
	}
	return nil
}

// IsVerified reports whether the dealer may appear in price comparisons.
func (d *DealerProfile) IsVerified() bool {
	return d.VerificationStatus == VerificationVerified
}

// DealerRating is one user's rating of a dealer. Unique on (dealer, user);
// a later submission from the same user overwrites the row.
type DealerRating struct {
	RatingID       uuid.UUID `gorm:"column:rating_id;type:uuid;primaryKey" json:"rating_id"`
	DealerID       uuid.UUID `gorm:"column:dealer_id;type:uuid;not null;uniqueIndex:idx_dealer_user_rating" json:"dealer_id"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_dealer_user_rating" json:"user_id"`
	Rating         int       `gorm:"column:rating;not null" json:"rating"`
	Review         string    `gorm:"column:review" json:"review"`
	TransactionRef string    `gorm:"column:transaction_ref" json:"transaction_ref"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (r *DealerRating) BeforeCreate(tx *gorm.DB) error {
	if r.RatingID == uuid.Nil {
		r.RatingID = uuid.New()
	}
	return nil
}

// Dealer inquiry statuses.
const (
	DealerInquiryPending   = "pending"
	DealerInquiryResponded = "responded"
	DealerInquiryClosed    = "closed"
)

// DealerInquiry is a user-to-dealer contact about a material, independent of
// any listing.
type DealerInquiry struct {
	InquiryID         uuid.UUID  `gorm:"column:inquiry_id;type:uuid;primaryKey" json:"inquiry_id"`
	DealerID          uuid.UUID  `gorm:"column:dealer_id;type:uuid;not null;index" json:"dealer_id"`
	UserID            uuid.UUID  `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	MaterialID        *uuid.UUID `gorm:"column:material_id;type:uuid" json:"material_id"`
	Subject           string     `gorm:"column:subject;not null" json:"subject"`
	Message           string     `gorm:"column:message;not null" json:"message"`
	Quantity          string     `gorm:"column:quantity" json:"quantity"`
	ContactPreference string     `gorm:"column:contact_preference;type:varchar(20);default:email" json:"contact_preference"`
	Status            string     `gorm:"column:status;type:varchar(20);not null;default:pending" json:"status"`
	DealerResponse    string     `gorm:"column:dealer_response" json:"dealer_response"`
	RespondedAt       *time.Time `gorm:"column:responded_at" json:"responded_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (i *DealerInquiry) BeforeCreate(tx *gorm.DB) error {
	if i.InquiryID == uuid.Nil {
		i.InquiryID = uuid.New()
	}
	return nil
}
