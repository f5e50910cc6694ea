package listings

import (
	"context"
	"time"

	"akrion-backend/internal/domain"
	"akrion-backend/internal/infrastructure/database"
	"akrion-backend/internal/pkg/apperr"
	"akrion-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service manages scrap and reusable listings: creation, the status state
// machine and lazy expiry of stale rows.
type Service struct {
	DB *gorm.DB

	// TTLDays is the default listing lifetime when the seller gives none.
	TTLDays int
}

// CreateScrapInput carries the fields of a new scrap listing.
type CreateScrapInput struct {
	SellerID      uuid.UUID
	MaterialID    uuid.UUID
	Title         string
	Description   string
	Quantity      decimal.Decimal
	QualityGrade  string
	ExpectedPrice decimal.Decimal
	PickupAddress string
	City          string
	State         string
	Pincode       string
	Image1URL     string
	Image2URL     string
	Image3URL     string
	ExpiresAt     *time.Time
}

// CreateScrap opens a scrap listing in the active state.
func (s *Service) CreateScrap(ctx context.Context, in CreateScrapInput) (*domain.ScrapListing, error) {
	if in.Title == "" {
		return nil, apperr.Validation("scrap_listing", "title", "title is required")
	}
	if !in.Quantity.IsPositive() {
		return nil, apperr.Validation("scrap_listing", "quantity", "quantity must be positive")
	}
	if in.ExpectedPrice.IsNegative() {
		return nil, apperr.Validation("scrap_listing", "expected_price", "expected price must not be negative")
	}
	grade := in.QualityGrade
	if grade == "" {
		grade = domain.GradeB
	}
	if !domain.ValidGrade(grade) {
		return nil, apperr.Validation("scrap_listing", "quality_grade", "unknown quality grade %q", grade)
	}
	var material domain.ScrapMaterial
	if err := s.DB.WithContext(ctx).Where("material_id = ? AND is_active = ?", in.MaterialID, true).
		First(&material).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("scrap_material", in.MaterialID.String())
		}
		return nil, err
	}

	listing := &domain.ScrapListing{
		SellerID:      in.SellerID,
		MaterialID:    in.MaterialID,
		Title:         in.Title,
		Description:   in.Description,
		Quantity:      in.Quantity,
		QualityGrade:  grade,
		ExpectedPrice: in.ExpectedPrice,
		PickupAddress: in.PickupAddress,
		City:          in.City,
		State:         in.State,
		Pincode:       in.Pincode,
		Image1URL:     in.Image1URL,
		Image2URL:     in.Image2URL,
		Image3URL:     in.Image3URL,
		Status:        domain.ListingActive,
		ExpiresAt:     s.expiry(in.ExpiresAt),
	}
	if err := s.DB.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// CreateReusableInput carries the fields of a new reusable item listing.
type CreateReusableInput struct {
	SellerID             uuid.UUID
	CategoryID           uuid.UUID
	Title                string
	Description          string
	Brand                string
	Model                string
	Condition            string
	TransactionType      string
	Price                *decimal.Decimal
	ExchangeRequirements string
	PickupAddress        string
	City                 string
	State                string
	Pincode              string
	Image1URL            string
	Image2URL            string
	Image3URL            string
	Image4URL            string
	ExpiresAt            *time.Time
}

// CreateReusable opens a reusable item listing in the active state. Sale
// listings need a price, free listings must not carry one, and exchange
// listings must say what the seller wants back.
func (s *Service) CreateReusable(ctx context.Context, in CreateReusableInput) (*domain.ReusableItemListing, error) {
	if in.Title == "" {
		return nil, apperr.Validation("reusable_item_listing", "title", "title is required")
	}
	if !domain.ValidCondition(in.Condition) {
		return nil, apperr.Validation("reusable_item_listing", "condition", "unknown condition %q", in.Condition)
	}
	switch in.TransactionType {
	case domain.ListingForSale:
		if in.Price == nil || !in.Price.IsPositive() {
			return nil, apperr.Validation("reusable_item_listing", "price", "sale listings require a positive price")
		}
	case domain.ListingFree:
		if in.Price != nil {
			return nil, apperr.Validation("reusable_item_listing", "price", "free listings must not carry a price")
		}
	case domain.ListingExchange:
		if in.ExchangeRequirements == "" {
			return nil, apperr.Validation("reusable_item_listing", "exchange_requirements", "exchange listings must state what the seller wants back")
		}
	default:
		return nil, apperr.Validation("reusable_item_listing", "transaction_type", "unknown transaction type %q", in.TransactionType)
	}
	var cat domain.ReusableItemCategory
	if err := s.DB.WithContext(ctx).Where("category_id = ? AND is_active = ?", in.CategoryID, true).
		First(&cat).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("reusable_item_category", in.CategoryID.String())
		}
		return nil, err
	}

	listing := &domain.ReusableItemListing{
		SellerID:             in.SellerID,
		CategoryID:           in.CategoryID,
		Title:                in.Title,
		Description:          in.Description,
		Brand:                in.Brand,
		Model:                in.Model,
		Condition:            in.Condition,
		TransactionType:      in.TransactionType,
		Price:                in.Price,
		ExchangeRequirements: in.ExchangeRequirements,
		PickupAddress:        in.PickupAddress,
		City:                 in.City,
		State:                in.State,
		Pincode:              in.Pincode,
		Image1URL:            in.Image1URL,
		Image2URL:            in.Image2URL,
		Image3URL:            in.Image3URL,
		Image4URL:            in.Image4URL,
		Status:               domain.ListingActive,
		ExpiresAt:            s.expiry(in.ExpiresAt),
	}
	if err := s.DB.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *Service) expiry(requested *time.Time) *time.Time {
	if requested != nil {
		return requested
	}
	days := s.TTLDays
	if days <= 0 {
		days = 30
	}
	t := time.Now().AddDate(0, 0, days)
	return &t
}

// Transition moves a listing out of the active state. Only the seller or an
// admin may transition it, "sold" applies to scrap, "completed" to reusable,
// and terminal listings accept nothing further.
func (s *Service) Transition(ctx context.Context, ref domain.ListingRef, target string, actorID uuid.UUID, actorRole string) error {
	if !ref.Valid() {
		return apperr.Validation("listing", "listing_kind", "unknown listing kind %q", ref.ListingKind)
	}
	switch target {
	case domain.ListingSold:
		if ref.ListingKind != domain.KindScrap {
			return apperr.Validation("listing", "status", "only scrap listings can be marked sold")
		}
	case domain.ListingCompleted:
		if ref.ListingKind != domain.KindReusable {
			return apperr.Validation("listing", "status", "only reusable listings can be marked completed")
		}
	case domain.ListingCancelled, domain.ListingExpired:
	default:
		return apperr.Validation("listing", "status", "unknown target status %q", target)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sellerID, status, err := lockListing(tx, ref)
		if err != nil {
			return err
		}
		if actorRole != constants.Admin && sellerID != actorID {
			return apperr.Forbidden("listing", ref.ListingID.String(), "only the seller may update this listing")
		}
		if domain.TerminalListingStatus(status) {
			return apperr.InvalidTransition("listing", ref.ListingID.String(), "cannot move a %s listing to %s", status, target)
		}
		return setListingStatus(tx, ref, target)
	})
}

// lockListing takes a FOR UPDATE lock on the referenced listing row and
// returns its seller and settled status.
func lockListing(tx *gorm.DB, ref domain.ListingRef) (uuid.UUID, string, error) {
	switch ref.ListingKind {
	case domain.KindScrap:
		var l domain.ScrapListing
		err := database.LockForUpdate(tx).
			Where("listing_id = ?", ref.ListingID).First(&l).Error
		if err == gorm.ErrRecordNotFound {
			return uuid.Nil, "", apperr.NotFound("scrap_listing", ref.ListingID.String())
		}
		if err != nil {
			return uuid.Nil, "", err
		}
		status, err := SettleExpiry(tx, ref, l.Status, l.ExpiresAt)
		return l.SellerID, status, err
	case domain.KindReusable:
		var l domain.ReusableItemListing
		err := database.LockForUpdate(tx).
			Where("listing_id = ?", ref.ListingID).First(&l).Error
		if err == gorm.ErrRecordNotFound {
			return uuid.Nil, "", apperr.NotFound("reusable_item_listing", ref.ListingID.String())
		}
		if err != nil {
			return uuid.Nil, "", err
		}
		status, err := SettleExpiry(tx, ref, l.Status, l.ExpiresAt)
		return l.SellerID, status, err
	}
	return uuid.Nil, "", apperr.Validation("listing", "listing_kind", "unknown listing kind %q", ref.ListingKind)
}

// SettleExpiry flips an active listing past its expiry to expired inside the
// caller's transaction and returns the settled status. Every path that gates
// on "active" must read the status through this, so a stale row is never
// observable as active.
func SettleExpiry(tx *gorm.DB, ref domain.ListingRef, status string, expiresAt *time.Time) (string, error) {
	if status != domain.ListingActive || expiresAt == nil || expiresAt.After(time.Now()) {
		return status, nil
	}
	if err := tx.Model(ref.Model()).
		Where("listing_id = ?", ref.ListingID).
		Update("status", domain.ListingExpired).Error; err != nil {
		return "", err
	}
	return domain.ListingExpired, nil
}

func setListingStatus(tx *gorm.DB, ref domain.ListingRef, status string) error {
	return tx.Model(ref.Model()).
		Where("listing_id = ?", ref.ListingID).
		Update("status", status).Error
}

// expireStale flips every active listing whose expiry has passed. Reads call
// it first so expired rows never show as active; there is no background
// sweeper.
func (s *Service) expireStale(ctx context.Context) error {
	now := time.Now()
	if err := s.DB.WithContext(ctx).Model(&domain.ScrapListing{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", domain.ListingActive, now).
		Update("status", domain.ListingExpired).Error; err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(&domain.ReusableItemListing{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", domain.ListingActive, now).
		Update("status", domain.ListingExpired).Error
}

// GetScrap fetches one scrap listing, expiring it first if stale.
func (s *Service) GetScrap(ctx context.Context, id uuid.UUID) (*domain.ScrapListing, error) {
	if err := s.expireStale(ctx); err != nil {
		return nil, err
	}
	var l domain.ScrapListing
	if err := s.DB.WithContext(ctx).Where("listing_id = ?", id).First(&l).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("scrap_listing", id.String())
		}
		return nil, err
	}
	return &l, nil
}

// GetReusable fetches one reusable listing, expiring it first if stale.
func (s *Service) GetReusable(ctx context.Context, id uuid.UUID) (*domain.ReusableItemListing, error) {
	if err := s.expireStale(ctx); err != nil {
		return nil, err
	}
	var l domain.ReusableItemListing
	if err := s.DB.WithContext(ctx).Where("listing_id = ?", id).First(&l).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("reusable_item_listing", id.String())
		}
		return nil, err
	}
	return &l, nil
}

// ScrapFilter narrows an active scrap listing search.
type ScrapFilter struct {
	MaterialID   *uuid.UUID
	QualityGrade string
	City         string
	SellerID     *uuid.UUID
}

// ListActiveScrap returns active scrap listings, featured then newest first.
func (s *Service) ListActiveScrap(ctx context.Context, f ScrapFilter) ([]domain.ScrapListing, error) {
	if err := s.expireStale(ctx); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).Where("status = ?", domain.ListingActive)
	if f.MaterialID != nil {
		q = q.Where("material_id = ?", *f.MaterialID)
	}
	if f.QualityGrade != "" {
		q = q.Where("quality_grade = ?", f.QualityGrade)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.SellerID != nil {
		q = q.Where("seller_id = ?", *f.SellerID)
	}
	var out []domain.ScrapListing
	if err := q.Order("is_featured DESC, created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ReusableFilter narrows an active reusable listing search.
type ReusableFilter struct {
	CategoryID      *uuid.UUID
	Condition       string
	TransactionType string
	City            string
	SellerID        *uuid.UUID
}

// ListActiveReusable returns active reusable listings, featured then newest first.
func (s *Service) ListActiveReusable(ctx context.Context, f ReusableFilter) ([]domain.ReusableItemListing, error) {
	if err := s.expireStale(ctx); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).Where("status = ?", domain.ListingActive)
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Condition != "" {
		q = q.Where("condition = ?", f.Condition)
	}
	if f.TransactionType != "" {
		q = q.Where("transaction_type = ?", f.TransactionType)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.SellerID != nil {
		q = q.Where("seller_id = ?", *f.SellerID)
	}
	var out []domain.ReusableItemListing
	if err := q.Order("is_featured DESC, created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// RecordView bumps the view counter without touching updated_at.
func (s *Service) RecordView(ctx context.Context, ref domain.ListingRef) error {
	if !ref.Valid() {
		return apperr.Validation("listing", "listing_kind", "unknown listing kind %q", ref.ListingKind)
	}
	res := s.DB.WithContext(ctx).Model(ref.Model()).
		Where("listing_id = ?", ref.ListingID).
		UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("listing", ref.ListingID.String())
	}
	return nil
}

// ApplyAssessment stores the advisory grades from the external classifier.
// It touches only the assessment columns and never gates the listing itself.
func (s *Service) ApplyAssessment(ctx context.Context, ref domain.ListingRef, a domain.AIAssessment) error {
	if !ref.Valid() {
		return apperr.Validation("listing", "listing_kind", "unknown listing kind %q", ref.ListingKind)
	}
	updates := map[string]any{
		"ai_quality_grade":    a.AIQualityGrade,
		"ai_material_type":    a.AIMaterialType,
		"ai_confidence_score": a.AIConfidence,
		"ai_suggested_price":  a.AISuggestedPrice,
	}
	res := s.DB.WithContext(ctx).Model(ref.Model()).
		Where("listing_id = ?", ref.ListingID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("listing", ref.ListingID.String())
	}
	return nil
}
