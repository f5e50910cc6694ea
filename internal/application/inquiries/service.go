package inquiries

import (
	"context"
	"time"

	"akrion-backend/internal/application/emails"
	"akrion-backend/internal/application/listings"
	"akrion-backend/internal/domain"
	"akrion-backend/internal/infrastructure/database"
	"akrion-backend/internal/pkg/apperr"
	"akrion-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service handles listing inquiries, the inquiry workflow and the dealer
// contact inbox. Accepting an inquiry is the only code path that creates a
// transaction.
type Service struct {
	DB *gorm.DB

	// Email notifies dealer inbox activity. Nil disables notifications.
	Email emails.Sender
}

// listingInfo is what the workflow needs to know about the referenced listing.
type listingInfo struct {
	SellerID uuid.UUID
	Status   string
	// Price and Quantity back-fill an offer that left them blank.
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

func lockListing(tx *gorm.DB, ref domain.ListingRef) (*listingInfo, error) {
	switch ref.ListingKind {
	case domain.KindScrap:
		var l domain.ScrapListing
		err := database.LockForUpdate(tx).
			Where("listing_id = ?", ref.ListingID).First(&l).Error
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("scrap_listing", ref.ListingID.String())
		}
		if err != nil {
			return nil, err
		}
		status, err := listings.SettleExpiry(tx, ref, l.Status, l.ExpiresAt)
		if err != nil {
			return nil, err
		}
		return &listingInfo{SellerID: l.SellerID, Status: status, Price: l.ExpectedPrice, Quantity: l.Quantity}, nil
	case domain.KindReusable:
		var l domain.ReusableItemListing
		err := database.LockForUpdate(tx).
			Where("listing_id = ?", ref.ListingID).First(&l).Error
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("reusable_item_listing", ref.ListingID.String())
		}
		if err != nil {
			return nil, err
		}
		status, err := listings.SettleExpiry(tx, ref, l.Status, l.ExpiresAt)
		if err != nil {
			return nil, err
		}
		info := &listingInfo{SellerID: l.SellerID, Status: status, Quantity: decimal.NewFromInt(1)}
		if l.Price != nil {
			info.Price = *l.Price
		}
		return info, nil
	}
	return nil, apperr.Validation("listing_inquiry", "listing_kind", "unknown listing kind %q", ref.ListingKind)
}

// CreateInput carries a buyer's interest in a listing.
type CreateInput struct {
	BuyerID         uuid.UUID
	Ref             domain.ListingRef
	Message         string
	OfferedPrice    *decimal.Decimal
	OfferedQuantity *decimal.Decimal
}

// Create opens a pending inquiry. The listing must exist and be active, and
// sellers cannot inquire about their own listings.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.ListingInquiry, error) {
	if !in.Ref.Valid() {
		return nil, apperr.Validation("listing_inquiry", "listing_kind", "inquiry must reference exactly one listing")
	}
	if in.Message == "" {
		return nil, apperr.Validation("listing_inquiry", "message", "message is required")
	}
	if in.OfferedPrice != nil && in.OfferedPrice.IsNegative() {
		return nil, apperr.Validation("listing_inquiry", "offered_price", "offered price must not be negative")
	}
	if in.OfferedQuantity != nil && !in.OfferedQuantity.IsPositive() {
		return nil, apperr.Validation("listing_inquiry", "offered_quantity", "offered quantity must be positive")
	}

	var inquiry *domain.ListingInquiry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		info, err := lockListing(tx, in.Ref)
		if err != nil {
			return err
		}
		if info.Status != domain.ListingActive {
			return apperr.InvalidTransition("listing", in.Ref.ListingID.String(), "cannot inquire about a %s listing", info.Status)
		}
		if info.SellerID == in.BuyerID {
			return apperr.Forbidden("listing_inquiry", in.Ref.ListingID.String(), "sellers cannot inquire about their own listing")
		}
		inquiry = &domain.ListingInquiry{
			BuyerID:         in.BuyerID,
			ListingRef:      in.Ref,
			Message:         in.Message,
			OfferedPrice:    in.OfferedPrice,
			OfferedQuantity: in.OfferedQuantity,
			Status:          domain.InquiryPending,
		}
		return tx.Create(inquiry).Error
	})
	if err != nil {
		return nil, err
	}
	return inquiry, nil
}

// Respond records the seller's reply on a pending inquiry.
func (s *Service) Respond(ctx context.Context, inquiryID uuid.UUID, sellerID uuid.UUID, response string) (*domain.ListingInquiry, error) {
	if response == "" {
		return nil, apperr.Validation("listing_inquiry", "seller_response", "response is required")
	}
	var inquiry domain.ListingInquiry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).
			Where("inquiry_id = ?", inquiryID).First(&inquiry).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("listing_inquiry", inquiryID.String())
			}
			return err
		}
		info, err := lockListing(tx, inquiry.ListingRef)
		if err != nil {
			return err
		}
		if info.SellerID != sellerID {
			return apperr.Forbidden("listing_inquiry", inquiryID.String(), "only the listing seller may respond")
		}
		if inquiry.Status != domain.InquiryPending {
			return apperr.InvalidTransition("listing_inquiry", inquiryID.String(), "cannot respond to a %s inquiry", inquiry.Status)
		}
		inquiry.Status = domain.InquiryResponded
		inquiry.SellerResponse = response
		return tx.Save(&inquiry).Error
	})
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// Reject closes a pending or responded inquiry without a transaction.
func (s *Service) Reject(ctx context.Context, inquiryID uuid.UUID, sellerID uuid.UUID) (*domain.ListingInquiry, error) {
	var inquiry domain.ListingInquiry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).
			Where("inquiry_id = ?", inquiryID).First(&inquiry).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("listing_inquiry", inquiryID.String())
			}
			return err
		}
		info, err := lockListing(tx, inquiry.ListingRef)
		if err != nil {
			return err
		}
		if info.SellerID != sellerID {
			return apperr.Forbidden("listing_inquiry", inquiryID.String(), "only the listing seller may reject")
		}
		if inquiry.Status != domain.InquiryPending && inquiry.Status != domain.InquiryResponded {
			return apperr.InvalidTransition("listing_inquiry", inquiryID.String(), "cannot reject a %s inquiry", inquiry.Status)
		}
		inquiry.Status = domain.InquiryRejected
		return tx.Save(&inquiry).Error
	})
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// Accept converts a pending or responded inquiry into a pending transaction.
// Inquiry and listing rows are locked together so two concurrent accepts on
// the same listing cannot both pass the active check. The seller may supply
// negotiated final terms; otherwise terms fall back to the buyer's offer and
// then to the listing's own price and quantity.
func (s *Service) Accept(ctx context.Context, inquiryID uuid.UUID, sellerID uuid.UUID, finalPrice, finalQuantity *decimal.Decimal) (*domain.Transaction, error) {
	if finalPrice != nil && finalPrice.IsNegative() {
		return nil, apperr.Validation("listing_inquiry", "final_price", "final price must not be negative")
	}
	if finalQuantity != nil && !finalQuantity.IsPositive() {
		return nil, apperr.Validation("listing_inquiry", "final_quantity", "final quantity must be positive")
	}
	var created *domain.Transaction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inquiry domain.ListingInquiry
		if err := database.LockForUpdate(tx).
			Where("inquiry_id = ?", inquiryID).First(&inquiry).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("listing_inquiry", inquiryID.String())
			}
			return err
		}
		info, err := lockListing(tx, inquiry.ListingRef)
		if err != nil {
			return err
		}
		if info.SellerID != sellerID {
			return apperr.Forbidden("listing_inquiry", inquiryID.String(), "only the listing seller may accept")
		}
		if inquiry.Status != domain.InquiryPending && inquiry.Status != domain.InquiryResponded {
			return apperr.InvalidTransition("listing_inquiry", inquiryID.String(), "cannot accept a %s inquiry", inquiry.Status)
		}
		if info.Status != domain.ListingActive {
			return apperr.InvalidTransition("listing", inquiry.ListingID.String(), "cannot accept an inquiry on a %s listing", info.Status)
		}

		unitPrice := info.Price
		if inquiry.OfferedPrice != nil {
			unitPrice = *inquiry.OfferedPrice
		}
		if finalPrice != nil {
			unitPrice = *finalPrice
		}
		quantity := info.Quantity
		if inquiry.OfferedQuantity != nil {
			quantity = *inquiry.OfferedQuantity
		}
		if finalQuantity != nil {
			quantity = *finalQuantity
		}

		created = &domain.Transaction{
			BuyerID:     inquiry.BuyerID,
			SellerID:    info.SellerID,
			InquiryID:   inquiry.InquiryID,
			ListingRef:  inquiry.ListingRef,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			TotalAmount: unitPrice.Mul(quantity),
			Status:      domain.TxPending,
		}
		if err := tx.Create(created).Error; err != nil {
			return err
		}
		inquiry.Status = domain.InquiryAccepted
		return tx.Save(&inquiry).Error
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get fetches one inquiry; only the buyer, the listing seller or an admin may
// read it.
func (s *Service) Get(ctx context.Context, inquiryID, actorID uuid.UUID, actorRole string) (*domain.ListingInquiry, error) {
	var inquiry domain.ListingInquiry
	if err := s.DB.WithContext(ctx).Where("inquiry_id = ?", inquiryID).First(&inquiry).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("listing_inquiry", inquiryID.String())
		}
		return nil, err
	}
	if actorRole != constants.Admin && inquiry.BuyerID != actorID {
		info, err := lockListing(s.DB.WithContext(ctx), inquiry.ListingRef)
		if err != nil {
			return nil, err
		}
		if info.SellerID != actorID {
			return nil, apperr.Forbidden("listing_inquiry", inquiryID.String(), "not a party to this inquiry")
		}
	}
	return &inquiry, nil
}

// ListForBuyer returns a buyer's inquiries, newest first.
func (s *Service) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]domain.ListingInquiry, error) {
	var out []domain.ListingInquiry
	if err := s.DB.WithContext(ctx).Where("buyer_id = ?", buyerID).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListForListing returns the inquiries on one listing, newest first.
func (s *Service) ListForListing(ctx context.Context, ref domain.ListingRef) ([]domain.ListingInquiry, error) {
	if !ref.Valid() {
		return nil, apperr.Validation("listing_inquiry", "listing_kind", "unknown listing kind %q", ref.ListingKind)
	}
	var out []domain.ListingInquiry
	if err := s.DB.WithContext(ctx).
		Where("listing_kind = ? AND listing_id = ?", ref.ListingKind, ref.ListingID).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDealerInput carries a user-to-dealer contact request.
type CreateDealerInput struct {
	DealerID          uuid.UUID
	UserID            uuid.UUID
	MaterialID        *uuid.UUID
	Subject           string
	Message           string
	Quantity          string
	ContactPreference string
}

// CreateDealer opens a pending inquiry in a dealer's inbox.
func (s *Service) CreateDealer(ctx context.Context, in CreateDealerInput) (*domain.DealerInquiry, error) {
	if in.Subject == "" {
		return nil, apperr.Validation("dealer_inquiry", "subject", "subject is required")
	}
	if in.Message == "" {
		return nil, apperr.Validation("dealer_inquiry", "message", "message is required")
	}
	var dealer domain.DealerProfile
	if err := s.DB.WithContext(ctx).Where("dealer_id = ?", in.DealerID).First(&dealer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("dealer_profile", in.DealerID.String())
		}
		return nil, err
	}
	pref := in.ContactPreference
	if pref == "" {
		pref = "email"
	}
	inquiry := &domain.DealerInquiry{
		DealerID:          in.DealerID,
		UserID:            in.UserID,
		MaterialID:        in.MaterialID,
		Subject:           in.Subject,
		Message:           in.Message,
		Quantity:          in.Quantity,
		ContactPreference: pref,
		Status:            domain.DealerInquiryPending,
	}
	if err := s.DB.WithContext(ctx).Create(inquiry).Error; err != nil {
		return nil, err
	}
	if s.Email != nil {
		go func() {
			_ = s.Email.SendDealerInquiry(context.Background(), dealer.BusinessEmail, dealer.BusinessName, inquiry.Subject)
		}()
	}
	return inquiry, nil
}

// RespondDealer records the dealer's reply and stamps the response time.
func (s *Service) RespondDealer(ctx context.Context, inquiryID, dealerUserID uuid.UUID, response string) (*domain.DealerInquiry, error) {
	if response == "" {
		return nil, apperr.Validation("dealer_inquiry", "dealer_response", "response is required")
	}
	var inquiry domain.DealerInquiry
	var dealer domain.DealerProfile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).
			Where("inquiry_id = ?", inquiryID).First(&inquiry).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("dealer_inquiry", inquiryID.String())
			}
			return err
		}
		if err := tx.Where("dealer_id = ?", inquiry.DealerID).First(&dealer).Error; err != nil {
			return err
		}
		if dealer.UserID != dealerUserID {
			return apperr.Forbidden("dealer_inquiry", inquiryID.String(), "only the dealer may respond")
		}
		if inquiry.Status != domain.DealerInquiryPending {
			return apperr.InvalidTransition("dealer_inquiry", inquiryID.String(), "cannot respond to a %s inquiry", inquiry.Status)
		}
		now := time.Now()
		inquiry.Status = domain.DealerInquiryResponded
		inquiry.DealerResponse = response
		inquiry.RespondedAt = &now
		return tx.Save(&inquiry).Error
	})
	if err != nil {
		return nil, err
	}
	if s.Email != nil {
		var asker domain.User
		if err := s.DB.WithContext(ctx).Where("user_id = ?", inquiry.UserID).First(&asker).Error; err == nil {
			go func() {
				_ = s.Email.SendDealerResponse(context.Background(), asker.Email, dealer.BusinessName, inquiry.Subject)
			}()
		}
	}
	return &inquiry, nil
}

// CloseDealer closes a dealer inquiry; either party may close it.
func (s *Service) CloseDealer(ctx context.Context, inquiryID, actorID uuid.UUID) (*domain.DealerInquiry, error) {
	var inquiry domain.DealerInquiry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).
			Where("inquiry_id = ?", inquiryID).First(&inquiry).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("dealer_inquiry", inquiryID.String())
			}
			return err
		}
		var dealer domain.DealerProfile
		if err := tx.Where("dealer_id = ?", inquiry.DealerID).First(&dealer).Error; err != nil {
			return err
		}
		if inquiry.UserID != actorID && dealer.UserID != actorID {
			return apperr.Forbidden("dealer_inquiry", inquiryID.String(), "not a party to this inquiry")
		}
		if inquiry.Status == domain.DealerInquiryClosed {
			return apperr.InvalidTransition("dealer_inquiry", inquiryID.String(), "inquiry is already closed")
		}
		inquiry.Status = domain.DealerInquiryClosed
		return tx.Save(&inquiry).Error
	})
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// ListDealerInbox returns a dealer's inquiries, pending first then newest.
func (s *Service) ListDealerInbox(ctx context.Context, dealerID uuid.UUID) ([]domain.DealerInquiry, error) {
	var out []domain.DealerInquiry
	if err := s.DB.WithContext(ctx).Where("dealer_id = ?", dealerID).
		Order("status, created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
