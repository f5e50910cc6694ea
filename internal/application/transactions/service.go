package transactions

import (
	"context"
	"fmt"
	"time"

	"akrion-backend/internal/application/rewards"
	"akrion-backend/internal/domain"
	"akrion-backend/internal/infrastructure/database"
	"akrion-backend/internal/pkg/apperr"
	"akrion-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service drives the transaction lifecycle. Completion is the moment value
// changes hands: eco points are awarded, the dealer counter bumps and the
// listing closes, all in one database transaction.
type Service struct {
	DB     *gorm.DB
	Policy rewards.PointsPolicy
}

func (s *Service) lock(tx *gorm.DB, txID uuid.UUID) (*domain.Transaction, error) {
	var t domain.Transaction
	err := database.LockForUpdate(tx).
		Where("tx_id = ?", txID).First(&t).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.NotFound("transaction", txID.String())
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Advance moves a transaction one step along the forward path
// pending -> confirmed -> in_progress -> completed. Steps cannot be skipped
// or repeated. Only a party to the transaction or an admin may advance it.
func (s *Service) Advance(ctx context.Context, txID uuid.UUID, target string, actorID uuid.UUID, actorRole string) (*domain.Transaction, error) {
	var out *domain.Transaction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.lock(tx, txID)
		if err != nil {
			return err
		}
		if actorRole != constants.Admin && t.BuyerID != actorID && t.SellerID != actorID {
			return apperr.Forbidden("transaction", txID.String(), "not a party to this transaction")
		}
		next := domain.NextTxStatus(t.Status)
		if next == "" || next != target {
			return apperr.InvalidTransition("transaction", txID.String(), "cannot move a %s transaction to %s", t.Status, target)
		}

		now := time.Now()
		t.Status = next
		switch next {
		case domain.TxConfirmed:
			t.ConfirmedAt = &now
		case domain.TxCompleted:
			t.CompletedAt = &now
			if err := s.complete(tx, t); err != nil {
				return err
			}
		}
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// complete runs the side effects of completion: seller and buyer point
// awards, the dealer transaction counter, the accepted inquiry's close and
// the listing's terminal status.
func (s *Service) complete(tx *gorm.DB, t *domain.Transaction) error {
	ref := fmt.Sprintf("tx:%s", t.TxID)

	if pts := s.Policy.SalePoints(t.TotalAmount); pts > 0 {
		if _, err := rewards.Award(tx, rewards.AwardInput{
			UserID:      t.SellerID,
			EntryType:   domain.PointsEarnedSale,
			Points:      pts,
			Description: "sale completed",
			ReferenceID: ref,
		}); err != nil {
			return err
		}
		t.SellerEcoPoints = pts
	}
	if pts := s.Policy.PurchasePoints(t.TotalAmount); pts > 0 {
		if _, err := rewards.Award(tx, rewards.AwardInput{
			UserID:      t.BuyerID,
			EntryType:   domain.PointsEarnedPurchase,
			Points:      pts,
			Description: "purchase completed",
			ReferenceID: ref,
		}); err != nil {
			return err
		}
		t.BuyerEcoPoints = pts
	}

	// The seller may be a dealer; bump their lifetime counter if so.
	if err := tx.Model(&domain.DealerProfile{}).
		Where("user_id = ?", t.SellerID).
		UpdateColumn("total_transactions", gorm.Expr("total_transactions + 1")).Error; err != nil {
		return err
	}

	if err := tx.Model(&domain.ListingInquiry{}).
		Where("inquiry_id = ? AND status = ?", t.InquiryID, domain.InquiryAccepted).
		Update("status", domain.InquiryCompleted).Error; err != nil {
		return err
	}

	terminal := domain.ListingSold
	if t.ListingKind == domain.KindReusable {
		terminal = domain.ListingCompleted
	}
	return tx.Model(t.ListingRef.Model()).
		Where("listing_id = ? AND status = ?", t.ListingRef.ListingID, domain.ListingActive).
		Update("status", terminal).Error
}

// Cancel aborts a transaction with a reason. Completed transactions cannot be
// cancelled.
func (s *Service) Cancel(ctx context.Context, txID uuid.UUID, actorID uuid.UUID, actorRole, reason string) (*domain.Transaction, error) {
	if reason == "" {
		return nil, apperr.Validation("transaction", "cancel_reason", "cancel reason is required")
	}
	return s.abort(ctx, txID, actorID, actorRole, domain.TxCancelled, reason)
}

// Dispute flags a transaction for review. Completed transactions cannot be
// disputed.
func (s *Service) Dispute(ctx context.Context, txID uuid.UUID, actorID uuid.UUID, actorRole, reason string) (*domain.Transaction, error) {
	return s.abort(ctx, txID, actorID, actorRole, domain.TxDisputed, reason)
}

func (s *Service) abort(ctx context.Context, txID uuid.UUID, actorID uuid.UUID, actorRole, target, reason string) (*domain.Transaction, error) {
	var out *domain.Transaction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.lock(tx, txID)
		if err != nil {
			return err
		}
		if actorRole != constants.Admin && t.BuyerID != actorID && t.SellerID != actorID {
			return apperr.Forbidden("transaction", txID.String(), "not a party to this transaction")
		}
		switch t.Status {
		case domain.TxCompleted, domain.TxCancelled, domain.TxDisputed:
			return apperr.InvalidTransition("transaction", txID.String(), "cannot move a %s transaction to %s", t.Status, target)
		}
		t.Status = target
		t.CancelReason = reason
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one transaction; only the parties or an admin may read it.
func (s *Service) Get(ctx context.Context, txID, actorID uuid.UUID, actorRole string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := s.DB.WithContext(ctx).Where("tx_id = ?", txID).First(&t).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("transaction", txID.String())
		}
		return nil, err
	}
	if actorRole != constants.Admin && t.BuyerID != actorID && t.SellerID != actorID {
		return nil, apperr.Forbidden("transaction", txID.String(), "not a party to this transaction")
	}
	return &t, nil
}

// ListForUser returns the transactions a user is party to, newest first.
// role is "buyer", "seller" or "" for both.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, role string) ([]domain.Transaction, error) {
	q := s.DB.WithContext(ctx)
	switch role {
	case "buyer":
		q = q.Where("buyer_id = ?", userID)
	case "seller":
		q = q.Where("seller_id = ?", userID)
	case "":
		q = q.Where("buyer_id = ? OR seller_id = ?", userID, userID)
	default:
		return nil, apperr.Validation("transaction", "role", "role must be buyer, seller or empty")
	}
	var out []domain.Transaction
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyTotals checks total_amount = quantity * unit_price over all rows and
// escalates the first mismatch.
func (s *Service) VerifyTotals(ctx context.Context) error {
	var ts []domain.Transaction
	if err := s.DB.WithContext(ctx).Find(&ts).Error; err != nil {
		return err
	}
	for _, t := range ts {
		if !t.TotalAmount.Equal(t.Quantity.Mul(t.UnitPrice)) {
			return apperr.Integrity("transaction", t.TxID.String(),
				"total %s does not equal %s * %s", t.TotalAmount, t.Quantity, t.UnitPrice)
		}
	}
	return nil
}
