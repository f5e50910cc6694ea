package dealers

import (
	"context"
	"time"

	"akrion-backend/internal/application/rewards"
	"akrion-backend/internal/domain"
	"akrion-backend/internal/infrastructure/database"
	"akrion-backend/internal/pkg/apperr"
	"akrion-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service maintains dealer profiles, the verification lifecycle, and the
// derived rating statistics on each profile.
type Service struct {
	DB     *gorm.DB
	Policy rewards.PointsPolicy
}

// CreateProfileInput carries the business identity for a new dealer profile.
type CreateProfileInput struct {
	UserID                     uuid.UUID
	BusinessName               string
	BusinessRegistrationNumber string
	GstNumber                  string
	BusinessAddress            string
	BusinessPhone              string
	BusinessEmail              string
	Website                    string
	YearsInBusiness            int
	Specialization             string
	PickupAvailable            bool
	DeliveryAvailable          bool
	OperatingHours             string
	Latitude                   *decimal.Decimal
	Longitude                  *decimal.Decimal
}

// CreateProfile creates the one dealer profile a dealer-role user may own.
func (s *Service) CreateProfile(ctx context.Context, in CreateProfileInput) (*domain.DealerProfile, error) {
	if in.BusinessName == "" {
		return nil, apperr.Validation("dealer_profile", "business_name", "business name is required")
	}
	if in.BusinessRegistrationNumber == "" {
		return nil, apperr.Validation("dealer_profile", "business_registration_number", "registration number is required")
	}
	if in.BusinessAddress == "" || in.BusinessPhone == "" || in.BusinessEmail == "" {
		return nil, apperr.Validation("dealer_profile", "business_address", "business address, phone and email are required")
	}

	var profile *domain.DealerProfile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		if err := tx.Where("user_id = ?", in.UserID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("user", in.UserID.String())
			}
			return err
		}
		if user.Role != constants.Dealer && user.Role != constants.Admin {
			return apperr.Forbidden("user", in.UserID.String(), "only dealer accounts can create a dealer profile")
		}

		var count int64
		tx.Model(&domain.DealerProfile{}).Where("user_id = ?", in.UserID).Count(&count)
		if count > 0 {
			return apperr.Validation("dealer_profile", "user_id", "dealer profile already exists for this user")
		}
		tx.Model(&domain.DealerProfile{}).
			Where("business_registration_number = ?", in.BusinessRegistrationNumber).Count(&count)
		if count > 0 {
			return apperr.Validation("dealer_profile", "business_registration_number", "registration number already in use")
		}

		profile = &domain.DealerProfile{
			UserID:                     in.UserID,
			BusinessName:               in.BusinessName,
			BusinessRegistrationNumber: in.BusinessRegistrationNumber,
			GstNumber:                  in.GstNumber,
			BusinessAddress:            in.BusinessAddress,
			BusinessPhone:              in.BusinessPhone,
			BusinessEmail:              in.BusinessEmail,
			Website:                    in.Website,
			VerificationStatus:         domain.VerificationPending,
			YearsInBusiness:            in.YearsInBusiness,
			Specialization:             in.Specialization,
			PickupAvailable:            in.PickupAvailable,
			DeliveryAvailable:          in.DeliveryAvailable,
			OperatingHours:             in.OperatingHours,
			Latitude:                   in.Latitude,
			Longitude:                  in.Longitude,
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// SubmitRating upserts the (dealer, user) rating and recomputes the dealer's
// aggregate fields in the same transaction. The dealer row is locked so
// concurrent submissions never compute an average from a stale count.
func (s *Service) SubmitRating(ctx context.Context, dealerID, userID uuid.UUID, value int, review string) (*domain.DealerRating, error) {
	if value < 1 || value > 5 {
		return nil, apperr.Validation("dealer_rating", "rating", "rating must be between 1 and 5, got %d", value)
	}

	var rating *domain.DealerRating
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dealer domain.DealerProfile
		if err := database.LockForUpdate(tx).
			Where("dealer_id = ?", dealerID).First(&dealer).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("dealer_profile", dealerID.String())
			}
			return err
		}
		if dealer.UserID == userID {
			return apperr.Forbidden("dealer_profile", dealerID.String(), "dealers cannot rate themselves")
		}

		var existing domain.DealerRating
		err := tx.Where("dealer_id = ? AND user_id = ?", dealerID, userID).First(&existing).Error
		isNew := err == gorm.ErrRecordNotFound
		if err != nil && !isNew {
			return err
		}

		if isNew {
			rating = &domain.DealerRating{
				DealerID: dealerID,
				UserID:   userID,
				Rating:   value,
				Review:   review,
			}
			if err := tx.Create(rating).Error; err != nil {
				return err
			}
		} else {
			existing.Rating = value
			existing.Review = review
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			rating = &existing
		}

		if err := recomputeRatingStats(tx, dealerID); err != nil {
			return err
		}

		if isNew && s.Policy != nil && s.Policy.ReviewBonus() > 0 {
			_, err := rewards.Award(tx, rewards.AwardInput{
				UserID:      userID,
				EntryType:   domain.PointsEarnedReview,
				Points:      s.Policy.ReviewBonus(),
				Description: "Rated dealer " + dealer.BusinessName,
				ReferenceID: dealerID.String(),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rating, nil
}

// recomputeRatingStats rewrites average_rating (mean, 2 decimal places) and
// total_ratings from the rating rows. Caller holds the dealer row lock.
func recomputeRatingStats(tx *gorm.DB, dealerID uuid.UUID) error {
	var agg struct {
		Sum int64
		N   int64
	}
	if err := tx.Model(&domain.DealerRating{}).
		Where("dealer_id = ?", dealerID).
		Select("COALESCE(SUM(rating), 0) AS sum, COUNT(*) AS n").
		Scan(&agg).Error; err != nil {
		return err
	}
	avg := decimal.Zero
	if agg.N > 0 {
		avg = decimal.NewFromInt(agg.Sum).Div(decimal.NewFromInt(agg.N)).Round(2)
	}
	return tx.Model(&domain.DealerProfile{}).
		Where("dealer_id = ?", dealerID).
		Updates(map[string]interface{}{
			"average_rating": avg,
			"total_ratings":  agg.N,
		}).Error
}

// SetVerificationStatus transitions the verification lifecycle. Transitions
// are deliberately unguarded: an administrator may re-verify a rejected
// dealer or suspend a verified one. Moving to verified stamps the date and
// the verifying actor.
func (s *Service) SetVerificationStatus(ctx context.Context, dealerID uuid.UUID, status string, actorID uuid.UUID) (*domain.DealerProfile, error) {
	switch status {
	case domain.VerificationPending, domain.VerificationVerified, domain.VerificationRejected, domain.VerificationSuspended:
	default:
		return nil, apperr.Validation("dealer_profile", "verification_status", "unknown verification status %q", status)
	}

	var dealer domain.DealerProfile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).
			Where("dealer_id = ?", dealerID).First(&dealer).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("dealer_profile", dealerID.String())
			}
			return err
		}
		dealer.VerificationStatus = status
		if status == domain.VerificationVerified {
			now := time.Now()
			dealer.VerificationDate = &now
			dealer.VerifiedBy = &actorID
		}
		return tx.Save(&dealer).Error
	})
	if err != nil {
		return nil, err
	}
	return &dealer, nil
}

// VerifyDealers bulk-verifies dealers through the same SetVerificationStatus
// entry point the single-dealer route uses. Returns how many were updated.
func (s *Service) VerifyDealers(ctx context.Context, dealerIDs []uuid.UUID, actorID uuid.UUID) (int, error) {
	return s.bulkSetStatus(ctx, dealerIDs, domain.VerificationVerified, actorID)
}

// RejectDealers bulk-rejects dealers; same single entry point.
func (s *Service) RejectDealers(ctx context.Context, dealerIDs []uuid.UUID, actorID uuid.UUID) (int, error) {
	return s.bulkSetStatus(ctx, dealerIDs, domain.VerificationRejected, actorID)
}

func (s *Service) bulkSetStatus(ctx context.Context, dealerIDs []uuid.UUID, status string, actorID uuid.UUID) (int, error) {
	updated := 0
	for _, id := range dealerIDs {
		if _, err := s.SetVerificationStatus(ctx, id, status, actorID); err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// GetDealer returns one profile.
func (s *Service) GetDealer(ctx context.Context, dealerID uuid.UUID) (*domain.DealerProfile, error) {
	var dealer domain.DealerProfile
	if err := s.DB.WithContext(ctx).Where("dealer_id = ?", dealerID).First(&dealer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("dealer_profile", dealerID.String())
		}
		return nil, err
	}
	return &dealer, nil
}

// GetDealerByUser returns the profile owned by a user.
func (s *Service) GetDealerByUser(ctx context.Context, userID uuid.UUID) (*domain.DealerProfile, error) {
	var dealer domain.DealerProfile
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&dealer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("dealer_profile", userID.String())
		}
		return nil, err
	}
	return &dealer, nil
}

// ListDealers returns profiles, optionally filtered by verification status,
// best-rated first.
func (s *Service) ListDealers(ctx context.Context, status string) ([]domain.DealerProfile, error) {
	q := s.DB.WithContext(ctx).Model(&domain.DealerProfile{})
	if status != "" {
		q = q.Where("verification_status = ?", status)
	}
	var dealers []domain.DealerProfile
	if err := q.Order("average_rating DESC, total_ratings DESC").Find(&dealers).Error; err != nil {
		return nil, err
	}
	return dealers, nil
}

// ListRatings returns a dealer's ratings, newest first.
func (s *Service) ListRatings(ctx context.Context, dealerID uuid.UUID) ([]domain.DealerRating, error) {
	var ratings []domain.DealerRating
	if err := s.DB.WithContext(ctx).Where("dealer_id = ?", dealerID).
		Order("created_at DESC").Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}
