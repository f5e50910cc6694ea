package rewards

import (
	"context"

	"akrion-backend/internal/domain"
	"akrion-backend/internal/infrastructure/database"
	"akrion-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service owns the eco-points ledger. Entries are append-only; the cached
// User.EcoPoints balance is updated in the same transaction as every append
// and the ledger stays authoritative.
type Service struct {
	DB *gorm.DB
}

// AwardInput describes one ledger append.
type AwardInput struct {
	UserID      uuid.UUID
	EntryType   string
	Points      int
	Description string
	ReferenceID string
}

// Award appends a ledger entry and adjusts the cached balance atomically.
func (s *Service) Award(ctx context.Context, in AwardInput) (*domain.EcoPointsEntry, error) {
	var entry *domain.EcoPointsEntry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := Award(tx, in)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Award runs the ledger append inside an existing transaction, so other
// services (transaction completion, review bonus) can make their status
// change and the point award a single atomic unit.
func Award(tx *gorm.DB, in AwardInput) (*domain.EcoPointsEntry, error) {
	polarity := domain.PointsEntryPolarity(in.EntryType)
	if polarity == 0 {
		return nil, apperr.Validation("eco_points_entry", "entry_type", "unknown entry type %q", in.EntryType)
	}
	if in.Points == 0 {
		return nil, apperr.Validation("eco_points_entry", "points", "points must be non-zero")
	}
	if polarity > 0 && in.Points < 0 {
		return nil, apperr.Validation("eco_points_entry", "points", "%s entries must carry positive points", in.EntryType)
	}
	if polarity < 0 && in.Points > 0 {
		return nil, apperr.Validation("eco_points_entry", "points", "%s entries must carry negative points", in.EntryType)
	}

	var user domain.User
	if err := database.LockForUpdate(tx).
		Where("user_id = ?", in.UserID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("user", in.UserID.String())
		}
		return nil, err
	}

	newBalance := user.EcoPoints + in.Points
	// Only an explicit penalty may push a balance below zero.
	if newBalance < 0 && in.EntryType != domain.PointsPenalty {
		return nil, apperr.Validation("user", "eco_points", "insufficient points balance: have %d, need %d", user.EcoPoints, -in.Points)
	}

	entry := &domain.EcoPointsEntry{
		UserID:      in.UserID,
		EntryType:   in.EntryType,
		Points:      in.Points,
		Description: in.Description,
		ReferenceID: in.ReferenceID,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&domain.User{}).Where("user_id = ?", in.UserID).
		Update("eco_points", newBalance).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Balance returns the cached balance for a user.
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	var user domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, apperr.NotFound("user", userID.String())
		}
		return 0, err
	}
	return user.EcoPoints, nil
}

// History returns a user's ledger entries, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]domain.EcoPointsEntry, error) {
	var entries []domain.EcoPointsEntry
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// VerifyLedger recomputes the sum of a user's entries and compares it with
// the cached balance. Divergence is a bug, reported as an integrity failure
// for the error handler to escalate.
func (s *Service) VerifyLedger(ctx context.Context, userID uuid.UUID) error {
	var user domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperr.NotFound("user", userID.String())
		}
		return err
	}
	var sum int64
	if err := s.DB.WithContext(ctx).Model(&domain.EcoPointsEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").Scan(&sum).Error; err != nil {
		return err
	}
	if int(sum) != user.EcoPoints {
		return apperr.Integrity("user", userID.String(),
			"ledger sum %d diverges from cached balance %d", sum, user.EcoPoints)
	}
	return nil
}
