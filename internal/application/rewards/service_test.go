package rewards

import (
	"context"
	"testing"

	"akrion-backend/internal/domain"
	"akrion-backend/internal/infrastructure/database"
	"akrion-backend/internal/pkg/apperr"
	"akrion-backend/internal/pkg/constants"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRewardsDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func createRewardsUser(t *testing.T, db *gorm.DB) *domain.User {
	u := &domain.User{
		Username: "recycler", Email: "recycler@example.com",
		PasswordHash: "x", Role: constants.Regular,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestAward_PositiveEntryUpdatesBalanceAndLedger(t *testing.T) {
	db := setupRewardsDB(t)
	u := createRewardsUser(t, db)
	svc := &Service{DB: db}

	entry, err := svc.Award(context.Background(), AwardInput{
		UserID: u.UserID, EntryType: domain.PointsEarnedSale,
		Points: 40, Description: "sale completed", ReferenceID: "tx:abc",
	})
	require.NoError(t, err)
	assert.Equal(t, 40, entry.Points)

	balance, err := svc.Balance(context.Background(), u.UserID)
	require.NoError(t, err)
	assert.Equal(t, 40, balance)

	history, err := svc.History(context.Background(), u.UserID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.PointsEarnedSale, history[0].EntryType)
	assert.Equal(t, "tx:abc", history[0].ReferenceID)
}

func TestAward_UnknownEntryType(t *testing.T) {
	db := setupRewardsDB(t)
	u := createRewardsUser(t, db)
	svc := &Service{DB: db}

	_, err := svc.Award(context.Background(), AwardInput{
		UserID: u.UserID, EntryType: "jackpot", Points: 10, Description: "x",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAward_PolarityEnforced(t *testing.T) {
	db := setupRewardsDB(t)
	u := createRewardsUser(t, db)
	svc := &Service{DB: db}

	_, err := svc.Award(context.Background(), AwardInput{
		UserID: u.UserID, EntryType: domain.PointsEarnedSale, Points: -5, Description: "x",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Award(context.Background(), AwardInput{
		UserID: u.UserID, EntryType: domain.PointsSpentDiscount, Points: 5, Description: "x",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Award(context.Background(), AwardInput{
		UserID: u.UserID, EntryType: domain.PointsBonus, Points: 0, Description: "x",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAward_InsufficientBalanceRejected(t *testing.T) {
	db := setupRewardsDB(t)
	u := createRewardsUser(t, db)
	svc := &Service{DB: db}

	_, err := svc.Award(context.Background(), AwardInput{
		UserID: u.UserID, EntryType: domain.PointsBonus, Points: 10, Description: "welcome",
	})
	require.NoError(t, err)

	_, err = svc.Award(context.Background(), AwardInput{
		UserID: u.UserID, EntryType: domain.PointsSpentCashout, Points: -25, Description: "cashout",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// The failed spend must leave no trace.
	balance, err := svc.Balance(context.Background(), u.UserID)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
	history, err := svc.History(context.Background(), u.UserID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAward_PenaltyMayGoNegative(t *testing.T) {
	db := setupRewardsDB(t)
	u := createRewardsUser(t, db)
	svc := &Service{DB: db}

	_, err := svc.Award(context.Background(), AwardInput{
		UserID: u.UserID, EntryType: domain.PointsPenalty, Points: -15, Description: "fraudulent listing",
	})
	require.NoError(t, err)

	balance, err := svc.Balance(context.Background(), u.UserID)
	require.NoError(t, err)
	assert.Equal(t, -15, balance)
}

func TestAward_UserNotFound(t *testing.T) {
	db := setupRewardsDB(t)
	svc := &Service{DB: db}

	_, err := svc.Award(context.Background(), AwardInput{
		UserID: uuid.New(), EntryType: domain.PointsBonus, Points: 5, Description: "x",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestVerifyLedger(t *testing.T) {
	db := setupRewardsDB(t)
	u := createRewardsUser(t, db)
	svc := &Service{DB: db}

	_, err := svc.Award(context.Background(), AwardInput{
		UserID: u.UserID, EntryType: domain.PointsBonus, Points: 20, Description: "welcome",
	})
	require.NoError(t, err)
	_, err = svc.Award(context.Background(), AwardInput{
		UserID: u.UserID, EntryType: domain.PointsSpentDonation, Points: -8, Description: "tree fund",
	})
	require.NoError(t, err)

	require.NoError(t, svc.VerifyLedger(context.Background(), u.UserID))

	// Corrupt the cached balance behind the ledger's back.
	require.NoError(t, db.Model(&domain.User{}).Where("user_id = ?", u.UserID).
		Update("eco_points", 999).Error)
	err = svc.VerifyLedger(context.Background(), u.UserID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindIntegrity))
}
