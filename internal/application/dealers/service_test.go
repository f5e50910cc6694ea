package dealers

import (
	"context"
	"testing"

	"akrion-backend/internal/application/rewards"
	"akrion-backend/internal/domain"
	"akrion-backend/internal/infrastructure/database"
	"akrion-backend/internal/pkg/apperr"
	"akrion-backend/internal/pkg/constants"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDealersDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username, role string) *domain.User {
	u := &domain.User{
		Username: username, Email: username + "@example.com",
		PasswordHash: "x", Role: role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createDealer(t *testing.T, db *gorm.DB, owner *domain.User) *domain.DealerProfile {
	d := &domain.DealerProfile{
		UserID:                     owner.UserID,
		BusinessName:               owner.Username + " Scrap Co",
		BusinessRegistrationNumber: "REG-" + owner.Username,
		BusinessAddress:            "12 Yard Lane",
		BusinessPhone:              "9876543210",
		BusinessEmail:              owner.Username + "@biz.example.com",
		VerificationStatus:         domain.VerificationPending,
	}
	require.NoError(t, db.Create(d).Error)
	return d
}

func TestCreateProfile_RequiresDealerRole(t *testing.T) {
	db := setupDealersDB(t)
	svc := &Service{DB: db}
	regular := createUser(t, db, "ordinary", constants.Regular)

	_, err := svc.CreateProfile(context.Background(), CreateProfileInput{
		UserID:                     regular.UserID,
		BusinessName:               "Nope Traders",
		BusinessRegistrationNumber: "REG-1",
		BusinessAddress:            "1 Road",
		BusinessPhone:              "123",
		BusinessEmail:              "n@example.com",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestCreateProfile_OnePerUserAndUniqueRegistration(t *testing.T) {
	db := setupDealersDB(t)
	svc := &Service{DB: db}
	owner := createUser(t, db, "ferrous", constants.Dealer)

	in := CreateProfileInput{
		UserID:                     owner.UserID,
		BusinessName:               "Ferrous & Sons",
		BusinessRegistrationNumber: "REG-42",
		BusinessAddress:            "1 Road",
		BusinessPhone:              "123",
		BusinessEmail:              "f@example.com",
	}
	profile, err := svc.CreateProfile(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationPending, profile.VerificationStatus)

	_, err = svc.CreateProfile(context.Background(), in)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	other := createUser(t, db, "cuprum", constants.Dealer)
	in.UserID = other.UserID
	_, err = svc.CreateProfile(context.Background(), in)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestSubmitRating_AggregatesAndUpserts(t *testing.T) {
	db := setupDealersDB(t)
	svc := &Service{DB: db}
	owner := createUser(t, db, "yardboss", constants.Dealer)
	dealer := createDealer(t, db, owner)

	raters := []*domain.User{
		createUser(t, db, "rater1", constants.Regular),
		createUser(t, db, "rater2", constants.Regular),
		createUser(t, db, "rater3", constants.Regular),
	}
	for i, v := range []int{4, 5, 3} {
		_, err := svc.SubmitRating(context.Background(), dealer.DealerID, raters[i].UserID, v, "ok")
		require.NoError(t, err)
	}

	got, err := svc.GetDealer(context.Background(), dealer.DealerID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalRatings)
	assert.True(t, got.AverageRating.Equal(decimal.RequireFromString("4")),
		"want 4.00, got %s", got.AverageRating)

	// A fourth rater shifts the mean.
	rater4 := createUser(t, db, "rater4", constants.Regular)
	_, err = svc.SubmitRating(context.Background(), dealer.DealerID, rater4.UserID, 2, "slow pickup")
	require.NoError(t, err)
	got, err = svc.GetDealer(context.Background(), dealer.DealerID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalRatings)
	assert.True(t, got.AverageRating.Equal(decimal.RequireFromString("3.5")),
		"want 3.50, got %s", got.AverageRating)

	// Re-rating replaces, never duplicates.
	_, err = svc.SubmitRating(context.Background(), dealer.DealerID, rater4.UserID, 4, "better now")
	require.NoError(t, err)
	got, err = svc.GetDealer(context.Background(), dealer.DealerID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalRatings)
	assert.True(t, got.AverageRating.Equal(decimal.RequireFromString("4")),
		"want 4.00, got %s", got.AverageRating)
}

func TestSubmitRating_SelfRatingForbidden(t *testing.T) {
	db := setupDealersDB(t)
	svc := &Service{DB: db}
	owner := createUser(t, db, "selfrater", constants.Dealer)
	dealer := createDealer(t, db, owner)

	_, err := svc.SubmitRating(context.Background(), dealer.DealerID, owner.UserID, 5, "great, me")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestSubmitRating_OutOfRange(t *testing.T) {
	db := setupDealersDB(t)
	svc := &Service{DB: db}
	owner := createUser(t, db, "ranged", constants.Dealer)
	dealer := createDealer(t, db, owner)
	rater := createUser(t, db, "picky", constants.Regular)

	for _, v := range []int{0, 6, -1} {
		_, err := svc.SubmitRating(context.Background(), dealer.DealerID, rater.UserID, v, "")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	}
}

func TestSubmitRating_FirstRatingAwardsReviewBonusOnce(t *testing.T) {
	db := setupDealersDB(t)
	policy := rewards.RatePolicy{ReviewBonusPoints: 5}
	svc := &Service{DB: db, Policy: policy}
	owner := createUser(t, db, "bonusyard", constants.Dealer)
	dealer := createDealer(t, db, owner)
	rater := createUser(t, db, "generous", constants.Regular)

	_, err := svc.SubmitRating(context.Background(), dealer.DealerID, rater.UserID, 5, "first")
	require.NoError(t, err)
	_, err = svc.SubmitRating(context.Background(), dealer.DealerID, rater.UserID, 4, "edited")
	require.NoError(t, err)

	rewardsSvc := &rewards.Service{DB: db}
	balance, err := rewardsSvc.Balance(context.Background(), rater.UserID)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
	history, err := rewardsSvc.History(context.Background(), rater.UserID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.PointsEarnedReview, history[0].EntryType)
}

func TestSetVerificationStatus_StampsVerification(t *testing.T) {
	db := setupDealersDB(t)
	svc := &Service{DB: db}
	owner := createUser(t, db, "verifyme", constants.Dealer)
	dealer := createDealer(t, db, owner)
	admin := createUser(t, db, "boss", constants.Admin)

	got, err := svc.SetVerificationStatus(context.Background(), dealer.DealerID, domain.VerificationVerified, admin.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationVerified, got.VerificationStatus)
	require.NotNil(t, got.VerificationDate)
	require.NotNil(t, got.VerifiedBy)
	assert.Equal(t, admin.UserID, *got.VerifiedBy)

	// Re-transitioning a verified dealer is permitted.
	got, err = svc.SetVerificationStatus(context.Background(), dealer.DealerID, domain.VerificationSuspended, admin.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationSuspended, got.VerificationStatus)

	_, err = svc.SetVerificationStatus(context.Background(), dealer.DealerID, "golden", admin.UserID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestBulkVerify_SkipsMissingDealers(t *testing.T) {
	db := setupDealersDB(t)
	svc := &Service{DB: db}
	admin := createUser(t, db, "bulkboss", constants.Admin)
	d1 := createDealer(t, db, createUser(t, db, "bulk1", constants.Dealer))
	d2 := createDealer(t, db, createUser(t, db, "bulk2", constants.Dealer))

	updated, err := svc.VerifyDealers(context.Background(),
		[]uuid.UUID{d1.DealerID, uuid.New(), d2.DealerID}, admin.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	for _, id := range []uuid.UUID{d1.DealerID, d2.DealerID} {
		got, err := svc.GetDealer(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.VerificationVerified, got.VerificationStatus)
	}

	updated, err = svc.RejectDealers(context.Background(), []uuid.UUID{d1.DealerID}, admin.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	got, err := svc.GetDealer(context.Background(), d1.DealerID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationRejected, got.VerificationStatus)
}

func TestListDealers_FiltersByStatus(t *testing.T) {
	db := setupDealersDB(t)
	svc := &Service{DB: db}
	admin := createUser(t, db, "lister", constants.Admin)
	d1 := createDealer(t, db, createUser(t, db, "list1", constants.Dealer))
	createDealer(t, db, createUser(t, db, "list2", constants.Dealer))

	_, err := svc.SetVerificationStatus(context.Background(), d1.DealerID, domain.VerificationVerified, admin.UserID)
	require.NoError(t, err)

	verified, err := svc.ListDealers(context.Background(), domain.VerificationVerified)
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, d1.DealerID, verified[0].DealerID)

	all, err := svc.ListDealers(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
