package catalog

import (
	"context"
	"testing"

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

func setupCatalogDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func createCatalogDealer(t *testing.T, db *gorm.DB, name, status string) *domain.DealerProfile {
	u := &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Role: constants.Dealer}
	require.NoError(t, db.Create(u).Error)
	d := &domain.DealerProfile{
		UserID: u.UserID, BusinessName: name + " Recycling",
		BusinessRegistrationNumber: "REG-" + name,
		BusinessAddress:            "1 Yard", BusinessPhone: "123", BusinessEmail: name + "@biz.example.com",
		VerificationStatus: status,
	}
	require.NoError(t, db.Create(d).Error)
	return d
}

func createMaterial(t *testing.T, db *gorm.DB, svc *Service) *domain.ScrapMaterial {
	cat, err := svc.CreateCategory(context.Background(), "Metals", "ferrous and non-ferrous", "", 1)
	require.NoError(t, err)
	m, err := svc.CreateMaterial(context.Background(), CreateMaterialInput{
		CategoryID:    cat.CategoryID,
		Name:          "Copper Wire",
		Unit:          "kg",
		QualityGrades: []string{domain.GradeA, domain.GradeB},
	})
	require.NoError(t, err)
	return m
}

func TestCreateCategory_UniqueNames(t *testing.T) {
	db := setupCatalogDB(t)
	svc := &Service{DB: db}

	_, err := svc.CreateCategory(context.Background(), "Metals", "", "", 1)
	require.NoError(t, err)
	_, err = svc.CreateCategory(context.Background(), "Metals", "", "", 2)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.CreateCategory(context.Background(), "", "", "", 0)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestListCategories_SortOrder(t *testing.T) {
	db := setupCatalogDB(t)
	svc := &Service{DB: db}

	_, err := svc.CreateCategory(context.Background(), "Plastics", "", "", 2)
	require.NoError(t, err)
	_, err = svc.CreateCategory(context.Background(), "Metals", "", "", 1)
	require.NoError(t, err)

	cats, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Metals", cats[0].Name)
	assert.Equal(t, "Plastics", cats[1].Name)
}

func TestCreateMaterial_ValidatesGradesAndCategory(t *testing.T) {
	db := setupCatalogDB(t)
	svc := &Service{DB: db}
	cat, err := svc.CreateCategory(context.Background(), "Metals", "", "", 1)
	require.NoError(t, err)

	_, err = svc.CreateMaterial(context.Background(), CreateMaterialInput{
		CategoryID: cat.CategoryID, Name: "Aluminium", QualityGrades: []string{"S"},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.CreateMaterial(context.Background(), CreateMaterialInput{
		CategoryID: uuid.New(), Name: "Aluminium",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	m, err := svc.CreateMaterial(context.Background(), CreateMaterialInput{
		CategoryID: cat.CategoryID, Name: "Aluminium",
	})
	require.NoError(t, err)
	assert.Equal(t, "kg", m.Unit) // default unit

	_, err = svc.CreateMaterial(context.Background(), CreateMaterialInput{
		CategoryID: cat.CategoryID, Name: "Aluminium",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUpsertPrice_NoDuplicateForSameKey(t *testing.T) {
	db := setupCatalogDB(t)
	svc := &Service{DB: db}
	dealer := createCatalogDealer(t, db, "kabadi", domain.VerificationVerified)
	material := createMaterial(t, db, svc)

	first, err := svc.UpsertPrice(context.Background(), dealer.DealerID, material.MaterialID,
		domain.GradeA, decimal.RequireFromString("450"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, first.MinimumQuantity.Equal(decimal.NewFromInt(1))) // default min qty

	second, err := svc.UpsertPrice(context.Background(), dealer.DealerID, material.MaterialID,
		domain.GradeA, decimal.RequireFromString("480"), decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.Equal(t, first.PriceID, second.PriceID)
	assert.True(t, second.PricePerUnit.Equal(decimal.RequireFromString("480")))

	var count int64
	db.Model(&domain.DealerPrice{}).
		Where("dealer_id = ? AND material_id = ?", dealer.DealerID, material.MaterialID).
		Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUpsertPrice_Validation(t *testing.T) {
	db := setupCatalogDB(t)
	svc := &Service{DB: db}
	dealer := createCatalogDealer(t, db, "fussy", domain.VerificationVerified)
	material := createMaterial(t, db, svc)

	_, err := svc.UpsertPrice(context.Background(), dealer.DealerID, material.MaterialID,
		"Z", decimal.NewFromInt(10), decimal.Zero)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.UpsertPrice(context.Background(), dealer.DealerID, material.MaterialID,
		domain.GradeA, decimal.NewFromInt(-1), decimal.Zero)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.UpsertPrice(context.Background(), uuid.New(), material.MaterialID,
		domain.GradeA, decimal.NewFromInt(10), decimal.Zero)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestListPrices_OrderingAndFilters(t *testing.T) {
	db := setupCatalogDB(t)
	svc := &Service{DB: db}
	material := createMaterial(t, db, svc)

	verified := createCatalogDealer(t, db, "prime", domain.VerificationVerified)
	pending := createCatalogDealer(t, db, "newbie", domain.VerificationPending)
	cheap := createCatalogDealer(t, db, "lowball", domain.VerificationVerified)

	for _, q := range []struct {
		dealer *domain.DealerProfile
		price  string
	}{
		{verified, "450"},
		{pending, "500"},
		{cheap, "400"},
	} {
		_, err := svc.UpsertPrice(context.Background(), q.dealer.DealerID, material.MaterialID,
			domain.GradeA, decimal.RequireFromString(q.price), decimal.Zero)
		require.NoError(t, err)
	}

	quotes, err := svc.ListPrices(context.Background(), material.MaterialID, domain.GradeA, false)
	require.NoError(t, err)
	require.Len(t, quotes, 3)
	// Highest price first.
	assert.Equal(t, pending.DealerID, quotes[0].DealerID)
	assert.Equal(t, verified.DealerID, quotes[1].DealerID)
	assert.Equal(t, cheap.DealerID, quotes[2].DealerID)

	quotes, err = svc.ListPrices(context.Background(), material.MaterialID, domain.GradeA, true)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, verified.DealerID, quotes[0].DealerID)
	assert.Equal(t, cheap.DealerID, quotes[1].DealerID)

	// Deactivated quotes drop out of the comparison.
	require.NoError(t, svc.DeactivatePrice(context.Background(), verified.DealerID, material.MaterialID, domain.GradeA))
	quotes, err = svc.ListPrices(context.Background(), material.MaterialID, domain.GradeA, false)
	require.NoError(t, err)
	assert.Len(t, quotes, 2)

	_, err = svc.ListPrices(context.Background(), material.MaterialID, "Q", false)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
