package catalog

import (
	"context"
	"encoding/json"

	"akrion-backend/internal/domain"
	"akrion-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service exposes the material taxonomy and dealer price comparison.
type Service struct {
	DB *gorm.DB
}

// CreateCategory adds a scrap category; names are unique.
func (s *Service) CreateCategory(ctx context.Context, name, description, icon string, sortOrder int) (*domain.ScrapCategory, error) {
	if name == "" {
		return nil, apperr.Validation("scrap_category", "name", "name is required")
	}
	var count int64
	s.DB.WithContext(ctx).Model(&domain.ScrapCategory{}).Where("name = ?", name).Count(&count)
	if count > 0 {
		return nil, apperr.Validation("scrap_category", "name", "category %q already exists", name)
	}
	cat := &domain.ScrapCategory{
		Name:        name,
		Description: description,
		Icon:        icon,
		IsActive:    true,
		SortOrder:   sortOrder,
	}
	if err := s.DB.WithContext(ctx).Create(cat).Error; err != nil {
		return nil, err
	}
	return cat, nil
}

// ListCategories returns active scrap categories in display order.
func (s *Service) ListCategories(ctx context.Context) ([]domain.ScrapCategory, error) {
	var cats []domain.ScrapCategory
	if err := s.DB.WithContext(ctx).Where("is_active = ?", true).
		Order("sort_order, name").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// CreateMaterialInput describes a new material within a category.
type CreateMaterialInput struct {
	CategoryID    uuid.UUID
	Name          string
	Description   string
	Unit          string
	QualityGrades []string
}

// CreateMaterial adds a material; names are unique per category and the
// grade set must be drawn from the four known grades.
func (s *Service) CreateMaterial(ctx context.Context, in CreateMaterialInput) (*domain.ScrapMaterial, error) {
	if in.Name == "" {
		return nil, apperr.Validation("scrap_material", "name", "name is required")
	}
	for _, g := range in.QualityGrades {
		if !domain.ValidGrade(g) {
			return nil, apperr.Validation("scrap_material", "quality_grades", "unknown quality grade %q", g)
		}
	}
	unit := in.Unit
	if unit == "" {
		unit = "kg"
	}

	var material *domain.ScrapMaterial
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cat domain.ScrapCategory
		if err := tx.Where("category_id = ?", in.CategoryID).First(&cat).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("scrap_category", in.CategoryID.String())
			}
			return err
		}
		var count int64
		tx.Model(&domain.ScrapMaterial{}).
			Where("category_id = ? AND name = ?", in.CategoryID, in.Name).Count(&count)
		if count > 0 {
			return apperr.Validation("scrap_material", "name", "material %q already exists in this category", in.Name)
		}

		grades, _ := json.Marshal(in.QualityGrades)
		material = &domain.ScrapMaterial{
			CategoryID:    in.CategoryID,
			Name:          in.Name,
			Description:   in.Description,
			Unit:          unit,
			QualityGrades: datatypes.JSON(grades),
			IsActive:      true,
		}
		return tx.Create(material).Error
	})
	if err != nil {
		return nil, err
	}
	return material, nil
}

// ListMaterials returns active materials, optionally for one category.
func (s *Service) ListMaterials(ctx context.Context, categoryID *uuid.UUID) ([]domain.ScrapMaterial, error) {
	q := s.DB.WithContext(ctx).Where("is_active = ?", true)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	var materials []domain.ScrapMaterial
	if err := q.Order("name").Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

// CreateReusableCategory adds a reusable-item category.
func (s *Service) CreateReusableCategory(ctx context.Context, name, description, icon string, sortOrder int) (*domain.ReusableItemCategory, error) {
	if name == "" {
		return nil, apperr.Validation("reusable_item_category", "name", "name is required")
	}
	var count int64
	s.DB.WithContext(ctx).Model(&domain.ReusableItemCategory{}).Where("name = ?", name).Count(&count)
	if count > 0 {
		return nil, apperr.Validation("reusable_item_category", "name", "category %q already exists", name)
	}
	cat := &domain.ReusableItemCategory{
		Name:        name,
		Description: description,
		Icon:        icon,
		IsActive:    true,
		SortOrder:   sortOrder,
	}
	if err := s.DB.WithContext(ctx).Create(cat).Error; err != nil {
		return nil, err
	}
	return cat, nil
}

// ListReusableCategories returns active reusable-item categories in display order.
func (s *Service) ListReusableCategories(ctx context.Context) ([]domain.ReusableItemCategory, error) {
	var cats []domain.ReusableItemCategory
	if err := s.DB.WithContext(ctx).Where("is_active = ?", true).
		Order("sort_order, name").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// UpsertPrice writes a dealer's quote for (material, grade). A second write
// for the same key updates the existing row; there is never a duplicate.
func (s *Service) UpsertPrice(ctx context.Context, dealerID, materialID uuid.UUID, grade string, price, minQty decimal.Decimal) (*domain.DealerPrice, error) {
	if !domain.ValidGrade(grade) {
		return nil, apperr.Validation("dealer_price", "quality_grade", "unknown quality grade %q", grade)
	}
	if price.IsNegative() {
		return nil, apperr.Validation("dealer_price", "price_per_unit", "price must not be negative")
	}
	if minQty.IsZero() {
		minQty = decimal.NewFromInt(1)
	}

	var out *domain.DealerPrice
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dealer domain.DealerProfile
		if err := tx.Where("dealer_id = ?", dealerID).First(&dealer).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("dealer_profile", dealerID.String())
			}
			return err
		}
		var material domain.ScrapMaterial
		if err := tx.Where("material_id = ?", materialID).First(&material).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("scrap_material", materialID.String())
			}
			return err
		}

		var existing domain.DealerPrice
		err := tx.Where("dealer_id = ? AND material_id = ? AND quality_grade = ?",
			dealerID, materialID, grade).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			out = &domain.DealerPrice{
				DealerID:        dealerID,
				MaterialID:      materialID,
				QualityGrade:    grade,
				PricePerUnit:    price,
				MinimumQuantity: minQty,
				IsActive:        true,
			}
			return tx.Create(out).Error
		}
		if err != nil {
			return err
		}
		existing.PricePerUnit = price
		existing.MinimumQuantity = minQty
		existing.IsActive = true
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		out = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeactivatePrice hides a quote from comparisons without deleting it.
func (s *Service) DeactivatePrice(ctx context.Context, dealerID, materialID uuid.UUID, grade string) error {
	res := s.DB.WithContext(ctx).Model(&domain.DealerPrice{}).
		Where("dealer_id = ? AND material_id = ? AND quality_grade = ?", dealerID, materialID, grade).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("dealer_price", materialID.String())
	}
	return nil
}

// PriceQuote is one row of a price comparison.
type PriceQuote struct {
	PriceID            uuid.UUID       `json:"price_id"`
	DealerID           uuid.UUID       `json:"dealer_id"`
	BusinessName       string          `json:"business_name"`
	VerificationStatus string          `json:"verification_status"`
	QualityGrade       string          `json:"quality_grade"`
	PricePerUnit       decimal.Decimal `json:"price_per_unit"`
	MinimumQuantity    decimal.Decimal `json:"minimum_quantity"`
}

// ListPrices compares active quotes for (material, grade), highest offer
// first so sellers see the best quote on top. verifiedOnly restricts to
// verified dealers. An empty result is valid.
func (s *Service) ListPrices(ctx context.Context, materialID uuid.UUID, grade string, verifiedOnly bool) ([]PriceQuote, error) {
	if !domain.ValidGrade(grade) {
		return nil, apperr.Validation("dealer_price", "quality_grade", "unknown quality grade %q", grade)
	}
	q := s.DB.WithContext(ctx).Model(&domain.DealerPrice{}).
		Joins("JOIN dealer_profiles ON dealer_profiles.dealer_id = dealer_prices.dealer_id").
		Where("dealer_prices.material_id = ? AND dealer_prices.quality_grade = ? AND dealer_prices.is_active = ?",
			materialID, grade, true)
	if verifiedOnly {
		q = q.Where("dealer_profiles.verification_status = ?", domain.VerificationVerified)
	}
	var quotes []PriceQuote
	if err := q.Select("dealer_prices.price_id, dealer_prices.dealer_id, dealer_profiles.business_name, dealer_profiles.verification_status, dealer_prices.quality_grade, dealer_prices.price_per_unit, dealer_prices.minimum_quantity").
		Order("dealer_prices.price_per_unit DESC").
		Scan(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}
