package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quality grades applied to scrap materials and dealer quotes.
const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
)

// ValidGrade reports whether g is one of the four quality grades.
func ValidGrade(g string) bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeD:
		return true
	}
	return false
}

// ScrapCategory groups scrap materials (Metals, Paper, E-Waste, ...).
type ScrapCategory struct {
	CategoryID  uuid.UUID `gorm:"column:category_id;type:uuid;primaryKey" json:"category_id"`
	Name        string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Icon        string    `gorm:"column:icon" json:"icon"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"is_active"`
	SortOrder   int       `gorm:"column:sort_order;default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *ScrapCategory) BeforeCreate(tx *gorm.DB) error {
	if c.CategoryID == uuid.Nil {
		c.CategoryID = uuid.New()
	}
	return nil
}

// ScrapMaterial is a tradable material within a category. QualityGrades holds
// the subset of grades a dealer may quote for it (JSON array, e.g. ["A","B"]).
type ScrapMaterial struct {
	MaterialID    uuid.UUID      `gorm:"column:material_id;type:uuid;primaryKey" json:"material_id"`
	CategoryID    uuid.UUID      `gorm:"column:category_id;type:uuid;not null;uniqueIndex:idx_category_material_name" json:"category_id"`
	Name          string         `gorm:"column:name;not null;uniqueIndex:idx_category_material_name" json:"name"`
	Description   string         `gorm:"column:description" json:"description"`
	Unit          string         `gorm:"column:unit;type:varchar(20);not null;default:kg" json:"unit"`
	QualityGrades datatypes.JSON `gorm:"column:quality_grades" json:"quality_grades"`
	IsActive      bool           `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (m *ScrapMaterial) BeforeCreate(tx *gorm.DB) error {
	if m.MaterialID == uuid.Nil {
		m.MaterialID = uuid.New()
	}
	return nil
}

// ReusableItemCategory groups second-hand item listings (Furniture,
// Electronics, ...). Kept separate from scrap categories.
type ReusableItemCategory struct {
	CategoryID  uuid.UUID `gorm:"column:category_id;type:uuid;primaryKey" json:"category_id"`
	Name        string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Icon        string    `gorm:"column:icon" json:"icon"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"is_active"`
	SortOrder   int       `gorm:"column:sort_order;default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *ReusableItemCategory) BeforeCreate(tx *gorm.DB) error {
	if c.CategoryID == uuid.Nil {
		c.CategoryID = uuid.New()
	}
	return nil
}

// DealerPrice is a dealer's standing quote for one (material, grade).
// Unique on (dealer, material, quality_grade); writes upsert.
type DealerPrice struct {
	PriceID         uuid.UUID       `gorm:"column:price_id;type:uuid;primaryKey" json:"price_id"`
	DealerID        uuid.UUID       `gorm:"column:dealer_id;type:uuid;not null;uniqueIndex:idx_dealer_material_grade" json:"dealer_id"`
	MaterialID      uuid.UUID       `gorm:"column:material_id;type:uuid;not null;uniqueIndex:idx_dealer_material_grade" json:"material_id"`
	QualityGrade    string          `gorm:"column:quality_grade;type:varchar(1);not null;uniqueIndex:idx_dealer_material_grade" json:"quality_grade"`
	PricePerUnit    decimal.Decimal `gorm:"column:price_per_unit;type:decimal(10,2);not null" json:"price_per_unit"`
	MinimumQuantity decimal.Decimal `gorm:"column:minimum_quantity;type:decimal(10,2);not null;default:1" json:"minimum_quantity"`
	IsActive        bool            `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *DealerPrice) BeforeCreate(tx *gorm.DB) error {
	if p.PriceID == uuid.Nil {
		p.PriceID = uuid.New()
	}
	return nil
}
