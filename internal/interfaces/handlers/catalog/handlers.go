package catalog

import (
	catsvc "akrion-backend/internal/application/catalog"
	dealersvc "akrion-backend/internal/application/dealers"
	"akrion-backend/internal/middleware"
	"akrion-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *catsvc.Service
	Dealers *dealersvc.Service
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	SortOrder   int    `json:"sort_order"`
}

// CreateCategory POST /api/v1/catalog/categories — admin only.
func (h *Handlers) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	cat, err := h.Service.CreateCategory(c.Context(), req.Name, req.Description, req.Icon, req.SortOrder)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Category created", cat, nil)
}

// ListCategories GET /api/v1/catalog/categories
func (h *Handlers) ListCategories(c *fiber.Ctx) error {
	cats, err := h.Service.ListCategories(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Categories fetched successfully", cats, nil)
}

type materialRequest struct {
	CategoryID    uuid.UUID `json:"category_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Unit          string    `json:"unit"`
	QualityGrades []string  `json:"quality_grades"`
}

// CreateMaterial POST /api/v1/catalog/materials — admin only.
func (h *Handlers) CreateMaterial(c *fiber.Ctx) error {
	var req materialRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	material, err := h.Service.CreateMaterial(c.Context(), catsvc.CreateMaterialInput{
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Description:   req.Description,
		Unit:          req.Unit,
		QualityGrades: req.QualityGrades,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Material created", material, nil)
}

// ListMaterials GET /api/v1/catalog/materials?category_id=...
func (h *Handlers) ListMaterials(c *fiber.Ctx) error {
	var categoryID *uuid.UUID
	if s := c.Query("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return response.Error(c, "Invalid category_id format", fiber.StatusBadRequest, nil)
		}
		categoryID = &id
	}
	materials, err := h.Service.ListMaterials(c.Context(), categoryID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Materials fetched successfully", materials, nil)
}

// CreateReusableCategory POST /api/v1/catalog/reusable-categories — admin only.
func (h *Handlers) CreateReusableCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	cat, err := h.Service.CreateReusableCategory(c.Context(), req.Name, req.Description, req.Icon, req.SortOrder)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Category created", cat, nil)
}

// ListReusableCategories GET /api/v1/catalog/reusable-categories
func (h *Handlers) ListReusableCategories(c *fiber.Ctx) error {
	cats, err := h.Service.ListReusableCategories(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Categories fetched successfully", cats, nil)
}

type priceRequest struct {
	MaterialID      uuid.UUID       `json:"material_id"`
	QualityGrade    string          `json:"quality_grade"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
	MinimumQuantity decimal.Decimal `json:"minimum_quantity"`
}

func (h *Handlers) actorDealerID(c *fiber.Ctx) (uuid.UUID, error) {
	actor := middleware.GetActor(c)
	if actor == nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	uid, err := uuid.Parse(actor.UserID)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	profile, err := h.Dealers.GetDealerByUser(c.Context(), uid)
	if err != nil {
		return uuid.Nil, err
	}
	return profile.DealerID, nil
}

// UpsertPrice PUT /api/v1/catalog/prices — the dealer quotes a material+grade.
func (h *Handlers) UpsertPrice(c *fiber.Ctx) error {
	dealerID, err := h.actorDealerID(c)
	if err == fiber.ErrUnauthorized {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err != nil {
		return response.FromError(c, err)
	}
	var req priceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	price, err := h.Service.UpsertPrice(c.Context(), dealerID, req.MaterialID, req.QualityGrade, req.PricePerUnit, req.MinimumQuantity)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Price saved", price, nil)
}

// DeactivatePrice DELETE /api/v1/catalog/prices/:material_id/:grade
func (h *Handlers) DeactivatePrice(c *fiber.Ctx) error {
	dealerID, err := h.actorDealerID(c)
	if err == fiber.ErrUnauthorized {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err != nil {
		return response.FromError(c, err)
	}
	materialID, err := uuid.Parse(c.Params("material_id"))
	if err != nil {
		return response.Error(c, "Invalid material_id format", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeactivatePrice(c.Context(), dealerID, materialID, c.Params("grade")); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Price deactivated", nil, nil)
}

// ComparePrices GET /api/v1/catalog/materials/:material_id/prices?grade=A&verified_only=true
func (h *Handlers) ComparePrices(c *fiber.Ctx) error {
	materialID, err := uuid.Parse(c.Params("material_id"))
	if err != nil {
		return response.Error(c, "Invalid material_id format", fiber.StatusBadRequest, nil)
	}
	grade := c.Query("grade")
	verifiedOnly := c.Query("verified_only") == "true"
	quotes, err := h.Service.ListPrices(c.Context(), materialID, grade, verifiedOnly)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Prices fetched successfully", quotes, nil)
}
