package listings

import (
	"time"

	listsvc "akrion-backend/internal/application/listings"
	"akrion-backend/internal/domain"
	"akrion-backend/internal/middleware"
	"akrion-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *listsvc.Service
}

func actor(c *fiber.Ctx) (uuid.UUID, string, error) {
	a := middleware.GetActor(c)
	if a == nil {
		return uuid.Nil, "", fiber.ErrUnauthorized
	}
	id, err := uuid.Parse(a.UserID)
	if err != nil {
		return uuid.Nil, "", fiber.ErrUnauthorized
	}
	return id, a.Role, nil
}

// parseRef builds a listing reference from the :kind/:listing_id route params.
func parseRef(c *fiber.Ctx) (domain.ListingRef, error) {
	id, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return domain.ListingRef{}, err
	}
	ref := domain.ListingRef{ListingKind: domain.ListingKind(c.Params("kind")), ListingID: id}
	if !ref.Valid() {
		return domain.ListingRef{}, fiber.ErrBadRequest
	}
	return ref, nil
}

type createScrapRequest struct {
	MaterialID    uuid.UUID       `json:"material_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	QualityGrade  string          `json:"quality_grade"`
	ExpectedPrice decimal.Decimal `json:"expected_price"`
	PickupAddress string          `json:"pickup_address"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	Pincode       string          `json:"pincode"`
	Image1URL     string          `json:"image1_url"`
	Image2URL     string          `json:"image2_url"`
	Image3URL     string          `json:"image3_url"`
	ExpiresAt     *time.Time      `json:"expires_at"`
}

// CreateScrap POST /api/v1/listings/scrap
func (h *Handlers) CreateScrap(c *fiber.Ctx) error {
	uid, _, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req createScrapRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	listing, err := h.Service.CreateScrap(c.Context(), listsvc.CreateScrapInput{
		SellerID:      uid,
		MaterialID:    req.MaterialID,
		Title:         req.Title,
		Description:   req.Description,
		Quantity:      req.Quantity,
		QualityGrade:  req.QualityGrade,
		ExpectedPrice: req.ExpectedPrice,
		PickupAddress: req.PickupAddress,
		City:          req.City,
		State:         req.State,
		Pincode:       req.Pincode,
		Image1URL:     req.Image1URL,
		Image2URL:     req.Image2URL,
		Image3URL:     req.Image3URL,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Listing created successfully", listing, nil)
}

type createReusableRequest struct {
	CategoryID           uuid.UUID        `json:"category_id"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	Brand                string           `json:"brand"`
	Model                string           `json:"model"`
	Condition            string           `json:"condition"`
	TransactionType      string           `json:"transaction_type"`
	Price                *decimal.Decimal `json:"price"`
	ExchangeRequirements string           `json:"exchange_requirements"`
	PickupAddress        string           `json:"pickup_address"`
	City                 string           `json:"city"`
	State                string           `json:"state"`
	Pincode              string           `json:"pincode"`
	Image1URL            string           `json:"image1_url"`
	Image2URL            string           `json:"image2_url"`
	Image3URL            string           `json:"image3_url"`
	Image4URL            string           `json:"image4_url"`
	ExpiresAt            *time.Time       `json:"expires_at"`
}

// CreateReusable POST /api/v1/listings/reusable
func (h *Handlers) CreateReusable(c *fiber.Ctx) error {
	uid, _, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req createReusableRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	listing, err := h.Service.CreateReusable(c.Context(), listsvc.CreateReusableInput{
		SellerID:             uid,
		CategoryID:           req.CategoryID,
		Title:                req.Title,
		Description:          req.Description,
		Brand:                req.Brand,
		Model:                req.Model,
		Condition:            req.Condition,
		TransactionType:      req.TransactionType,
		Price:                req.Price,
		ExchangeRequirements: req.ExchangeRequirements,
		PickupAddress:        req.PickupAddress,
		City:                 req.City,
		State:                req.State,
		Pincode:              req.Pincode,
		Image1URL:            req.Image1URL,
		Image2URL:            req.Image2URL,
		Image3URL:            req.Image3URL,
		Image4URL:            req.Image4URL,
		ExpiresAt:            req.ExpiresAt,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Listing created successfully", listing, nil)
}

// ListScrap GET /api/v1/listings/scrap
func (h *Handlers) ListScrap(c *fiber.Ctx) error {
	var f listsvc.ScrapFilter
	if s := c.Query("material_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return response.Error(c, "Invalid material_id format", fiber.StatusBadRequest, nil)
		}
		f.MaterialID = &id
	}
	f.QualityGrade = c.Query("quality_grade")
	f.City = c.Query("city")
	listings, err := h.Service.ListActiveScrap(c.Context(), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listings fetched successfully", listings, nil)
}

// ListReusable GET /api/v1/listings/reusable
func (h *Handlers) ListReusable(c *fiber.Ctx) error {
	var f listsvc.ReusableFilter
	if s := c.Query("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return response.Error(c, "Invalid category_id format", fiber.StatusBadRequest, nil)
		}
		f.CategoryID = &id
	}
	f.Condition = c.Query("condition")
	f.TransactionType = c.Query("transaction_type")
	f.City = c.Query("city")
	listings, err := h.Service.ListActiveReusable(c.Context(), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listings fetched successfully", listings, nil)
}

// Get GET /api/v1/listings/:kind/:listing_id — also counts the view.
func (h *Handlers) Get(c *fiber.Ctx) error {
	ref, err := parseRef(c)
	if err != nil {
		return response.Error(c, "Invalid listing reference", fiber.StatusBadRequest, nil)
	}
	var listing interface{}
	switch ref.ListingKind {
	case domain.KindScrap:
		listing, err = h.Service.GetScrap(c.Context(), ref.ListingID)
	default:
		listing, err = h.Service.GetReusable(c.Context(), ref.ListingID)
	}
	if err != nil {
		return response.FromError(c, err)
	}
	_ = h.Service.RecordView(c.Context(), ref)
	return response.Success(c, "Listing fetched successfully", listing, nil)
}

type transitionRequest struct {
	Status string `json:"status"`
}

// Transition PATCH /api/v1/listings/:kind/:listing_id/status
func (h *Handlers) Transition(c *fiber.Ctx) error {
	uid, role, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	ref, err := parseRef(c)
	if err != nil {
		return response.Error(c, "Invalid listing reference", fiber.StatusBadRequest, nil)
	}
	var req transitionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Transition(c.Context(), ref, req.Status, uid, role); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listing status updated", nil, nil)
}

type assessmentRequest struct {
	QualityGrade   string           `json:"quality_grade"`
	MaterialType   string           `json:"material_type"`
	Confidence     float64          `json:"confidence"`
	SuggestedPrice *decimal.Decimal `json:"suggested_price"`
}

// ApplyAssessment POST /api/v1/listings/:kind/:listing_id/assessment
func (h *Handlers) ApplyAssessment(c *fiber.Ctx) error {
	ref, err := parseRef(c)
	if err != nil {
		return response.Error(c, "Invalid listing reference", fiber.StatusBadRequest, nil)
	}
	var req assessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	err = h.Service.ApplyAssessment(c.Context(), ref, domain.AIAssessment{
		AIQualityGrade:   req.QualityGrade,
		AIMaterialType:   req.MaterialType,
		AIConfidence:     req.Confidence,
		AISuggestedPrice: req.SuggestedPrice,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Assessment recorded", nil, nil)
}
