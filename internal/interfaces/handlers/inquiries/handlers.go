package inquiries

import (
	inqsvc "akrion-backend/internal/application/inquiries"
	"akrion-backend/internal/domain"
	"akrion-backend/internal/middleware"
	"akrion-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *inqsvc.Service
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

type createRequest struct {
	ListingKind     string           `json:"listing_kind"`
	ListingID       uuid.UUID        `json:"listing_id"`
	Message         string           `json:"message"`
	OfferedPrice    *decimal.Decimal `json:"offered_price"`
	OfferedQuantity *decimal.Decimal `json:"offered_quantity"`
}

// Create POST /api/v1/inquiries
func (h *Handlers) Create(c *fiber.Ctx) error {
	uid, _, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	inquiry, err := h.Service.Create(c.Context(), inqsvc.CreateInput{
		BuyerID:         uid,
		Ref:             domain.ListingRef{ListingKind: domain.ListingKind(req.ListingKind), ListingID: req.ListingID},
		Message:         req.Message,
		OfferedPrice:    req.OfferedPrice,
		OfferedQuantity: req.OfferedQuantity,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Inquiry created", inquiry, nil)
}

// Get GET /api/v1/inquiries/:inquiry_id
func (h *Handlers) Get(c *fiber.Ctx) error {
	uid, role, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	inquiryID, err := uuid.Parse(c.Params("inquiry_id"))
	if err != nil {
		return response.Error(c, "Invalid inquiry_id format", fiber.StatusBadRequest, nil)
	}
	inquiry, err := h.Service.Get(c.Context(), inquiryID, uid, role)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Inquiry fetched successfully", inquiry, nil)
}

// ListMine GET /api/v1/inquiries — the buyer's inquiries.
func (h *Handlers) ListMine(c *fiber.Ctx) error {
	uid, _, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	inquiries, err := h.Service.ListForBuyer(c.Context(), uid)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Inquiries fetched successfully", inquiries, nil)
}

// ListForListing GET /api/v1/inquiries/listing/:kind/:listing_id
func (h *Handlers) ListForListing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}
	ref := domain.ListingRef{ListingKind: domain.ListingKind(c.Params("kind")), ListingID: id}
	inquiries, err := h.Service.ListForListing(c.Context(), ref)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Inquiries fetched successfully", inquiries, nil)
}

type respondRequest struct {
	Response string `json:"response"`
}

// Respond POST /api/v1/inquiries/:inquiry_id/respond — seller replies.
func (h *Handlers) Respond(c *fiber.Ctx) error {
	uid, _, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	inquiryID, err := uuid.Parse(c.Params("inquiry_id"))
	if err != nil {
		return response.Error(c, "Invalid inquiry_id format", fiber.StatusBadRequest, nil)
	}
	var req respondRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	inquiry, err := h.Service.Respond(c.Context(), inquiryID, uid, req.Response)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Response recorded", inquiry, nil)
}

// Reject POST /api/v1/inquiries/:inquiry_id/reject
func (h *Handlers) Reject(c *fiber.Ctx) error {
	uid, _, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	inquiryID, err := uuid.Parse(c.Params("inquiry_id"))
	if err != nil {
		return response.Error(c, "Invalid inquiry_id format", fiber.StatusBadRequest, nil)
	}
	inquiry, err := h.Service.Reject(c.Context(), inquiryID, uid)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Inquiry rejected", inquiry, nil)
}

type acceptRequest struct {
	FinalPrice    *decimal.Decimal `json:"final_price"`
	FinalQuantity *decimal.Decimal `json:"final_quantity"`
}

// Accept POST /api/v1/inquiries/:inquiry_id/accept — creates the transaction.
// The body may carry negotiated final terms.
func (h *Handlers) Accept(c *fiber.Ctx) error {
	uid, _, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	inquiryID, err := uuid.Parse(c.Params("inquiry_id"))
	if err != nil {
		return response.Error(c, "Invalid inquiry_id format", fiber.StatusBadRequest, nil)
	}
	var req acceptRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
		}
	}
	tx, err := h.Service.Accept(c.Context(), inquiryID, uid, req.FinalPrice, req.FinalQuantity)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Inquiry accepted", tx, nil)
}
