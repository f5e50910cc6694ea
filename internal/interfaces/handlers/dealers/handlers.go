package dealers

import (
	dealersvc "akrion-backend/internal/application/dealers"
	inqsvc "akrion-backend/internal/application/inquiries"
	"akrion-backend/internal/middleware"
	"akrion-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service   *dealersvc.Service
	Inquiries *inqsvc.Service
}

func actorID(c *fiber.Ctx) (uuid.UUID, error) {
	actor := middleware.GetActor(c)
	if actor == nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return uuid.Parse(actor.UserID)
}

type createProfileRequest struct {
	BusinessName               string           `json:"business_name"`
	BusinessRegistrationNumber string           `json:"business_registration_number"`
	GstNumber                  string           `json:"gst_number"`
	BusinessAddress            string           `json:"business_address"`
	BusinessPhone              string           `json:"business_phone"`
	BusinessEmail              string           `json:"business_email"`
	Website                    string           `json:"website"`
	YearsInBusiness            int              `json:"years_in_business"`
	Specialization             string           `json:"specialization"`
	PickupAvailable            bool             `json:"pickup_available"`
	DeliveryAvailable          bool             `json:"delivery_available"`
	OperatingHours             string           `json:"operating_hours"`
	Latitude                   *decimal.Decimal `json:"latitude"`
	Longitude                  *decimal.Decimal `json:"longitude"`
}

// CreateProfile POST /api/v1/dealers — dealer registers their business.
func (h *Handlers) CreateProfile(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req createProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	profile, err := h.Service.CreateProfile(c.Context(), dealersvc.CreateProfileInput{
		UserID:                     uid,
		BusinessName:               req.BusinessName,
		BusinessRegistrationNumber: req.BusinessRegistrationNumber,
		GstNumber:                  req.GstNumber,
		BusinessAddress:            req.BusinessAddress,
		BusinessPhone:              req.BusinessPhone,
		BusinessEmail:              req.BusinessEmail,
		Website:                    req.Website,
		YearsInBusiness:            req.YearsInBusiness,
		Specialization:             req.Specialization,
		PickupAvailable:            req.PickupAvailable,
		DeliveryAvailable:          req.DeliveryAvailable,
		OperatingHours:             req.OperatingHours,
		Latitude:                   req.Latitude,
		Longitude:                  req.Longitude,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Dealer profile created", profile, nil)
}

// GetDealer GET /api/v1/dealers/:dealer_id
func (h *Handlers) GetDealer(c *fiber.Ctx) error {
	dealerID, err := uuid.Parse(c.Params("dealer_id"))
	if err != nil {
		return response.Error(c, "Invalid dealer_id format", fiber.StatusBadRequest, nil)
	}
	profile, err := h.Service.GetDealer(c.Context(), dealerID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dealer fetched successfully", profile, nil)
}

// GetMyProfile GET /api/v1/dealers/me
func (h *Handlers) GetMyProfile(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	profile, err := h.Service.GetDealerByUser(c.Context(), uid)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dealer fetched successfully", profile, nil)
}

// ListDealers GET /api/v1/dealers?status=verified — best rated first.
func (h *Handlers) ListDealers(c *fiber.Ctx) error {
	dealers, err := h.Service.ListDealers(c.Context(), c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dealers fetched successfully", dealers, nil)
}

type ratingRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// SubmitRating POST /api/v1/dealers/:dealer_id/ratings
func (h *Handlers) SubmitRating(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	dealerID, err := uuid.Parse(c.Params("dealer_id"))
	if err != nil {
		return response.Error(c, "Invalid dealer_id format", fiber.StatusBadRequest, nil)
	}
	var req ratingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	rating, err := h.Service.SubmitRating(c.Context(), dealerID, uid, req.Rating, req.Review)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Rating submitted", rating, nil)
}

// ListRatings GET /api/v1/dealers/:dealer_id/ratings
func (h *Handlers) ListRatings(c *fiber.Ctx) error {
	dealerID, err := uuid.Parse(c.Params("dealer_id"))
	if err != nil {
		return response.Error(c, "Invalid dealer_id format", fiber.StatusBadRequest, nil)
	}
	ratings, err := h.Service.ListRatings(c.Context(), dealerID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Ratings fetched successfully", ratings, nil)
}

type verificationRequest struct {
	Status string `json:"status"`
}

// SetVerification PATCH /api/v1/dealers/:dealer_id/verification — admin only.
func (h *Handlers) SetVerification(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	dealerID, err := uuid.Parse(c.Params("dealer_id"))
	if err != nil {
		return response.Error(c, "Invalid dealer_id format", fiber.StatusBadRequest, nil)
	}
	var req verificationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	profile, err := h.Service.SetVerificationStatus(c.Context(), dealerID, req.Status, uid)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Verification status updated", profile, nil)
}

type bulkVerificationRequest struct {
	DealerIDs []uuid.UUID `json:"dealer_ids"`
}

// BulkVerify POST /api/v1/dealers/verify — admin approves a batch.
func (h *Handlers) BulkVerify(c *fiber.Ctx) error {
	return h.bulk(c, true)
}

// BulkReject POST /api/v1/dealers/reject — admin rejects a batch.
func (h *Handlers) BulkReject(c *fiber.Ctx) error {
	return h.bulk(c, false)
}

func (h *Handlers) bulk(c *fiber.Ctx, verify bool) error {
	uid, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req bulkVerificationRequest
	if err := c.BodyParser(&req); err != nil || len(req.DealerIDs) == 0 {
		return response.Error(c, "dealer_ids is required", fiber.StatusBadRequest, nil)
	}
	var updated int
	if verify {
		updated, err = h.Service.VerifyDealers(c.Context(), req.DealerIDs, uid)
	} else {
		updated, err = h.Service.RejectDealers(c.Context(), req.DealerIDs, uid)
	}
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Verification statuses updated", fiber.Map{"updated": updated}, nil)
}

type dealerInquiryRequest struct {
	MaterialID        *uuid.UUID `json:"material_id"`
	Subject           string     `json:"subject"`
	Message           string     `json:"message"`
	Quantity          string     `json:"quantity"`
	ContactPreference string     `json:"contact_preference"`
}

// CreateInquiry POST /api/v1/dealers/:dealer_id/inquiries
func (h *Handlers) CreateInquiry(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	dealerID, err := uuid.Parse(c.Params("dealer_id"))
	if err != nil {
		return response.Error(c, "Invalid dealer_id format", fiber.StatusBadRequest, nil)
	}
	var req dealerInquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	inquiry, err := h.Inquiries.CreateDealer(c.Context(), inqsvc.CreateDealerInput{
		DealerID:          dealerID,
		UserID:            uid,
		MaterialID:        req.MaterialID,
		Subject:           req.Subject,
		Message:           req.Message,
		Quantity:          req.Quantity,
		ContactPreference: req.ContactPreference,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Inquiry sent", inquiry, nil)
}

// ListInbox GET /api/v1/dealers/me/inquiries — the dealer's inbox.
func (h *Handlers) ListInbox(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	profile, err := h.Service.GetDealerByUser(c.Context(), uid)
	if err != nil {
		return response.FromError(c, err)
	}
	inbox, err := h.Inquiries.ListDealerInbox(c.Context(), profile.DealerID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Inquiries fetched successfully", inbox, nil)
}

type respondRequest struct {
	Response string `json:"response"`
}

// RespondInquiry POST /api/v1/dealers/inquiries/:inquiry_id/respond
func (h *Handlers) RespondInquiry(c *fiber.Ctx) error {
	uid, err := actorID(c)
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
	inquiry, err := h.Inquiries.RespondDealer(c.Context(), inquiryID, uid, req.Response)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Response recorded", inquiry, nil)
}

// CloseInquiry POST /api/v1/dealers/inquiries/:inquiry_id/close
func (h *Handlers) CloseInquiry(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	inquiryID, err := uuid.Parse(c.Params("inquiry_id"))
	if err != nil {
		return response.Error(c, "Invalid inquiry_id format", fiber.StatusBadRequest, nil)
	}
	inquiry, err := h.Inquiries.CloseDealer(c.Context(), inquiryID, uid)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Inquiry closed", inquiry, nil)
}
