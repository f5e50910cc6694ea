package rewards

import (
	rewsvc "akrion-backend/internal/application/rewards"
	"akrion-backend/internal/middleware"
	"akrion-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *rewsvc.Service
}

func actorID(c *fiber.Ctx) (uuid.UUID, error) {
	a := middleware.GetActor(c)
	if a == nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return uuid.Parse(a.UserID)
}

// Balance GET /api/v1/rewards/balance
func (h *Handlers) Balance(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	balance, err := h.Service.Balance(c.Context(), uid)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Balance fetched successfully", fiber.Map{"eco_points": balance}, nil)
}

// History GET /api/v1/rewards/history — ledger entries, newest first.
func (h *Handlers) History(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	entries, err := h.Service.History(c.Context(), uid)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "History fetched successfully", entries, nil)
}

type awardRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	EntryType   string    `json:"entry_type"`
	Points      int       `json:"points"`
	Description string    `json:"description"`
	ReferenceID string    `json:"reference_id"`
}

// Award POST /api/v1/rewards/award — admin adjustments (bonus, penalty).
func (h *Handlers) Award(c *fiber.Ctx) error {
	var req awardRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	entry, err := h.Service.Award(c.Context(), rewsvc.AwardInput{
		UserID:      req.UserID,
		EntryType:   req.EntryType,
		Points:      req.Points,
		Description: req.Description,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Points recorded", entry, nil)
}

type spendRequest struct {
	EntryType   string `json:"entry_type"`
	Points      int    `json:"points"`
	Description string `json:"description"`
	ReferenceID string `json:"reference_id"`
}

// Spend POST /api/v1/rewards/spend — the user redeems their own points.
func (h *Handlers) Spend(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req spendRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	// Clients send the amount to redeem; spend entries are negative in the ledger.
	points := req.Points
	if points > 0 {
		points = -points
	}
	entry, err := h.Service.Award(c.Context(), rewsvc.AwardInput{
		UserID:      uid,
		EntryType:   req.EntryType,
		Points:      points,
		Description: req.Description,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Points recorded", entry, nil)
}
