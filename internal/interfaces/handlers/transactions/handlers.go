package transactions

import (
	txsvc "akrion-backend/internal/application/transactions"
	"akrion-backend/internal/middleware"
	"akrion-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *txsvc.Service
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

// Get GET /api/v1/transactions/:tx_id
func (h *Handlers) Get(c *fiber.Ctx) error {
	uid, role, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	txID, err := uuid.Parse(c.Params("tx_id"))
	if err != nil {
		return response.Error(c, "Invalid tx_id format", fiber.StatusBadRequest, nil)
	}
	t, err := h.Service.Get(c.Context(), txID, uid, role)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction fetched successfully", t, nil)
}

// ListMine GET /api/v1/transactions?role=buyer|seller
func (h *Handlers) ListMine(c *fiber.Ctx) error {
	uid, _, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	ts, err := h.Service.ListForUser(c.Context(), uid, c.Query("role"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transactions fetched successfully", ts, nil)
}

type advanceRequest struct {
	Status string `json:"status"`
}

// Advance PATCH /api/v1/transactions/:tx_id/status — one forward step.
func (h *Handlers) Advance(c *fiber.Ctx) error {
	uid, role, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	txID, err := uuid.Parse(c.Params("tx_id"))
	if err != nil {
		return response.Error(c, "Invalid tx_id format", fiber.StatusBadRequest, nil)
	}
	var req advanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	t, err := h.Service.Advance(c.Context(), txID, req.Status, uid, role)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction status updated", t, nil)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel POST /api/v1/transactions/:tx_id/cancel
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	uid, role, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	txID, err := uuid.Parse(c.Params("tx_id"))
	if err != nil {
		return response.Error(c, "Invalid tx_id format", fiber.StatusBadRequest, nil)
	}
	var req cancelRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	t, err := h.Service.Cancel(c.Context(), txID, uid, role, req.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction cancelled", t, nil)
}

// Dispute POST /api/v1/transactions/:tx_id/dispute
func (h *Handlers) Dispute(c *fiber.Ctx) error {
	uid, role, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	txID, err := uuid.Parse(c.Params("tx_id"))
	if err != nil {
		return response.Error(c, "Invalid tx_id format", fiber.StatusBadRequest, nil)
	}
	var req cancelRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	t, err := h.Service.Dispute(c.Context(), txID, uid, role, req.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction disputed", t, nil)
}
