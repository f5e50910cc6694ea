package users

import (
	"encoding/json"

	usersvc "akrion-backend/internal/application/users"
	"akrion-backend/internal/middleware"
	"akrion-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *usersvc.Service
}

// GetMe GET /api/v1/users/me — full profile of the logged-in user.
func (h *Handlers) GetMe(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	user, err := h.Service.Get(c.Context(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profile fetched successfully", user, nil)
}

// UpdateMe PATCH /api/v1/users/me — update the allowed profile fields.
func (h *Handlers) UpdateMe(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.Update(c.Context(), userID, fields)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profile updated successfully", user, nil)
}
