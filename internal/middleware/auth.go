package middleware

import (
	"akrion-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard
// error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// Actor is the authenticated identity handlers pass into the services.
type Actor struct {
	UserID   string
	Username string
	Role     string
}

// GetActor extracts the session user into an Actor; nil if not logged in or
// malformed.
func GetActor(c *fiber.Ctx) *Actor {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return nil
	}
	id, _ := m["user_id"].(string)
	if id == "" {
		return nil
	}
	username, _ := m["username"].(string)
	role, _ := m["role"].(string)
	return &Actor{UserID: id, Username: username, Role: role}
}
