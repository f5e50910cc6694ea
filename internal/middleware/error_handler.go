package middleware

import (
	"akrion-backend/internal/pkg/apperr"
	"akrion-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorHandler is the global error handler. Typed domain failures keep their
// status and context; integrity failures are additionally logged and
// escalated since they indicate a bug, not a user mistake.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := apperr.As(err); ok {
		if e.Kind == apperr.KindIntegrity {
			log.Error().
				Str("trace_id", GetTraceID(c)).
				Str("entity", e.Entity).
				Str("id", e.ID).
				Msg("data integrity violation: " + e.Message)
		}
		return response.Error(c, e.Message, e.StatusCode(), e.Details())
	}

	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
		message = fe.Message
	}
	return response.Error(c, message, code, nil)
}
