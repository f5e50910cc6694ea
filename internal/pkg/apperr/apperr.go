package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a failure for callers and for HTTP status mapping.
type Kind int

const (
	// KindValidation is malformed or out-of-range input; never a system fault.
	KindValidation Kind = iota
	// KindForbidden is self-dealing or an unauthorized role.
	KindForbidden
	// KindInvalidTransition is a state machine violation.
	KindInvalidTransition
	// KindNotFound is a missing referenced entity.
	KindNotFound
	// KindIntegrity is ledger or aggregate divergence; indicates a bug and is
	// escalated, never shown as user-recoverable.
	KindIntegrity
)

// Error is a typed failure carrying entity context for user-facing messages.
type Error struct {
	Kind    Kind
	Message string
	Entity  string
	ID      string
	Field   string
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Entity != "" && e.ID != "" {
		msg = fmt.Sprintf("%s (%s %s)", msg, e.Entity, e.ID)
	} else if e.Entity != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Entity)
	}
	return msg
}

// StatusCode maps the kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindForbidden:
		return fiber.StatusForbidden
	case KindInvalidTransition:
		return fiber.StatusConflict
	case KindNotFound:
		return fiber.StatusNotFound
	case KindIntegrity:
		return fiber.StatusInternalServerError
	}
	return fiber.StatusInternalServerError
}

// Details returns the context map rendered under error.details in responses.
func (e *Error) Details() map[string]interface{} {
	d := map[string]interface{}{}
	if e.Entity != "" {
		d["entity"] = e.Entity
	}
	if e.ID != "" {
		d["id"] = e.ID
	}
	if e.Field != "" {
		d["field"] = e.Field
	}
	return d
}

func Validation(entity, field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...), Entity: entity, Field: field}
}

func Forbidden(entity, id, format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...), Entity: entity, ID: id}
}

func InvalidTransition(entity, id, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...), Entity: entity, ID: id}
}

func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found", Entity: entity, ID: id}
}

func Integrity(entity, id, format string, args ...interface{}) *Error {
	return &Error{Kind: KindIntegrity, Message: fmt.Sprintf(format, args...), Entity: entity, ID: id}
}

// As unwraps err to *Error if possible.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
