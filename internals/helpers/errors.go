package helper

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

/* ===============================
   Error taxonomy → *fiber.Error
=================================*/

func ErrValidation(msg string) *fiber.Error { return fiber.NewError(fiber.StatusBadRequest, msg) }
func ErrNotFound(msg string) *fiber.Error   { return fiber.NewError(fiber.StatusNotFound, msg) }
func ErrConflict(msg string) *fiber.Error   { return fiber.NewError(fiber.StatusConflict, msg) }
func ErrForbidden(msg string) *fiber.Error  { return fiber.NewError(fiber.StatusForbidden, msg) }
func ErrUnauthorized(msg string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, msg)
}

// ErrStorage logs the underlying cause and returns a generic 500.
// The cause never reaches the client.
func ErrStorage(op string, err error) *fiber.Error {
	log.Printf("[ERROR] %s: %v", op, err)
	return fiber.NewError(fiber.StatusInternalServerError, "Internal server error")
}

// IsHTTPStatus reports whether err carries the given fiber status code.
func IsHTTPStatus(err error, code int) bool {
	var fe *fiber.Error
	return errors.As(err, &fe) && fe.Code == code
}

// FieldErrors is a validation failure with per-field messages.
type FieldErrors struct {
	Message string
	Fields  map[string][]string
}

func (e *FieldErrors) Error() string { return e.Message }

func (e *FieldErrors) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	if e.Message == "" {
		e.Message = msg
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// OrNil returns e only when at least one field failed.
func (e *FieldErrors) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

/* ===============================
   Storage error classification
=================================*/

func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// IsUniqueViolation recognises duplicate-key errors from gorm's translator,
// pgx, lib/pq and sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") || strings.Contains(low, "duplicate key")
}

/* ===============================
   Rendering
=================================*/

// ToJSONErr renders any error produced by a handler or service.
func ToJSONErr(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}
	var fe *FieldErrors
	if errors.As(err, &fe) {
		resp := ErrorResponse{
			Success:   false,
			Message:   fe.Message,
			ErrorCode: "VALIDATION_ERROR",
			Errors:    fe.Fields,
		}
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	// Domain validation errors (model.ValidationError and friends).
	var named interface {
		error
		FieldName() string
	}
	if errors.As(err, &named) {
		msg := named.Error()
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success:   false,
			Message:   msg,
			ErrorCode: "VALIDATION_ERROR",
			Errors:    map[string][]string{named.FieldName(): {msg}},
		})
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return JsonError(c, fiberErr.Code, fiberErr.Message)
	}
	log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	return JsonError(c, fiber.StatusInternalServerError, "Internal server error")
}

// ErrorHandler plugs ToJSONErr into fiber.Config.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return ToJSONErr(c, err)
}
