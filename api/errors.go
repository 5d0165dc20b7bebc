package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pixelready/express-jobly/db"
)

// Error codes
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeDuplicate      = "DUPLICATE"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeUnavailable    = "SERVICE_UNAVAILABLE"
	CodeInternal       = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// HandleError maps a repository error onto a status and error body.
// Duplicates are reported as bad requests. Anything unclassified is a
// storage failure, logged and hidden behind a 500.
func HandleError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case db.IsInvalidRequest(err):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Code:    CodeInvalidRequest,
			Message: messageOf(err, "Invalid request"),
		})
	case db.IsDuplicateKey(err):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Code:    CodeDuplicate,
			Message: messageOf(err, "Duplicate record"),
		})
	case db.IsForeignKeyViolation(err), db.IsCheckViolation(err):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Code:    CodeInvalidRequest,
			Message: "Request violates a data constraint",
		})
	case db.IsNotFound(err):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Code:    CodeNotFound,
			Message: messageOf(err, "Not found"),
		})
	}

	slog.ErrorContext(c.UserContext(), "jobly/api: storage failure",
		"error", err, "method", c.Method(), "path", c.Path())
	return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
		Code:    CodeInternal,
		Message: "Internal server error",
	})
}

// HandleInvalidRequestError replies 400 with msg and optional details.
func HandleInvalidRequestError(c *fiber.Ctx, msg string, details ...interface{}) error {
	resp := ErrorResponse{Code: CodeInvalidRequest, Message: msg}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	return c.Status(http.StatusBadRequest).JSON(resp)
}

// fiberErrorHandler renders errors that escape a handler, such as unmatched
// routes, in the same shape as HandleError.
func fiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := CodeInternal
		switch fe.Code {
		case http.StatusNotFound:
			code = CodeNotFound
		case http.StatusBadRequest:
			code = CodeInvalidRequest
		case http.StatusUnauthorized:
			code = CodeUnauthorized
		}
		return c.Status(fe.Code).JSON(ErrorResponse{Code: code, Message: fe.Message})
	}
	return HandleError(c, err)
}

func messageOf(err error, fallback string) string {
	var dbe *db.DBError
	if errors.As(err, &dbe) && dbe.Message != "" {
		return dbe.Message
	}
	return fallback
}
