package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"datanexus/internal/chain"
	"datanexus/internal/http/middleware"
	"datanexus/internal/model"
	"datanexus/internal/service"
	"datanexus/internal/storage"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeRegistrationError maps a registration outcome to a response. Each
// terminal phase gets its own status and code so clients can distinguish
// "retry with a fix", "wait", and "gone wrong".
func writeRegistrationError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrAlreadyInProgress) {
		return writeError(c, fiber.StatusConflict, "REGISTRATION_IN_PROGRESS", "a registration is already in progress for this wallet")
	}

	pe, ok := service.AsPhaseError(err)
	if !ok {
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	switch pe.Phase {
	case model.PhaseValidationFailed:
		return writeValidationError(c, pe.Err)
	case model.PhaseUploadFailed:
		return writeUploadError(c, pe.Err)
	case model.PhaseOrphaned:
		// The blob is stored and the commit may still land. Not an error
		// status: the registration is pending reconciliation.
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"request_id": requestIDFromCtx(c),
			"status":     "PENDING_RECONCILIATION",
			"message":    "upload succeeded but the ledger commit is not yet confirmed",
		})
	case model.PhaseCommitFailed:
		return writeError(c, fiber.StatusBadGateway, "COMMIT_FAILED", "ledger rejected the registration")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func writeValidationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, chain.ErrNoWallet):
		return writeError(c, fiber.StatusBadRequest, "WALLET_REQUIRED", "connect a wallet before registering")
	case errors.Is(err, chain.ErrNetworkMismatch):
		return writeError(c, fiber.StatusBadRequest, "WRONG_NETWORK", "wallet is connected to the wrong network")
	case errors.Is(err, service.ErrNoFile):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	default:
		return writeError(c, fiber.StatusBadRequest, "INVALID_METADATA", err.Error())
	}
}

func writeUploadError(c *fiber.Ctx, err error) error {
	if ue, ok := storage.AsUploadError(err); ok {
		switch ue.Reason {
		case storage.ReasonTooLarge:
			return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the upload size limit")
		case storage.ReasonRejected:
			return writeError(c, fiber.StatusBadRequest, "UPLOAD_REJECTED", "content store rejected the file")
		}
	}
	return writeError(c, fiber.StatusBadGateway, "STORE_UNAVAILABLE", "content store is unavailable")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
