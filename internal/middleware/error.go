package middleware

import (
	"errors"
	"net/http"

	"dq-index/internal/domain"
	"dq-index/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse represents the standard error response structure.
// Detail repeats Message for clients that read the "detail" field.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Detail  string `json:"detail"`
}

func newErrorResponse(code string, message string, status int) ErrorResponse {
	return ErrorResponse{Code: code, Message: message, Status: status, Detail: message}
}

// ErrorHandler is a centralized error handling middleware
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.Get().With(
			zap.String("path", c.Path()),
			zap.String("request_id", RequestID(c)),
		)

		// Handle domain errors
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := mapDomainErrorToHTTPStatus(domainErr)

			fields := []zap.Field{
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
				zap.Int("status", statusCode),
			}
			if domainErr.Cause != nil {
				fields = append(fields, zap.Error(domainErr.Cause))
			}
			if statusCode >= http.StatusInternalServerError {
				log.Error("Domain error occurred", fields...)
			} else {
				log.Warn("Domain error occurred", fields...)
			}

			return c.Status(statusCode).JSON(newErrorResponse(string(domainErr.Code), domainErr.Message, statusCode))
		}

		// Handle fiber errors
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			log.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(newErrorResponse("HTTP_ERROR", fiberErr.Message, fiberErr.Code))
		}

		// Handle unknown errors
		log.Error("Unknown error occurred", zap.Error(err))

		return c.Status(http.StatusInternalServerError).JSON(
			newErrorResponse(string(domain.CodeInternal), "Internal server error", http.StatusInternalServerError))
	}
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
