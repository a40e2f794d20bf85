package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/trendscope/internal/logging"
	"github.com/soltixdb/trendscope/internal/models"
	"github.com/soltixdb/trendscope/internal/services"
)

// StatusForCode maps a service error code to an HTTP status
func StatusForCode(code string) int {
	switch code {
	case services.CodeMalformedRow,
		services.CodeInvalidWindow,
		services.CodeInvalidPredicate,
		services.CodeInvalidRequest:
		return fiber.StatusBadRequest
	case services.CodeSourceFailed:
		return fiber.StatusBadGateway
	case services.CodeSourceNotConfigured:
		return fiber.StatusServiceUnavailable
	case services.CodeCanceled:
		return fiber.StatusRequestTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler returns a custom error handler middleware
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    "ERROR",
			Message: "Internal Server Error",
		}

		var fe *fiber.Error
		var se *services.ServiceError
		switch {
		case errors.As(err, &se):
			code = StatusForCode(se.Code)
			detail.Code = se.Code
			detail.Message = se.Message
			detail.Details = se.Details
		case errors.As(err, &fe):
			code = fe.Code
			detail.Message = fe.Message
		}
		detail.RequestID = logging.RequestID(c.UserContext())

		fields := []interface{}{
			"path", c.Path(),
			"method", c.Method(),
			"status", code,
			"error", err,
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("Request error", fields...)
		} else {
			logger.Warn("Request error", fields...)
		}

		return c.Status(code).JSON(models.ErrorResponse{Error: detail})
	}
}
