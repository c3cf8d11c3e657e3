package serverutils

import (
	"errors"
	"fmt"

	"doc-intel-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts domain errors into the response envelope.
// Controllers return errors as-is; the status mapping lives here in one place.
// Provider and store internals never reach the response body.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		var (
			reqErr  *RequestValidationError
			valErr  dto.ValidationError
			provErr dto.ProviderError
			storErr dto.StoreError
			fibErr  *fiber.Error
		)

		switch {
		case errors.As(err, &reqErr):
			return c.Status(fiber.StatusBadRequest).
				JSON(ErrorResponseWithDetails(fiber.StatusBadRequest, "Validation failed", reqErr.Fields))

		case errors.As(err, &valErr):
			return c.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse(fiber.StatusBadRequest, valErr.Error()))

		case errors.Is(err, dto.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).
				JSON(ErrorResponse(fiber.StatusNotFound, "Session not found"))

		case errors.As(err, &provErr):
			return c.Status(fiber.StatusBadGateway).
				JSON(ErrorResponse(fiber.StatusBadGateway,
					fmt.Sprintf("Upstream %s provider unavailable", provErr.Stage)))

		case errors.As(err, &storErr):
			return c.Status(fiber.StatusServiceUnavailable).
				JSON(ErrorResponse(fiber.StatusServiceUnavailable, "Vector store unavailable"))

		case errors.As(err, &fibErr):
			return c.Status(fibErr.Code).JSON(ErrorResponse(fibErr.Code, fibErr.Message))

		default:
			return c.Status(fiber.StatusInternalServerError).
				JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
		}
	}
}
