package handlers

import (
	"errors"
	"fmt"

	"eartalk/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// errorStatus maps service errors to HTTP statuses. The first match wins.
var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrInvalidInput, fiber.StatusBadRequest},
	{services.ErrDuplicateIdentity, fiber.StatusBadRequest},
	{services.ErrInvalidCredentials, fiber.StatusBadRequest},
	{services.ErrUnauthenticated, fiber.StatusForbidden},
	{services.ErrNotFound, fiber.StatusNotFound},
	{services.ErrUpstreamProcessingFailed, fiber.StatusInternalServerError},
	{services.ErrDeliveryFailed, fiber.StatusInternalServerError},
}

// respondError writes err as {"message": ...}. Errors outside the service
// taxonomy are logged and answered with a generic 500.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			if m.status >= fiber.StatusInternalServerError {
				log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
			}
			return c.Status(m.status).JSON(fiber.Map{"message": publicMessage(err, m.err)})
		}
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("unexpected error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}

// publicMessage hides upstream details behind the sentinel's text.
func publicMessage(err, sentinel error) string {
	switch sentinel {
	case services.ErrUpstreamProcessingFailed:
		return "audio processing failed"
	case services.ErrDeliveryFailed, services.ErrInvalidCredentials, services.ErrUnauthenticated:
		return sentinel.Error()
	}
	return err.Error()
}

// respondValidation renders validator field errors.
func respondValidation(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

func respondBadBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// ErrorHandler is the app-wide fallback for errors escaping handlers.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
		}
		return respondError(c, log, err)
	}
}
