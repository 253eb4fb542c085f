package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/pkg/logger"
)

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(dto.Envelope{Success: true, Data: data})
}

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.Envelope{Error: &dto.ErrorResponse{Code: code, Message: message}})
}

// statusFor traduce la clase del error de dominio a código HTTP.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindState, domain.KindConcurrency:
		return fiber.StatusConflict
	case domain.KindUnknown:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// failErr responde con el código y mensaje del error. Los internos se registran y no exponen detalle.
func failErr(c *fiber.Ctx, log *logger.Logger, err error) error {
	kind, code, msg := domain.Describe(err)
	status := statusFor(kind)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error interno")
	}
	return fail(c, status, code, msg)
}

func invalidBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, domain.CodeValidation, "cuerpo inválido")
}
