package serverutils

import (
	"errors"

	"content-advisor-be/pkg/advisory"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps the pipeline error taxonomy onto HTTP status
// codes so controllers can just return errors.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var (
			intentErr     *advisory.IntentParseError
			retrievalErr  *advisory.RetrievalError
			generationErr *advisory.GenerationError
			fiberErr      *fiber.Error
		)

		switch {
		case errors.As(err, &intentErr):
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   "INTENT_PARSE_ERROR",
				"message": intentErr.Reason,
			})
		case errors.As(err, &retrievalErr):
			return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":   "RETRIEVAL_ERROR",
				"message": "content retrieval is unavailable",
			})
		case errors.As(err, &generationErr):
			return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":   "GENERATION_ERROR",
				"message": "advisory generation is unavailable",
			})
		case errors.As(err, &fiberErr):
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"error":   "REQUEST_ERROR",
				"message": fiberErr.Message,
			})
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "INTERNAL_ERROR",
				"message": "unexpected failure",
			})
		}
	}
}
