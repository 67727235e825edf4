package serverutils

import (
	"errors"
	"log"

	"ai-shopassist-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbled out of controllers into the
// uniform response envelope. Validation errors become 400 with field details,
// feed limit errors become 413 with the cap, fiber errors keep their status,
// anything else is a logged 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var verr *ValidationError
		if errors.As(err, &verr) {
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponseWithData(fiber.StatusBadRequest, "Validation failed", verr.Fields))
		}

		var lerr *dto.FeedLimitError
		if errors.As(err, &lerr) {
			return ctx.Status(fiber.StatusRequestEntityTooLarge).
				JSON(ErrorResponseWithData(fiber.StatusRequestEntityTooLarge, lerr.Error(), lerr))
		}

		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			return ctx.Status(ferr.Code).JSON(ErrorResponse(ferr.Code, ferr.Message))
		}

		log.Printf("[ERROR] Unhandled error on %s %s: %v", ctx.Method(), ctx.Path(), err)
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
