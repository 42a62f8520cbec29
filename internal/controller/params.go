package controller

import (
	"strconv"

	"wiki-chatbot-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

func paramID(ctx *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation(name, "must be a positive integer")
	}
	return id, nil
}

// userID is only valid behind JwtMiddleware.
func userID(ctx *fiber.Ctx) int64 {
	id, _ := ctx.Locals("user_id").(int64)
	return id
}

func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		return apperror.Validation("body", "malformed request body")
	}
	return nil
}
