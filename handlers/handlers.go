package handlers

import (
	"campus_essentials/internal/service"
	"campus_essentials/middleware"
	apperr "campus_essentials/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

func caller(c *fiber.Ctx) service.Caller {
	return service.Caller{UserID: middleware.UserID(c), Role: middleware.Role(c)}
}

// paramID reads a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidArg(name + " must be a positive integer")
	}
	return uint(id), nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.InvalidArg("invalid request body")
	}
	return nil
}
