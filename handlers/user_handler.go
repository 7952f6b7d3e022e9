package handlers

import (
	"campus_essentials/internal/service"
	"campus_essentials/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	auth *service.AuthService
}

func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// SearchUsers - GET /api/users/search?q=
// Matches name or email and never returns the caller.
func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	users, err := h.auth.SearchUsers(c.UserContext(), middleware.UserID(c), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(users)
}
