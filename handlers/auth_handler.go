package handlers

import (
	"time"

	"campus_essentials/internal/service"
	"campus_essentials/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth         *service.AuthService
	ttl          time.Duration
	secureCookie bool
}

func NewAuthHandler(auth *service.AuthService, ttl time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, ttl: ttl, secureCookie: secureCookie}
}

func (h *AuthHandler) setSession(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Register - POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	h.setSession(c, res.Token, time.Now().Add(h.ttl))
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Login - POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}

	h.setSession(c, res.Token, time.Now().Add(h.ttl))
	return c.JSON(res)
}

// Logout - POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.setSession(c, "", time.Unix(0, 0))
	return c.JSON(fiber.Map{"message": "logged out"})
}

// Me - GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.auth.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}
