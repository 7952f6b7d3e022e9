package middleware

import (
	"strings"

	apperr "campus_essentials/pkg/errors"
	"campus_essentials/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	// CookieName holds the session token for browser clients.
	CookieName = "token"

	localUserID = "user_id"
	localRole   = "role"
	localEmail  = "email"
)

// TokenSource extracts a raw session token from a request, or "".
type TokenSource func(c *fiber.Ctx) string

func FromHeader(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func FromCookie(c *fiber.Ctx) string { return c.Cookies(CookieName) }

// FromQuery reads ?token=, for clients that cannot set headers on a
// websocket upgrade.
func FromQuery(c *fiber.Ctx) string { return c.Query("token") }

// RequireAuth verifies the session token and stores the caller's identity in
// the request locals. Without explicit sources the bearer header is tried
// first, then the cookie.
func RequireAuth(tokens *utils.TokenManager, sources ...TokenSource) fiber.Handler {
	if len(sources) == 0 {
		sources = []TokenSource{FromHeader, FromCookie}
	}
	return func(c *fiber.Ctx) error {
		var raw string
		for _, src := range sources {
			if raw = src(c); raw != "" {
				break
			}
		}
		if raw == "" {
			return apperr.Unauthorized("authentication required")
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			return apperr.Unauthorized("invalid or expired token")
		}

		c.Locals(localUserID, claims.UserID)
		c.Locals(localRole, claims.Role)
		c.Locals(localEmail, claims.Email)
		return c.Next()
	}
}

// RequireRole lets the request through only when the caller has one of roles.
// It must run after RequireAuth.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return apperr.Forbidden("insufficient role")
	}
}

// UserID returns the authenticated user id, or 0 outside RequireAuth.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localUserID).(uint)
	return id
}

func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(localRole).(string)
	return role
}

func Email(c *fiber.Ctx) string {
	email, _ := c.Locals(localEmail).(string)
	return email
}
