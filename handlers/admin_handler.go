package handlers

import (
	"campus_essentials/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves /api/admin. Routes are gated on the admin role.
type AdminHandler struct {
	auth    *service.AuthService
	catalog *service.CatalogService
}

func NewAdminHandler(auth *service.AuthService, catalog *service.CatalogService) *AdminHandler {
	return &AdminHandler{auth: auth, catalog: catalog}
}

// Users - GET /api/admin/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// Listings - GET /api/admin/listings, sold ones included
func (h *AdminHandler) Listings(c *fiber.Ctx) error {
	listings, err := h.catalog.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(listings)
}

// DeleteListing - DELETE /api/admin/listings/:id
func (h *AdminHandler) DeleteListing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.Delete(c.UserContext(), caller(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkSold - PATCH /api/admin/listings/:id/mark-sold
func (h *AdminHandler) MarkSold(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	listing, err := h.catalog.MarkSold(c.UserContext(), caller(c), id)
	if err != nil {
		return err
	}
	return c.JSON(listing)
}
