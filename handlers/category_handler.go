package handlers

import (
	"campus_essentials/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	catalog *service.CatalogService
}

func NewCategoryHandler(catalog *service.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

// GetCategories - GET /api/categories
func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	res, err := h.catalog.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(res)
}
