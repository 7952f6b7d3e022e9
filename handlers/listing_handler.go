package handlers

import (
	"strings"

	"campus_essentials/internal/service"
	"campus_essentials/middleware"
	"campus_essentials/models"
	apperr "campus_essentials/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type ListingHandler struct {
	catalog *service.CatalogService
	images  *ImageStore
}

func NewListingHandler(catalog *service.CatalogService, images *ImageStore) *ListingHandler {
	return &ListingHandler{catalog: catalog, images: images}
}

// Browse - GET /api/listings?q=&category=&min=&max=&include_sold=
func (h *ListingHandler) Browse(c *fiber.Ctx) error {
	listings, err := h.catalog.Browse(c.UserContext(), service.BrowseInput{
		Query:       c.Query("q"),
		Category:    c.Query("category"),
		Min:         c.Query("min"),
		Max:         c.Query("max"),
		IncludeSold: c.QueryBool("include_sold", false),
	})
	if err != nil {
		return err
	}
	return c.JSON(listings)
}

// Get - GET /api/listings/:id
func (h *ListingHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	listing, err := h.catalog.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(listing)
}

// Mine - GET /api/listings/mine
func (h *ListingHandler) Mine(c *fiber.Ctx) error {
	listings, err := h.catalog.Mine(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(listings)
}

// Create - POST /api/listings
//
// Accepts multipart form fields with up to five "images" files, or a JSON
// body whose images are URLs from /api/uploads.
func (h *ListingHandler) Create(c *fiber.Ctx) error {
	var in service.CreateListingInput
	var saved []string

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return apperr.InvalidArg("invalid multipart form")
		}
		in = service.CreateListingInput{
			Title:       formValue(form.Value, "title"),
			Description: formValue(form.Value, "description"),
			Price:       formValue(form.Value, "price"),
			Category:    formValue(form.Value, "category"),
			Condition:   formValue(form.Value, "condition"),
			Campus:      formValue(form.Value, "campus"),
		}

		files := form.File["images"]
		if len(files) > models.MaxListingImages {
			return apperr.ErrTooManyImages
		}
		for _, fh := range files {
			url, err := h.images.Save(c, fh, "listings")
			if err != nil {
				h.images.Remove(saved...)
				return err
			}
			saved = append(saved, url)
		}
		in.Images = saved
	} else if err := parseBody(c, &in); err != nil {
		return err
	}

	listing, err := h.catalog.Create(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		h.images.Remove(saved...)
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// MarkSold - PATCH /api/listings/:id/mark-sold
func (h *ListingHandler) MarkSold(c *fiber.Ctx) error {
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

func formValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
