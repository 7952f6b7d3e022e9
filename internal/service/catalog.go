package service

import (
	"context"
	"log/slog"
	"strings"

	"campus_essentials/internal/repository"
	"campus_essentials/models"
	apperr "campus_essentials/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type BrowseInput struct {
	Query       string
	Category    string
	Min         string
	Max         string
	IncludeSold bool
}

type CreateListingInput struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Description string   `json:"description" validate:"max=5000"`
	Price       string   `json:"price" validate:"required"`
	Category    string   `json:"category" validate:"required,category"`
	Condition   string   `json:"condition" validate:"omitempty,condition"`
	Campus      string   `json:"campus" validate:"max=100"`
	Images      []string `json:"images" validate:"max=5,dive,required"`
}

type CategoriesResult struct {
	Categories []models.Category `json:"categories"`
	Conditions []string          `json:"conditions"`
}

type CatalogService struct {
	listings      ListingRepository
	events        EventPublisher
	validate      *validator.Validate
	defaultCampus string
	log           *slog.Logger
}

// NewCatalogService builds the listing catalog. events may be nil.
func NewCatalogService(listings ListingRepository, events EventPublisher, defaultCampus string, log *slog.Logger) *CatalogService {
	return &CatalogService{
		listings:      listings,
		events:        events,
		validate:      newValidator(),
		defaultCampus: defaultCampus,
		log:           log,
	}
}

// prices are stored as numeric(12,2)
var priceCeiling = decimal.New(1, 10)

func parsePrice(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() || d.GreaterThanOrEqual(priceCeiling) {
		return nil, apperr.ErrInvalidPrice
	}
	return &d, nil
}

func (s *CatalogService) Browse(ctx context.Context, in BrowseInput) ([]models.Listing, error) {
	minPrice, err := parsePrice(in.Min)
	if err != nil {
		return nil, err
	}
	maxPrice, err := parsePrice(in.Max)
	if err != nil {
		return nil, err
	}
	if in.Category != "" && !models.IsValidCategory(in.Category) {
		return nil, apperr.InvalidArg("category is not a recognised value")
	}

	listings, err := s.listings.Browse(ctx, repository.ListingFilter{
		Query:       in.Query,
		Category:    in.Category,
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		IncludeSold: in.IncludeSold,
		Limit:       repository.MaxBrowseResults,
	})
	if err != nil {
		return nil, storeError(err, apperr.ErrListingNotFound, "could not browse listings")
	}
	return listings, nil
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, apperr.ErrListingNotFound, "could not load listing")
	}
	return listing, nil
}

func (s *CatalogService) Mine(ctx context.Context, sellerID uint) ([]models.Listing, error) {
	listings, err := s.listings.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, storeError(err, apperr.ErrListingNotFound, "could not load listings")
	}
	return listings, nil
}

func (s *CatalogService) ListAll(ctx context.Context) ([]models.Listing, error) {
	listings, err := s.listings.ListAll(ctx)
	if err != nil {
		return nil, storeError(err, apperr.ErrListingNotFound, "could not load listings")
	}
	return listings, nil
}

func (s *CatalogService) Create(ctx context.Context, sellerID uint, in CreateListingInput) (*models.Listing, error) {
	in.Title = strings.TrimSpace(in.Title)
	if len(in.Images) > models.MaxListingImages {
		return nil, apperr.ErrTooManyImages
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, apperr.ErrInvalidPrice
	}

	campus := strings.TrimSpace(in.Campus)
	if campus == "" {
		campus = s.defaultCampus
	}

	listing := &models.Listing{
		SellerID:    sellerID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Price:       price.Round(2),
		Category:    in.Category,
		Condition:   in.Condition,
		Images:      in.Images,
		Campus:      campus,
	}
	if listing.Images == nil {
		listing.Images = []string{}
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, storeError(err, apperr.ErrUserNotFound, "could not create listing")
	}

	s.log.Info("listing created", "listing_id", listing.ID, "seller_id", sellerID)
	return listing, nil
}

// MarkSold flips the sold flag. Only the seller or an administrator may do
// so; repeating it is harmless.
func (s *CatalogService) MarkSold(ctx context.Context, caller Caller, id uint) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, apperr.ErrListingNotFound, "could not load listing")
	}
	if listing.SellerID != caller.UserID && !caller.IsAdmin() {
		return nil, apperr.ErrNotOwner
	}
	if listing.IsSold {
		return listing, nil
	}

	if err := s.listings.MarkSold(ctx, id); err != nil {
		return nil, storeError(err, apperr.ErrListingNotFound, "could not mark listing sold")
	}
	listing.IsSold = true

	s.publish(ctx, "listing.sold", map[string]any{"listing_id": id, "by": caller.UserID})
	return listing, nil
}

func (s *CatalogService) Delete(ctx context.Context, caller Caller, id uint) error {
	if !caller.IsAdmin() {
		return apperr.Forbidden("administrator role required")
	}
	if err := s.listings.Delete(ctx, id); err != nil {
		return storeError(err, apperr.ErrListingNotFound, "could not delete listing")
	}
	s.log.Info("listing deleted", "listing_id", id, "admin_id", caller.UserID)
	return nil
}

func (s *CatalogService) Categories(ctx context.Context) (*CategoriesResult, error) {
	categories, err := s.listings.Categories(ctx)
	if err != nil {
		return nil, storeError(err, apperr.NotFound("categories not found"), "could not fetch categories")
	}
	return &CategoriesResult{Categories: categories, Conditions: models.ListingConditions}, nil
}

func (s *CatalogService) publish(ctx context.Context, key string, v any) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(ctx, key, v); err != nil {
		s.log.Warn("publish event failed", "key", key, "err", err)
	}
}
