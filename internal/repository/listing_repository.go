package repository

import (
	"context"
	"strings"

	"campus_essentials/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const MaxBrowseResults = 50

type ListingFilter struct {
	Query       string
	Category    string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	IncludeSold bool
	Limit       int
}

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func sellerSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "hostel", "phone", "created_at")
}

func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	return translate(r.db.WithContext(ctx).Omit("Seller").Create(listing).Error, "listingRepo.Create")
}

func (r *ListingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).Preload("Seller", sellerSummary).First(&listing, id).Error; err != nil {
		return nil, translate(err, "listingRepo.GetByID")
	}
	return &listing, nil
}

// Browse returns listings newest first. Sold listings are skipped unless
// the filter asks for them.
func (r *ListingRepository) Browse(ctx context.Context, f ListingFilter) ([]models.Listing, error) {
	query := r.db.WithContext(ctx).Preload("Seller", sellerSummary)

	if !f.IncludeSold {
		query = query.Where("is_sold = ?", false)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		query = query.Where("(title ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}

	limit := f.Limit
	if limit <= 0 || limit > MaxBrowseResults {
		limit = MaxBrowseResults
	}

	var listings []models.Listing
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&listings).Error; err != nil {
		return nil, translate(err, "listingRepo.Browse")
	}
	return listings, nil
}

func (r *ListingRepository) ListBySeller(ctx context.Context, sellerID uint) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC, id DESC").
		Find(&listings).Error
	if err != nil {
		return nil, translate(err, "listingRepo.ListBySeller")
	}
	return listings, nil
}

func (r *ListingRepository) ListAll(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Preload("Seller", sellerSummary).
		Order("created_at DESC, id DESC").
		Find(&listings).Error
	if err != nil {
		return nil, translate(err, "listingRepo.ListAll")
	}
	return listings, nil
}

// MarkSold is idempotent; a listing that is already sold stays sold.
func (r *ListingRepository) MarkSold(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Update("is_sold", true)
	if res.Error != nil {
		return translate(res.Error, "listingRepo.MarkSold")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Listing{}, id)
	if res.Error != nil {
		return translate(res.Error, "listingRepo.Delete")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, translate(err, "listingRepo.Categories")
	}
	return categories, nil
}
