package config

import (
	"context"
	"errors"
	"log/slog"

	"campus_essentials/models"
	"campus_essentials/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func SeedCategories(db *gorm.DB, log *slog.Logger) error {
	categories := make([]models.Category, 0, len(models.ListingCategories))
	for _, name := range models.ListingCategories {
		categories = append(categories, models.Category{Name: name, Slug: models.Slugify(name)})
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		log.Error("failed to seed categories", "err", err)
		return err
	}
	return nil
}

// SeedDemoData inserts an admin, two students and a few listings. Existing
// users are left untouched.
func SeedDemoData(ctx context.Context, db *gorm.DB, campus string, log *slog.Logger) error {
	log.Info("seeding demo data")

	password, err := utils.HashPassword(ctx, "password123")
	if err != nil {
		return err
	}

	users := []models.User{
		{Name: "Campus Admin", Email: "admin@campus.edu", Password: password, Role: models.RoleAdmin},
		{Name: "Asha Verma", Email: "asha@campus.edu", Password: password, Hostel: "Hall 5", Phone: "9000000001", Role: models.RoleUser},
		{Name: "Rahul Singh", Email: "rahul@campus.edu", Password: password, Hostel: "Hall 3", Phone: "9000000002", Role: models.RoleUser},
	}

	for i := range users {
		var existing models.User
		err := db.WithContext(ctx).Where("email = ?", users[i].Email).First(&existing).Error
		switch {
		case err == nil:
			users[i] = existing
			log.Info("user already exists", "email", existing.Email)
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.WithContext(ctx).Create(&users[i]).Error; err != nil {
				log.Error("failed to seed user", "email", users[i].Email, "err", err)
				return err
			}
			log.Info("user seeded", "email", users[i].Email, "id", users[i].ID)
		default:
			return err
		}
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.Listing{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	listings := []models.Listing{
		{SellerID: users[1].ID, Title: "Engineering Mathematics, 10th ed.", Description: "Kreyszig, lightly highlighted", Price: decimal.NewFromInt(350), Category: "Books", Condition: "Good", Campus: campus},
		{SellerID: users[1].ID, Title: "Scientific calculator", Description: "Casio fx-991ES", Price: decimal.NewFromInt(500), Category: "Electronics", Condition: "Like New", Campus: campus},
		{SellerID: users[2].ID, Title: "Table lamp", Description: "LED, warm white", Price: decimal.NewFromInt(250), Category: "Hostel", Condition: "Fair", Campus: campus},
	}
	if err := db.WithContext(ctx).Create(&listings).Error; err != nil {
		log.Error("failed to seed listings", "err", err)
		return err
	}

	log.Info("seeding complete", "users", len(users), "listings", len(listings))
	return nil
}
