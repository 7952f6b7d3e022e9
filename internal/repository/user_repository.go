package repository

import (
	"context"
	"strings"

	"campus_essentials/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "userRepo.Create")
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "userRepo.GetByID")
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "userRepo.GetByEmail")
	}
	return &user, nil
}

// Search matches name or email, case-insensitively, excluding one user.
func (r *UserRepository) Search(ctx context.Context, q string, excludeID uint, limit int) ([]models.User, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(q)) + "%"

	var users []models.User
	err := r.db.WithContext(ctx).
		Select("id", "name", "email", "hostel", "created_at").
		Where("(name ILIKE ? OR email ILIKE ?) AND id <> ?", pattern, pattern, excludeID).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, translate(err, "userRepo.Search")
	}
	return users, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, translate(err, "userRepo.List")
	}
	return users, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
