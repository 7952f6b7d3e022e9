package repository

import (
	"context"

	"campus_essentials/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func memberSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "created_at")
}

func (r *ConversationRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("user_id ASC") }).
		Preload("Members.User", memberSummary).
		Preload("Listing")
}

// GetOrCreate returns the single conversation for the normalized key of
// (a, b, listingID), inserting it and its two member rows when absent. The
// insert is ON CONFLICT DO NOTHING on pair_key so concurrent callers
// converge on one row; the loser re-reads the winner's row.
func (r *ConversationRepository) GetOrCreate(ctx context.Context, a, b uint, listingID *uint) (*models.Conversation, bool, error) {
	key := models.ConversationKey(a, b, listingID)
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv := models.Conversation{PairKey: key, ListingID: listingID}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).Create(&conv)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		members := []models.ConversationMember{
			{ConversationID: conv.ID, UserID: a},
			{ConversationID: conv.ID, UserID: b},
		}
		if err := tx.Create(&members).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, translate(err, "conversationRepo.GetOrCreate")
	}

	conv, err := r.GetByPairKey(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return conv, created, nil
}

func (r *ConversationRepository) GetByPairKey(ctx context.Context, key string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.withDetails(ctx).Where("pair_key = ?", key).First(&conv).Error; err != nil {
		return nil, translate(err, "conversationRepo.GetByPairKey")
	}
	return &conv, nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.withDetails(ctx).First(&conv, id).Error; err != nil {
		return nil, translate(err, "conversationRepo.GetByID")
	}
	return &conv, nil
}

// ListForUser returns one row per conversation the user is in, annotated
// with the other member and the listing, most recent activity first.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID uint) ([]models.ConversationSummary, error) {
	query := `
		SELECT
			c.id, c.listing_id, c.updated_at,
			COALESCE(l.title, '') AS listing_title,
			COALESCE(l.images[1], '') AS listing_image,
			u.id AS other_user_id, u.name AS other_user_name
		FROM conversations c
		JOIN conversation_members cm ON cm.conversation_id = c.id AND cm.user_id = ?
		JOIN conversation_members other ON other.conversation_id = c.id AND other.user_id <> ?
		JOIN users u ON u.id = other.user_id
		LEFT JOIN listings l ON l.id = c.listing_id
		ORDER BY c.updated_at DESC, c.id DESC
	`

	results := []models.ConversationSummary{}
	if err := r.db.WithContext(ctx).Raw(query, userID, userID).Scan(&results).Error; err != nil {
		return nil, translate(err, "conversationRepo.ListForUser")
	}
	return results, nil
}
