package models

import (
	"fmt"
	"time"
)

type Conversation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Sorted member pair plus listing; at most one conversation per key.
	PairKey   string `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ListingID *uint  `gorm:"index" json:"listing_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`

	// Relations
	Members []ConversationMember `gorm:"constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Listing *Listing             `gorm:"foreignKey:ListingID;constraint:OnDelete:SET NULL" json:"listing,omitempty"`
}

// ConversationKey normalizes (a, b, listing) so that the argument order of
// the two users does not matter. A missing listing is encoded as 0.
func ConversationKey(a, b uint, listingID *uint) string {
	if a > b {
		a, b = b, a
	}
	var l uint
	if listingID != nil {
		l = *listingID
	}
	return fmt.Sprintf("%d:%d:%d", a, b, l)
}

func (c *Conversation) HasMember(userID uint) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// OtherMembers returns every member id except userID.
func (c *Conversation) OtherMembers(userID uint) []uint {
	ids := make([]uint, 0, len(c.Members))
	for _, m := range c.Members {
		if m.UserID != userID {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}
