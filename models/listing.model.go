package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices are rendered as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const MaxListingImages = 5

type Listing struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SellerID    uint            `gorm:"index;not null" json:"seller_id"`
	Title       string          `gorm:"size:120;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;index" json:"price"`
	Category    string          `gorm:"size:50;not null;index" json:"category"`
	Condition   string          `gorm:"size:20" json:"condition,omitempty"`
	Images      pq.StringArray  `gorm:"type:text[]" json:"images"`
	Campus      string          `gorm:"size:100" json:"campus"`
	IsSold      bool            `gorm:"default:false;not null;index" json:"is_sold"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Seller *User `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"seller,omitempty"`
}

// Cover returns the first image URL, or "" when the listing has none.
func (l *Listing) Cover() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}
