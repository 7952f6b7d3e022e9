package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderCreated OrderStatus = "created"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Reference uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"reference"`
	ListingID uint      `gorm:"index;not null" json:"listing_id"`
	BuyerID   uint      `gorm:"index;not null" json:"buyer_id"`

	Amount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency string          `gorm:"size:8;not null" json:"currency"`

	// Provider side
	ProviderChargeID string `gorm:"size:64;index" json:"provider_charge_id,omitempty"`
	AuthorizeURI     string `gorm:"type:text" json:"authorize_uri,omitempty"`

	Status        OrderStatus `gorm:"size:16;not null;default:'created';index" json:"status"`
	FailureReason string      `gorm:"size:255" json:"failure_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Listing *Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"listing,omitempty"`
	Buyer   *User    `gorm:"foreignKey:BuyerID;constraint:OnDelete:CASCADE" json:"-"`
}
