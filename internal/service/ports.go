package service

//go:generate mockgen -source=ports.go -destination=mocks/mock_ports.go -package=mocks

import (
	"context"

	"campus_essentials/internal/payment"
	"campus_essentials/internal/repository"
	"campus_essentials/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Search(ctx context.Context, q string, excludeID uint, limit int) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
	Browse(ctx context.Context, f repository.ListingFilter) ([]models.Listing, error)
	ListBySeller(ctx context.Context, sellerID uint) ([]models.Listing, error)
	ListAll(ctx context.Context) ([]models.Listing, error)
	MarkSold(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	Categories(ctx context.Context) ([]models.Category, error)
}

type ConversationRepository interface {
	GetOrCreate(ctx context.Context, a, b uint, listingID *uint) (*models.Conversation, bool, error)
	GetByID(ctx context.Context, id uint) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uint) ([]models.ConversationSummary, error)
}

type MessageRepository interface {
	Append(ctx context.Context, msg *models.Message) error
	ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByChargeID(ctx context.Context, chargeID string) (*models.Order, error)
	AttachCharge(ctx context.Context, id uint, chargeID, authorizeURI string) error
	Transition(ctx context.Context, id uint, to models.OrderStatus, reason string) (bool, error)
}

// Notifier pushes an event to every open channel of a user. It never blocks
// and reports how many channels accepted the event.
type Notifier interface {
	NotifyUser(userID uint, event string, payload any) int
}

type Presence interface {
	IsUserOnline(userID uint) bool
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type PaymentGateway interface {
	CreateCharge(ctx context.Context, req payment.ChargeRequest) (*payment.Charge, error)
	RetrieveEvent(ctx context.Context, eventID string) (*payment.Event, error)
}
