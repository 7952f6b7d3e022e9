package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"campus_essentials/internal/payment"
	"campus_essentials/internal/repository"
	"campus_essentials/models"
	apperr "campus_essentials/pkg/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type CheckoutInput struct {
	ListingID  uint   `json:"listing_id"`
	CardToken  string `json:"card_token"`
	SourceType string `json:"source_type"`
	ReturnURI  string `json:"return_uri"`
}

type PaymentService struct {
	orders   OrderRepository
	listings ListingRepository
	gateway  PaymentGateway
	events   EventPublisher
	currency string
	log      *slog.Logger
}

// NewPaymentService wires checkout. events may be nil.
func NewPaymentService(orders OrderRepository, listings ListingRepository, gateway PaymentGateway, events EventPublisher, currency string, log *slog.Logger) *PaymentService {
	return &PaymentService{
		orders:   orders,
		listings: listings,
		gateway:  gateway,
		events:   events,
		currency: strings.ToLower(currency),
		log:      log,
	}
}

func providerError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.FromContext("payment provider timed out", err)
	}
	return apperr.Upstream("payment provider request failed", err)
}

// Checkout opens an order for a listing and creates the provider charge.
// Card charges usually settle immediately; redirect based sources stay
// created until the provider's webhook reports the outcome.
func (s *PaymentService) Checkout(ctx context.Context, buyerID uint, in CheckoutInput) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "PaymentService.Checkout", trace.WithAttributes(
		attribute.Int64("listing.id", int64(in.ListingID)),
		attribute.Int64("user.id", int64(buyerID)),
	))
	defer span.End()

	if in.ListingID == 0 {
		return nil, apperr.InvalidArg("listing_id is required")
	}
	if in.CardToken == "" && in.SourceType == "" {
		return nil, apperr.InvalidArg("card_token or source_type is required")
	}

	listing, err := s.listings.GetByID(ctx, in.ListingID)
	if err != nil {
		return nil, storeError(err, apperr.ErrListingNotFound, "could not load listing")
	}
	if listing.IsSold {
		return nil, apperr.ErrListingSold
	}
	if listing.SellerID == buyerID {
		return nil, apperr.ErrOwnListing
	}
	amount := listing.Price.Mul(decimal.NewFromInt(100)).IntPart()
	if amount <= 0 {
		return nil, apperr.ErrNothingToCharge
	}

	order := &models.Order{
		Reference: uuid.New(),
		ListingID: listing.ID,
		BuyerID:   buyerID,
		Amount:    listing.Price,
		Currency:  s.currency,
		Status:    models.OrderCreated,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, storeError(err, apperr.ErrListingNotFound, "could not create order")
	}

	charge, err := s.gateway.CreateCharge(ctx, payment.ChargeRequest{
		Reference:   order.Reference.String(),
		Amount:      amount,
		Currency:    s.currency,
		CardToken:   in.CardToken,
		SourceType:  in.SourceType,
		ReturnURI:   in.ReturnURI,
		Description: listing.Title,
	})
	if err != nil {
		span.RecordError(err)
		s.log.Error("create charge failed", "order_id", order.ID, "err", err)
		// The order can never complete without a charge.
		if _, terr := s.orders.Transition(context.WithoutCancel(ctx), order.ID, models.OrderFailed, "create_charge_error"); terr != nil {
			s.log.Error("mark order failed", "order_id", order.ID, "err", terr)
		}
		return nil, providerError(err)
	}

	if err := s.orders.AttachCharge(ctx, order.ID, charge.ID, charge.AuthorizeURI); err != nil {
		return nil, storeError(err, apperr.ErrOrderNotFound, "could not record charge")
	}
	if err := s.apply(ctx, order, charge); err != nil {
		return nil, err
	}

	updated, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, storeError(err, apperr.ErrOrderNotFound, "could not load order")
	}
	return updated, nil
}

// HandleWebhook re-fetches the event from the provider and applies a
// completed charge to its order. Unknown events and charges are ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, eventID string) error {
	if strings.TrimSpace(eventID) == "" {
		return apperr.InvalidArg("event id is required")
	}

	ev, err := s.gateway.RetrieveEvent(ctx, eventID)
	if err != nil {
		s.log.Warn("retrieve event failed", "event_id", eventID, "err", err)
		return apperr.Wrap(apperr.CodeUnauthenticated, "event could not be verified", err)
	}
	if ev.Key != payment.EventChargeComplete || ev.Charge == nil {
		s.log.Debug("webhook event ignored", "event_id", eventID, "key", ev.Key)
		return nil
	}

	order, err := s.orders.GetByChargeID(ctx, ev.Charge.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("webhook for unknown charge", "charge_id", ev.Charge.ID)
			return nil
		}
		return storeError(err, apperr.ErrOrderNotFound, "could not load order")
	}
	return s.apply(ctx, order, ev.Charge)
}

func (s *PaymentService) apply(ctx context.Context, order *models.Order, charge *payment.Charge) error {
	var to models.OrderStatus
	switch charge.Status {
	case payment.StatusSuccessful:
		to = models.OrderPaid
	case payment.StatusFailed:
		to = models.OrderFailed
	default:
		return nil
	}

	changed, err := s.orders.Transition(ctx, order.ID, to, charge.FailureCode)
	if err != nil {
		return storeError(err, apperr.ErrOrderNotFound, "could not update order")
	}
	if !changed {
		return nil
	}

	s.log.Info("order settled", "order_id", order.ID, "status", to, "charge_id", charge.ID)
	evt := map[string]any{
		"order_id":    order.ID,
		"listing_id":  order.ListingID,
		"reference":   order.Reference.String(),
		"charge_id":   charge.ID,
		"amount":      charge.Amount,
		"currency":    charge.Currency,
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
	}
	if to == models.OrderPaid {
		s.publish(ctx, "order.paid", evt)
		s.publish(ctx, "listing.sold", map[string]any{"listing_id": order.ListingID, "order_id": order.ID})
	} else {
		evt["reason"] = charge.FailureCode
		s.publish(ctx, "order.failed", evt)
	}
	return nil
}

func (s *PaymentService) GetOrder(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, apperr.ErrOrderNotFound, "could not load order")
	}
	if order.BuyerID != caller.UserID && !caller.IsAdmin() {
		return nil, apperr.Forbidden("you cannot view this order")
	}
	return order, nil
}

func (s *PaymentService) publish(ctx context.Context, key string, v any) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(ctx, key, v); err != nil {
		s.log.Warn("publish event failed", "key", key, "err", err)
	}
}
