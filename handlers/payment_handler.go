package handlers

import (
	"strings"

	"campus_essentials/internal/service"
	"campus_essentials/middleware"
	apperr "campus_essentials/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Checkout - POST /api/payments/checkout
func (h *PaymentHandler) Checkout(c *fiber.Ctx) error {
	var req service.CheckoutInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.payments.Checkout(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// GetOrder - GET /api/payments/orders/:id
func (h *PaymentHandler) GetOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.payments.GetOrder(c.UserContext(), caller(c), id)
	if err != nil {
		return err
	}
	return c.JSON(order)
}

type webhookRequest struct {
	ID string `json:"id"`
}

// Webhook - POST /api/payments/webhook
// Only the event id is taken from the body; the event itself is fetched
// back from the provider.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	var req webhookRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.ID) == "" {
		return apperr.InvalidArg("event id is required")
	}

	if err := h.payments.HandleWebhook(c.UserContext(), req.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"received": true})
}
