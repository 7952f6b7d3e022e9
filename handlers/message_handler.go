package handlers

import (
	"campus_essentials/internal/service"
	"campus_essentials/middleware"

	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	conversations *service.ConversationService
	messages      *service.MessageService
}

func NewMessageHandler(conversations *service.ConversationService, messages *service.MessageService) *MessageHandler {
	return &MessageHandler{conversations: conversations, messages: messages}
}

// List - GET /api/messages
// The caller's conversations, most recently active first.
func (h *MessageHandler) List(c *fiber.Ctx) error {
	list, err := h.conversations.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Start - POST /api/messages/start
func (h *MessageHandler) Start(c *fiber.Ctx) error {
	var req service.StartConversationInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	conv, created, err := h.conversations.Start(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(conv)
}

// History - GET /api/messages/:conversationId
func (h *MessageHandler) History(c *fiber.Ctx) error {
	id, err := paramID(c, "conversationId")
	if err != nil {
		return err
	}
	msgs, err := h.messages.History(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(msgs)
}

// Meta - GET /api/messages/:conversationId/meta
func (h *MessageHandler) Meta(c *fiber.Ctx) error {
	id, err := paramID(c, "conversationId")
	if err != nil {
		return err
	}
	conv, err := h.conversations.Meta(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(conv)
}

// Status - GET /api/messages/:conversationId/status
func (h *MessageHandler) Status(c *fiber.Ctx) error {
	id, err := paramID(c, "conversationId")
	if err != nil {
		return err
	}
	members, err := h.conversations.Status(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"members": members})
}

// Send - POST /api/messages/:conversationId
// The message is stored first; realtime delivery is best effort.
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	id, err := paramID(c, "conversationId")
	if err != nil {
		return err
	}
	var req service.SendMessageInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	msg, err := h.messages.Send(c.UserContext(), middleware.UserID(c), id, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
