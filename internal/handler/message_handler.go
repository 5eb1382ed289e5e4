package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/service"
	"github.com/mentorhub/mentorhub-api/internal/utils"
)

// MessageHandler wires the direct messaging HTTP routes.
type MessageHandler struct {
	messages service.MessageService
	logger   zerolog.Logger
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(messages service.MessageService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		logger:   logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register attaches messaging endpoints to the router group.
func (h *MessageHandler) Register(router fiber.Router) {
	router.Get("/conversations", h.conversations)
	router.Get("/with/:userId", h.thread)
	router.Post("", h.send)
	router.Put("/:id/read", h.markRead)
	router.Delete("/:id", h.delete)
}

func (h *MessageHandler) send(c *fiber.Ctx) error {
	var payload dto.SendMessageRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.messages.Send(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", message)
}

func (h *MessageHandler) conversations(c *fiber.Ctx) error {
	conversations, err := h.messages.Conversations(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "conversations retrieved", fiber.Map{"conversations": conversations})
}

func (h *MessageHandler) thread(c *fiber.Ctx) error {
	otherID, err := parseUintParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	thread, err := h.messages.Thread(c.UserContext(), userIDFromContext(c), otherID, limit)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "messages retrieved", thread)
}

func (h *MessageHandler) markRead(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	message, err := h.messages.MarkRead(c.UserContext(), id, userIDFromContext(c))
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "message marked as read", message)
}

func (h *MessageHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.messages.Delete(c.UserContext(), id, userIDFromContext(c)); err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "message deleted", fiber.Map{"id": id})
}
