package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/service"
	"github.com/mentorhub/mentorhub-api/internal/utils"
)

// NotificationHandler wires the notification inbox HTTP routes.
type NotificationHandler struct {
	notifications service.NotificationService
	logger        zerolog.Logger
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(notifications service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register attaches notification endpoints to the router group. Creation is
// additionally guarded by the role middleware at the router level.
func (h *NotificationHandler) Register(router fiber.Router, staffOnly fiber.Handler) {
	router.Get("", h.list)
	router.Post("", staffOnly, h.create)
	router.Put("/read-all", h.markAllRead)
	router.Put("/:id/read", h.markRead)
	router.Delete("/:id", h.delete)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	listing, err := h.notifications.List(c.UserContext(), userIDFromContext(c), limit)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "notifications retrieved", listing)
}

func (h *NotificationHandler) create(c *fiber.Ctx) error {
	var payload dto.NotificationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.notifications.Create(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "notifications sent", fiber.Map{"created": created})
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	notification, err := h.notifications.MarkRead(c.UserContext(), id, userIDFromContext(c))
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "notification marked as read", notification)
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	updated, err := h.notifications.MarkAllRead(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "notifications marked as read", fiber.Map{"updated": updated})
}

func (h *NotificationHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.notifications.Delete(c.UserContext(), id, userIDFromContext(c)); err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "notification deleted", fiber.Map{"id": id})
}
