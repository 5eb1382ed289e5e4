package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/service"
	"github.com/mentorhub/mentorhub-api/internal/utils"
)

// FeedbackHandler wires the mentor feedback HTTP routes.
type FeedbackHandler struct {
	feedback service.FeedbackService
	logger   zerolog.Logger
}

// NewFeedbackHandler constructs the handler.
func NewFeedbackHandler(feedback service.FeedbackService, logger zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedback: feedback,
		logger:   logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// Register attaches feedback endpoints to the router group.
func (h *FeedbackHandler) Register(router fiber.Router) {
	router.Get("/recent-feedback", h.recent)
	router.Post("/feedback/:studentId", h.append)
	router.Get("/feedback/:studentId", h.latest)
	router.Get("/feedback-history/:studentId", h.history)
}

func (h *FeedbackHandler) append(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.FeedbackRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entry, err := h.feedback.Append(c.UserContext(), actorFromContext(c), studentID, payload)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "feedback recorded", entry)
}

func (h *FeedbackHandler) latest(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entry, err := h.feedback.Latest(c.UserContext(), actorFromContext(c), studentID)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "latest feedback retrieved", fiber.Map{"feedback": entry})
}

func (h *FeedbackHandler) history(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	history, err := h.feedback.History(c.UserContext(), actorFromContext(c), studentID)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "feedback history retrieved", history)
}

func (h *FeedbackHandler) recent(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	items, err := h.feedback.RecentByMentor(c.UserContext(), actorFromContext(c), limit)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "recent feedback retrieved", fiber.Map{"items": items})
}
