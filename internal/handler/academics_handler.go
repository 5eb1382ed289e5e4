package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/service"
	"github.com/mentorhub/mentorhub-api/internal/utils"
)

// AcademicsHandler wires subject and overview HTTP routes.
type AcademicsHandler struct {
	academics service.AcademicService
	overview  service.OverviewService
	logger    zerolog.Logger
}

// NewAcademicsHandler constructs the handler.
func NewAcademicsHandler(academics service.AcademicService, overview service.OverviewService, logger zerolog.Logger) *AcademicsHandler {
	return &AcademicsHandler{
		academics: academics,
		overview:  overview,
		logger:    logger.With().Str("component", "academics_handler").Logger(),
	}
}

// Register attaches academics endpoints to the router group.
func (h *AcademicsHandler) Register(router fiber.Router) {
	router.Post("/subject", h.upsertSubject)
	router.Delete("/subject/:studentId/:subjectId", h.removeSubject)
	router.Get("/student/:studentId", h.studentAcademics)
	router.Get("/overview", h.overviewStats)
}

func (h *AcademicsHandler) upsertSubject(c *fiber.Ctx) error {
	var payload dto.UpsertSubjectRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	academics, err := h.academics.UpsertSubject(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "subject recorded", academics)
}

func (h *AcademicsHandler) removeSubject(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	academics, err := h.academics.RemoveSubject(c.UserContext(), actorFromContext(c), studentID, c.Params("subjectId"))
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "subject removed", academics)
}

func (h *AcademicsHandler) studentAcademics(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	academics, err := h.academics.StudentAcademics(c.UserContext(), actorFromContext(c), studentID)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "academics retrieved", academics)
}

func (h *AcademicsHandler) overviewStats(c *fiber.Ctx) error {
	stats, err := h.overview.Overview(c.UserContext(), actorFromContext(c))
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "overview retrieved", stats)
}
