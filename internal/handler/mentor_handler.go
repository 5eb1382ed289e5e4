package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-api/internal/repository"
	"github.com/mentorhub/mentorhub-api/internal/service"
	"github.com/mentorhub/mentorhub-api/internal/utils"
)

// MentorHandler wires the mentor surface: dashboard, student views and
// blackmark management.
type MentorHandler struct {
	students service.StudentService
	conduct  service.ConductService
	overview service.OverviewService
	logger   zerolog.Logger
}

// NewMentorHandler constructs the handler.
func NewMentorHandler(students service.StudentService, conduct service.ConductService, overview service.OverviewService, logger zerolog.Logger) *MentorHandler {
	return &MentorHandler{
		students: students,
		conduct:  conduct,
		overview: overview,
		logger:   logger.With().Str("component", "mentor_handler").Logger(),
	}
}

// Register attaches mentor endpoints to the router group.
func (h *MentorHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
	router.Get("/students", h.listStudents)
	router.Get("/student/:id", h.student)
	router.Post("/student/:id/blackmark", h.assignBlackmark)
	router.Delete("/student/:id/blackmark/:blackmarkId", h.removeBlackmark)
}

func (h *MentorHandler) dashboard(c *fiber.Ctx) error {
	dashboard, err := h.overview.MentorDashboard(c.UserContext(), actorFromContext(c))
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *MentorHandler) listStudents(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pageSize")
	}

	listing, err := h.students.List(c.UserContext(), actorFromContext(c), repository.StudentFilter{
		Search:   c.Query("search"),
		SortBy:   c.Query("sortBy"),
		Order:    c.Query("order"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "students retrieved", listing)
}

func (h *MentorHandler) student(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	profile, err := h.students.Profile(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student retrieved", profile)
}

type blackmarkRequest struct {
	Reason   string `json:"reason"`
	Severity string `json:"severity"`
}

func (h *MentorHandler) assignBlackmark(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload blackmarkRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	blackmarks, err := h.conduct.Assign(c.UserContext(), actorFromContext(c), id, payload.Reason, payload.Severity)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "blackmark assigned", fiber.Map{"blackmarks": blackmarks})
}

func (h *MentorHandler) removeBlackmark(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	blackmarks, err := h.conduct.Remove(c.UserContext(), actorFromContext(c), id, c.Params("blackmarkId"))
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "blackmark removed", fiber.Map{"blackmarks": blackmarks})
}
