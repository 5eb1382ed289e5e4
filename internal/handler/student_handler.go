package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/repository"
	"github.com/mentorhub/mentorhub-api/internal/service"
	"github.com/mentorhub/mentorhub-api/internal/utils"
)

// StudentHandler wires profile, lifecycle and attendance HTTP routes.
type StudentHandler struct {
	students   service.StudentService
	attendance service.AttendanceService
	logger     zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(students service.StudentService, attendance service.AttendanceService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		students:   students,
		attendance: attendance,
		logger:     logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student endpoints to the router group. Self-service
// routes must precede the parameterised ones so "profile" is not read as an id.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/profile", h.myProfile)
	router.Put("/profile", h.updateMyProfile)
	router.Get("/dashboard", h.dashboard)

	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/attendance/bulk", h.bulkAttendance)

	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/attendance", h.upsertAttendance)
	router.Get("/:id/attendance", h.attendanceHistory)
	router.Delete("/:id/attendance/:attendanceId", h.removeAttendance)
}

func (h *StudentHandler) myProfile(c *fiber.Ctx) error {
	profile, err := h.students.MyProfile(c.UserContext(), actorFromContext(c))
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *StudentHandler) updateMyProfile(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor := actorFromContext(c)
	current, err := h.students.MyProfile(c.UserContext(), actor)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}

	profile, err := h.students.UpdateProfile(c.UserContext(), actor, current.ID, payload)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "profile updated", profile)
}

func (h *StudentHandler) dashboard(c *fiber.Ctx) error {
	dashboard, err := h.students.Dashboard(c.UserContext(), actorFromContext(c))
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
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

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateStudentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.students.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
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

func (h *StudentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.students.UpdateProfile(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student updated", profile)
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.students.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student deleted", fiber.Map{"id": id})
}

func (h *StudentHandler) upsertAttendance(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AttendanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.attendance.Upsert(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "attendance recorded", record)
}

func (h *StudentHandler) bulkAttendance(c *fiber.Ctx) error {
	var payload dto.BulkAttendanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.attendance.Bulk(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "bulk attendance processed", response)
}

func (h *StudentHandler) attendanceHistory(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	overview, err := h.attendance.History(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "attendance retrieved", overview)
}

func (h *StudentHandler) removeAttendance(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.attendance.Remove(c.UserContext(), actorFromContext(c), id, c.Params("attendanceId")); err != nil {
		return mapDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "attendance removed", fiber.Map{"id": c.Params("attendanceId")})
}
