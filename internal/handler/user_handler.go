package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/repository"
	"github.com/mentorhub/mentorhub-api/internal/utils"
)

// UserHandler exposes account directory lookups, currently only the active
// mentor roster used when students pick a message recipient.
type UserHandler struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(users repository.UserRepository, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches directory endpoints to the router group.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("/mentors", h.mentors)
}

func (h *UserHandler) mentors(c *fiber.Ctx) error {
	mentors, err := h.users.ListByRole(c.UserContext(), models.RoleMentor)
	if err != nil {
		return mapDomainError(c, h.logger, err)
	}

	responses := make([]dto.UserResponse, 0, len(mentors))
	for _, mentor := range mentors {
		responses = append(responses, dto.NewUserResponse(mentor))
	}
	return utils.SendSuccess(c, "mentors retrieved", fiber.Map{"mentors": responses})
}
