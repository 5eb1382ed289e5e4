package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mentorhub/mentorhub-api/internal/config"
	"github.com/mentorhub/mentorhub-api/internal/handler"
	"github.com/mentorhub/mentorhub-api/internal/middleware"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	StudentHandler      *handler.StudentHandler
	AcademicsHandler    *handler.AcademicsHandler
	MentorHandler       *handler.MentorHandler
	FeedbackHandler     *handler.FeedbackHandler
	NotificationHandler *handler.NotificationHandler
	MessageHandler      *handler.MessageHandler
	UserHandler         *handler.UserHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	staffOnly := middleware.RequireRole(string(models.RoleMentor), string(models.RoleAdmin))

	if deps.AuthHandler != nil {
		authPublic := app.Group("/api/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.RegisterPublic(authPublic)

		authProtected := app.Group("/api/auth", jwtMiddleware)
		deps.AuthHandler.RegisterProtected(authProtected)
	}

	if deps.StudentHandler != nil {
		students := app.Group("/api/students", jwtMiddleware)
		deps.StudentHandler.Register(students)
	}

	if deps.AcademicsHandler != nil {
		academics := app.Group("/api/academics", jwtMiddleware)
		deps.AcademicsHandler.Register(academics)
	}

	if deps.MentorHandler != nil {
		mentors := app.Group("/api/mentors", jwtMiddleware, staffOnly)
		deps.MentorHandler.Register(mentors)
	}

	if deps.FeedbackHandler != nil {
		ai := app.Group("/api/ai", jwtMiddleware)
		deps.FeedbackHandler.Register(ai)
	}

	if deps.NotificationHandler != nil {
		notifications := app.Group("/api/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications, staffOnly)
	}

	if deps.MessageHandler != nil {
		messages := app.Group("/api/messages", jwtMiddleware)
		deps.MessageHandler.Register(messages)
	}

	if deps.UserHandler != nil {
		users := app.Group("/api/users", jwtMiddleware)
		deps.UserHandler.Register(users)
	}
}
