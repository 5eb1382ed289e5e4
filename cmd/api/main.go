package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-api/internal/config"
	"github.com/mentorhub/mentorhub-api/internal/database"
	"github.com/mentorhub/mentorhub-api/internal/events"
	"github.com/mentorhub/mentorhub-api/internal/handler"
	"github.com/mentorhub/mentorhub-api/internal/middleware"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/repository"
	"github.com/mentorhub/mentorhub-api/internal/router"
	"github.com/mentorhub/mentorhub-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Student{}, &models.Notification{}, &models.Message{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	bus := events.NewBus(logger)
	service.NewAdminNotifier(userRepo, notificationRepo, logger).Register(bus)
	service.NewStudentMessenger(studentRepo, messageRepo, logger).Register(bus)
	if forwarder := events.NewNATSForwarder(natsConn, cfg.NATSSubject, logger); forwarder != nil {
		bus.SubscribeAll(forwarder.Handle)
	}

	authService := service.NewAuthService(userRepo, studentRepo, bus, validate, cfg.JWTSecret, cfg.AdminSecret, cfg.TokenTTL, logger)
	studentService := service.NewStudentService(studentRepo, userRepo, bus, validate, logger)
	academicService := service.NewAcademicService(studentRepo, bus, validate, logger)
	attendanceService := service.NewAttendanceService(studentRepo, bus, validate, logger)
	conductService := service.NewConductService(studentRepo, bus, logger)
	feedbackService := service.NewFeedbackService(studentRepo, userRepo, validate, logger)
	overviewService := service.NewOverviewService(studentRepo, redisClient, cfg.OverviewCacheTTL, bus, logger)
	notificationService := service.NewNotificationService(notificationRepo, validate, logger)
	messageService := service.NewMessageService(messageRepo, userRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		StudentHandler:      handler.NewStudentHandler(studentService, attendanceService, logger),
		AcademicsHandler:    handler.NewAcademicsHandler(academicService, overviewService, logger),
		MentorHandler:       handler.NewMentorHandler(studentService, conductService, overviewService, logger),
		FeedbackHandler:     handler.NewFeedbackHandler(feedbackService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		MessageHandler:      handler.NewMessageHandler(messageService, logger),
		UserHandler:         handler.NewUserHandler(userRepo, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
