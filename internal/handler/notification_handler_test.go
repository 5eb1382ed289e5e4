package handler_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/mentorhub-api/internal/config"
	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/handler"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/repository"
	"github.com/mentorhub/mentorhub-api/internal/router"
	"github.com/mentorhub/mentorhub-api/internal/service"
)

func setupNotificationApp(t *testing.T) (*fiber.App, models.User, models.User) {
	t.Helper()

	db := openTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.Nop()

	userRepo := repository.NewUserRepository(db)
	mentor := models.User{Email: "mentor@example.com", PasswordHash: "x", Role: models.RoleMentor, Active: true}
	require.NoError(t, userRepo.Create(context.Background(), &mentor))
	student := models.User{Email: "student@example.com", PasswordHash: "x", Role: models.RoleStudent, Active: true}
	require.NoError(t, userRepo.Create(context.Background(), &student))

	notificationRepo := repository.NewNotificationRepository(db)
	notificationService := service.NewNotificationService(notificationRepo, validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "test-secret"}, router.Dependencies{
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		JWTMiddleware:       testJWT(),
	})
	return app, mentor, student
}

func TestNotificationHandlerLifecycle(t *testing.T) {
	app, mentor, student := setupNotificationApp(t)

	createReq := jsonRequest(t, "POST", "/api/notifications", dto.NotificationCreateRequest{
		Title:      "Exam Schedule",
		Message:    "Mid-terms start next Monday",
		Type:       "info",
		Recipients: []uint{student.ID},
	})
	createReq.Header.Set("X-Test-User", fmt.Sprintf("%d", mentor.ID))
	createReq.Header.Set("X-Test-Role", "mentor")

	createResp, err := app.Test(createReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, createResp.StatusCode)
	require.NoError(t, createResp.Body.Close())

	listReq := httptest.NewRequest("GET", "/api/notifications", nil)
	listReq.Header.Set("X-Test-User", fmt.Sprintf("%d", student.ID))
	listReq.Header.Set("X-Test-Role", "student")

	listResp, err := app.Test(listReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	var listBody struct {
		Data dto.NotificationListResponse `json:"data"`
	}
	decodeResponse(t, listResp, &listBody)
	require.Len(t, listBody.Data.Notifications, 1)
	require.Equal(t, int64(1), listBody.Data.UnreadCount)
	notificationID := listBody.Data.Notifications[0].ID

	readReq := httptest.NewRequest("PUT", fmt.Sprintf("/api/notifications/%d/read", notificationID), nil)
	readReq.Header.Set("X-Test-User", fmt.Sprintf("%d", student.ID))
	readReq.Header.Set("X-Test-Role", "student")

	readResp, err := app.Test(readReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, readResp.StatusCode)
	require.NoError(t, readResp.Body.Close())

	deleteReq := httptest.NewRequest("DELETE", fmt.Sprintf("/api/notifications/%d", notificationID), nil)
	deleteReq.Header.Set("X-Test-User", fmt.Sprintf("%d", student.ID))
	deleteReq.Header.Set("X-Test-Role", "student")

	deleteResp, err := app.Test(deleteReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, deleteResp.StatusCode)
	require.NoError(t, deleteResp.Body.Close())
}

func TestNotificationHandlerStudentCannotBroadcast(t *testing.T) {
	app, _, student := setupNotificationApp(t)

	req := jsonRequest(t, "POST", "/api/notifications", dto.NotificationCreateRequest{
		Title:      "Spam",
		Message:    "not allowed",
		Type:       "info",
		Recipients: []uint{1},
	})
	req.Header.Set("X-Test-User", fmt.Sprintf("%d", student.ID))
	req.Header.Set("X-Test-Role", "student")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestNotificationHandlerForeignMarkRead(t *testing.T) {
	app, mentor, student := setupNotificationApp(t)

	createReq := jsonRequest(t, "POST", "/api/notifications", dto.NotificationCreateRequest{
		Title:      "Private",
		Message:    "for one student only",
		Type:       "warning",
		Recipients: []uint{student.ID},
	})
	createReq.Header.Set("X-Test-User", fmt.Sprintf("%d", mentor.ID))
	createReq.Header.Set("X-Test-Role", "mentor")
	createResp, err := app.Test(createReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, createResp.StatusCode)
	require.NoError(t, createResp.Body.Close())

	// another user cannot mark someone else's notification as read
	readReq := httptest.NewRequest("PUT", "/api/notifications/1/read", nil)
	readReq.Header.Set("X-Test-User", "999")
	readReq.Header.Set("X-Test-Role", "student")

	readResp, err := app.Test(readReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, readResp.StatusCode)
	require.NoError(t, readResp.Body.Close())
}
