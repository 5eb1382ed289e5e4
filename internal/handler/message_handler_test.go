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

func setupMessageApp(t *testing.T) (*fiber.App, models.User, models.User) {
	t.Helper()

	db := openTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.Nop()

	userRepo := repository.NewUserRepository(db)
	mentor := models.User{Email: "mentor@example.com", PasswordHash: "x", Role: models.RoleMentor, Active: true}
	require.NoError(t, userRepo.Create(context.Background(), &mentor))
	student := models.User{Email: "student@example.com", PasswordHash: "x", Role: models.RoleStudent, Active: true}
	require.NoError(t, userRepo.Create(context.Background(), &student))

	messageRepo := repository.NewMessageRepository(db)
	messageService := service.NewMessageService(messageRepo, userRepo, validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "test-secret"}, router.Dependencies{
		MessageHandler: handler.NewMessageHandler(messageService, logger),
		JWTMiddleware:  testJWT(),
	})
	return app, mentor, student
}

func TestMessageHandlerSendAndThread(t *testing.T) {
	app, mentor, student := setupMessageApp(t)

	sendReq := jsonRequest(t, "POST", "/api/messages", dto.SendMessageRequest{
		RecipientID: student.ID,
		Content:     "Please see me after class",
	})
	sendReq.Header.Set("X-Test-User", fmt.Sprintf("%d", mentor.ID))
	sendReq.Header.Set("X-Test-Role", "mentor")

	sendResp, err := app.Test(sendReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, sendResp.StatusCode)

	var sendBody struct {
		Data models.Message `json:"data"`
	}
	decodeResponse(t, sendResp, &sendBody)
	require.Equal(t, mentor.ID, sendBody.Data.SenderID)
	require.Equal(t, student.ID, sendBody.Data.RecipientID)

	convReq := httptest.NewRequest("GET", "/api/messages/conversations", nil)
	convReq.Header.Set("X-Test-User", fmt.Sprintf("%d", student.ID))
	convReq.Header.Set("X-Test-Role", "student")

	convResp, err := app.Test(convReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, convResp.StatusCode)

	var convBody struct {
		Data struct {
			Conversations []dto.ConversationResponse `json:"conversations"`
		} `json:"data"`
	}
	decodeResponse(t, convResp, &convBody)
	require.Len(t, convBody.Data.Conversations, 1)
	require.Equal(t, mentor.ID, convBody.Data.Conversations[0].OtherUser.ID)
	require.Equal(t, 1, convBody.Data.Conversations[0].UnreadCount)

	threadReq := httptest.NewRequest("GET", fmt.Sprintf("/api/messages/with/%d", mentor.ID), nil)
	threadReq.Header.Set("X-Test-User", fmt.Sprintf("%d", student.ID))
	threadReq.Header.Set("X-Test-Role", "student")

	threadResp, err := app.Test(threadReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, threadResp.StatusCode)

	var threadBody struct {
		Data dto.ThreadResponse `json:"data"`
	}
	decodeResponse(t, threadResp, &threadBody)
	require.Len(t, threadBody.Data.Messages, 1)

	// viewing the thread marks the incoming message as read
	recheckReq := httptest.NewRequest("GET", "/api/messages/conversations", nil)
	recheckReq.Header.Set("X-Test-User", fmt.Sprintf("%d", student.ID))
	recheckReq.Header.Set("X-Test-Role", "student")

	recheckResp, err := app.Test(recheckReq)
	require.NoError(t, err)
	decodeResponse(t, recheckResp, &convBody)
	require.Equal(t, 0, convBody.Data.Conversations[0].UnreadCount)
}

func TestMessageHandlerRejectsSelfMessage(t *testing.T) {
	app, mentor, _ := setupMessageApp(t)

	req := jsonRequest(t, "POST", "/api/messages", dto.SendMessageRequest{
		RecipientID: mentor.ID,
		Content:     "note to self",
	})
	req.Header.Set("X-Test-User", fmt.Sprintf("%d", mentor.ID))
	req.Header.Set("X-Test-Role", "mentor")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestMessageHandlerUnknownRecipient(t *testing.T) {
	app, mentor, _ := setupMessageApp(t)

	req := jsonRequest(t, "POST", "/api/messages", dto.SendMessageRequest{
		RecipientID: 9999,
		Content:     "anyone there?",
	})
	req.Header.Set("X-Test-User", fmt.Sprintf("%d", mentor.ID))
	req.Header.Set("X-Test-Role", "mentor")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}
