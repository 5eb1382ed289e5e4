package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/observability"
	"github.com/mentorhub/mentorhub-api/internal/repository"
)

// NotificationService manages each user's notification inbox.
type NotificationService interface {
	List(ctx context.Context, recipientID uint, limit int) (dto.NotificationListResponse, error)
	Create(ctx context.Context, senderID uint, payload dto.NotificationCreateRequest) (int, error)
	MarkRead(ctx context.Context, id, recipientID uint) (models.Notification, error)
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
	Delete(ctx context.Context, id, recipientID uint) error
}

type notificationService struct {
	notifications repository.NotificationRepository
	validator     *validator.Validate
	logger        zerolog.Logger
}

// NewNotificationService constructs the notification service.
func NewNotificationService(notifications repository.NotificationRepository, validate *validator.Validate, logger zerolog.Logger) NotificationService {
	return &notificationService{
		notifications: notifications,
		validator:     validate,
		logger:        logger.With().Str("component", "notification_service").Logger(),
	}
}

func (s *notificationService) List(ctx context.Context, recipientID uint, limit int) (dto.NotificationListResponse, error) {
	notifications, err := s.notifications.ListByRecipient(ctx, recipientID, limit)
	if err != nil {
		return dto.NotificationListResponse{}, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	unread, err := s.notifications.CountUnread(ctx, recipientID)
	if err != nil {
		return dto.NotificationListResponse{}, err
	}

	return dto.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}

// Create fans one announcement out to every listed recipient as a separate
// inbox row.
func (s *notificationService) Create(ctx context.Context, senderID uint, payload dto.NotificationCreateRequest) (int, error) {
	if err := s.validator.Struct(payload); err != nil {
		return 0, err
	}

	category := payload.Category
	if category == "" {
		category = "system"
	}

	batch := make([]models.Notification, 0, len(payload.Recipients))
	for _, recipientID := range payload.Recipients {
		sender := senderID
		batch = append(batch, models.Notification{
			Title:       payload.Title,
			Message:     payload.Message,
			Type:        payload.Type,
			Category:    category,
			RecipientID: recipientID,
			SenderID:    &sender,
		})
	}

	if err := s.notifications.CreateBatch(ctx, batch); err != nil {
		return 0, err
	}
	observability.NotificationsCreated().WithLabelValues(payload.Type).Add(float64(len(batch)))

	return len(batch), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, recipientID uint) (models.Notification, error) {
	notification, err := s.notifications.MarkRead(ctx, id, recipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Notification{}, ErrNotificationNotFound
		}
		return models.Notification{}, err
	}
	return notification, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.notifications.MarkAllRead(ctx, recipientID)
}

func (s *notificationService) Delete(ctx context.Context, id, recipientID uint) error {
	if err := s.notifications.Delete(ctx, id, recipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}
