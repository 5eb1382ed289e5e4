package service

import (
	"context"
	"encoding/base64"
	"errors"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/repository"
)

// MessageService handles direct messaging between portal users.
type MessageService interface {
	Send(ctx context.Context, senderID uint, payload dto.SendMessageRequest) (models.Message, error)
	Conversations(ctx context.Context, userID uint) ([]dto.ConversationResponse, error)
	Thread(ctx context.Context, userID, otherID uint, limit int) (dto.ThreadResponse, error)
	MarkRead(ctx context.Context, id, recipientID uint) (models.Message, error)
	Delete(ctx context.Context, id, userID uint) error
}

type messageService struct {
	messages  repository.MessageRepository
	users     repository.UserRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewMessageService constructs the messaging service.
func NewMessageService(messages repository.MessageRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) MessageService {
	return &messageService{
		messages:  messages,
		users:     users,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "message_service").Logger(),
	}
}

func (s *messageService) Send(ctx context.Context, senderID uint, payload dto.SendMessageRequest) (models.Message, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Message{}, err
	}
	if payload.RecipientID == senderID {
		return models.Message{}, models.NewValidationError("recipientId", "cannot message yourself")
	}

	if _, err := s.users.FindByID(ctx, payload.RecipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Message{}, ErrUserNotFound
		}
		return models.Message{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return models.Message{}, models.NewValidationError("content", "content is empty after sanitization")
	}

	attachments, err := describeAttachments(payload.Attachments)
	if err != nil {
		return models.Message{}, err
	}

	messageType := payload.MessageType
	if messageType == "" {
		messageType = models.MessageText
	}

	message := models.Message{
		SenderID:    senderID,
		RecipientID: payload.RecipientID,
		Content:     content,
		MessageType: messageType,
		Attachments: attachments,
	}
	if err := s.messages.Create(ctx, &message); err != nil {
		return models.Message{}, err
	}

	return message, nil
}

// Conversations groups the user's messages by counterpart, keeping the latest
// message and the count of unread incoming messages per counterpart.
func (s *messageService) Conversations(ctx context.Context, userID uint) ([]dto.ConversationResponse, error) {
	messages, err := s.messages.ListInvolving(ctx, userID)
	if err != nil {
		return nil, err
	}

	type conversation struct {
		last   models.Message
		unread int
	}
	byOther := make(map[uint]*conversation)
	for _, message := range messages {
		otherID := message.SenderID
		if otherID == userID {
			otherID = message.RecipientID
		}

		entry, ok := byOther[otherID]
		if !ok {
			// Messages arrive newest first, so the first one wins.
			entry = &conversation{last: message}
			byOther[otherID] = entry
		}
		if message.RecipientID == userID && !message.Read {
			entry.unread++
		}
	}

	conversations := make([]dto.ConversationResponse, 0, len(byOther))
	for otherID, entry := range byOther {
		other, err := s.users.FindByID(ctx, otherID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Deleted counterparts keep the thread visible without a user block.
				other = models.User{}
				other.ID = otherID
			} else {
				return nil, err
			}
		}
		conversations = append(conversations, dto.ConversationResponse{
			OtherUser:   dto.NewUserResponse(other),
			LastMessage: entry.last,
			UnreadCount: entry.unread,
		})
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.CreatedAt.After(conversations[j].LastMessage.CreatedAt)
	})
	return conversations, nil
}

// Thread returns the history with one counterpart and marks their incoming
// messages as read.
func (s *messageService) Thread(ctx context.Context, userID, otherID uint, limit int) (dto.ThreadResponse, error) {
	messages, err := s.messages.Thread(ctx, userID, otherID, limit)
	if err != nil {
		return dto.ThreadResponse{}, err
	}
	if messages == nil {
		messages = []models.Message{}
	}

	if _, err := s.messages.MarkThreadRead(ctx, otherID, userID); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Uint("other_id", otherID).Msg("failed to mark thread read")
	}

	return dto.ThreadResponse{Messages: messages}, nil
}

func (s *messageService) MarkRead(ctx context.Context, id, recipientID uint) (models.Message, error) {
	message, err := s.messages.MarkRead(ctx, id, recipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Message{}, ErrMessageNotFound
		}
		return models.Message{}, err
	}
	return message, nil
}

// Delete removes a message; only its sender may do so.
func (s *messageService) Delete(ctx context.Context, id, userID uint) error {
	message, err := s.messages.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if message.SenderID != userID {
		return ErrMessageNotFound
	}
	return s.messages.Delete(ctx, id)
}

// describeAttachments decodes each upload just far enough to sniff its
// content type; the payload itself is not stored.
func describeAttachments(uploads []dto.AttachmentUpload) (datatypes.JSONSlice[models.Attachment], error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	attachments := make(datatypes.JSONSlice[models.Attachment], 0, len(uploads))
	for _, upload := range uploads {
		data, err := base64.StdEncoding.DecodeString(upload.Data)
		if err != nil {
			return nil, models.NewValidationError("attachments", "%s is not valid base64", upload.Filename)
		}
		attachments = append(attachments, models.Attachment{
			Filename:    upload.Filename,
			ContentType: mimetype.Detect(data).String(),
			Size:        int64(len(data)),
		})
	}
	return attachments, nil
}
