package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mentorhub/mentorhub-api/internal/models"
)

// MessageRepository handles persistence for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id uint) (models.Message, error)
	ListInvolving(ctx context.Context, userID uint) ([]models.Message, error)
	Thread(ctx context.Context, userID, otherID uint, limit int) ([]models.Message, error)
	MarkThreadRead(ctx context.Context, senderID, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uint) (models.Message, error)
	Delete(ctx context.Context, id uint) error
}

type messageRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMessageRepository constructs a repository backed by GORM.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db, now: time.Now}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) FindByID(ctx context.Context, id uint) (models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, id).Error; err != nil {
		return models.Message{}, err
	}
	return message, nil
}

// ListInvolving returns every message sent or received by the user, newest
// first. Conversation grouping happens in the service layer.
func (r *messageRepository) ListInvolving(ctx context.Context, userID uint) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) Thread(ctx context.Context, userID, otherID uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, otherID, otherID, userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	// Oldest first for display.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepository) MarkThreadRead(ctx context.Context, senderID, recipientID uint) (int64, error) {
	readAt := r.now()
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND read = ?", senderID, recipientID, false).
		Updates(map[string]interface{}{"read": true, "read_at": readAt})
	return result.RowsAffected, result.Error
}

func (r *messageRepository) MarkRead(ctx context.Context, id, recipientID uint) (models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&message).Error; err != nil {
		return models.Message{}, err
	}

	if message.Read {
		return message, nil
	}

	readAt := r.now()
	message.Read = true
	message.ReadAt = &readAt
	if err := r.db.WithContext(ctx).Save(&message).Error; err != nil {
		return models.Message{}, err
	}
	return message, nil
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Message{}, id).Error
}
