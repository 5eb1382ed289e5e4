package dto

import (
	"time"

	"github.com/mentorhub/mentorhub-api/internal/models"
)

// NotificationCreateRequest addresses a notification to explicit recipients.
type NotificationCreateRequest struct {
	Title      string `json:"title" validate:"required,min=1"`
	Message    string `json:"message" validate:"required,min=1"`
	Type       string `json:"type" validate:"required,oneof=info warning success error"`
	Category   string `json:"category"`
	Recipients []uint `json:"recipients" validate:"required,min=1"`
}

// NotificationListResponse pairs the page with the unread badge count.
type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
}

// AttachmentUpload is an inline attachment: the payload is only inspected to
// detect its content type, then discarded.
type AttachmentUpload struct {
	Filename string `json:"filename" validate:"required"`
	Data     string `json:"data" validate:"required"` // base64
}

// SendMessageRequest posts a direct message.
type SendMessageRequest struct {
	RecipientID uint               `json:"recipientId" validate:"required"`
	Content     string             `json:"content" validate:"required,min=1"`
	MessageType string             `json:"messageType" validate:"omitempty,oneof=text image file"`
	Attachments []AttachmentUpload `json:"attachments" validate:"omitempty,dive"`
}

// ConversationResponse is one row of the conversation list: the counterpart,
// the latest message and the unread badge.
type ConversationResponse struct {
	OtherUser   UserResponse   `json:"otherUser"`
	LastMessage models.Message `json:"lastMessage"`
	UnreadCount int            `json:"unreadCount"`
}

// ThreadResponse is the message history with one counterpart, oldest first.
type ThreadResponse struct {
	Messages []models.Message `json:"messages"`
}

// FeedbackRequest appends a mentor feedback entry.
type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,min=10"`
	Type     string `json:"type" validate:"required,oneof=academic attendance behavior overall"`
}

// FeedbackHistoryResponse lists a student's feedback, newest first.
type FeedbackHistoryResponse struct {
	StudentName     string                 `json:"studentName"`
	StudentRegNo    string                 `json:"studentRegNo"`
	FeedbackHistory []models.FeedbackEntry `json:"feedbackHistory"`
	TotalFeedback   int                    `json:"totalFeedback"`
}

// RecentFeedbackItem is one row of a mentor's cross-student feedback feed.
type RecentFeedbackItem struct {
	StudentID    uint      `json:"studentId"`
	StudentName  string    `json:"studentName"`
	StudentRegNo string    `json:"studentRegNo"`
	FeedbackType string    `json:"feedbackType"`
	Feedback     string    `json:"feedback"`
	Preview      string    `json:"preview"`
	CreatedAt    time.Time `json:"createdAt"`
}
