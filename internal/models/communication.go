package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types carried in the UI.
const (
	NotificationInfo    = "info"
	NotificationWarning = "warning"
	NotificationSuccess = "success"
	NotificationError   = "error"
)

// Notification is a single in-app notification addressed to one account.
type Notification struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	Type        string     `gorm:"size:16;not null;default:info" json:"type"`
	Category    string     `gorm:"size:32;not null;default:system" json:"category"`
	RecipientID uint       `gorm:"index;not null" json:"recipient_id"`
	SenderID    *uint      `json:"sender_id,omitempty"`
	Read        bool       `gorm:"not null;default:false" json:"read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Message types.
const (
	MessageText  = "text"
	MessageImage = "image"
	MessageFile  = "file"
)

// Attachment is metadata describing a file attached to a message. The portal
// stores no binary payloads; the content type is detected server-side.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Message is a direct message between two accounts. Conversation threading
// is derived at query time from the (sender, recipient) pair; nothing about
// threads is stored.
type Message struct {
	ID          uint                            `gorm:"primaryKey" json:"id"`
	SenderID    uint                            `gorm:"index:idx_messages_pair;not null" json:"sender_id"`
	RecipientID uint                            `gorm:"index:idx_messages_pair;index;not null" json:"recipient_id"`
	Content     string                          `gorm:"type:text;not null" json:"content"`
	MessageType string                          `gorm:"size:16;not null;default:text" json:"message_type"`
	Attachments datatypes.JSONSlice[Attachment] `gorm:"type:json" json:"attachments"`
	Read        bool                            `gorm:"not null;default:false" json:"read"`
	ReadAt      *time.Time                      `json:"read_at,omitempty"`
	CreatedAt   time.Time                       `json:"created_at"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}
