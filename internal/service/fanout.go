package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mentorhub/mentorhub-api/internal/events"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/observability"
	"github.com/mentorhub/mentorhub-api/internal/repository"
)

// AdminNotifier turns every aggregate event into one inbox notification per
// admin account. It subscribes to the bus so publishers stay unaware of who
// is listening.
type AdminNotifier struct {
	users         repository.UserRepository
	notifications repository.NotificationRepository
	logger        zerolog.Logger
}

// NewAdminNotifier constructs the admin fan-out subscriber.
func NewAdminNotifier(users repository.UserRepository, notifications repository.NotificationRepository, logger zerolog.Logger) *AdminNotifier {
	return &AdminNotifier{
		users:         users,
		notifications: notifications,
		logger:        logger.With().Str("component", "admin_notifier").Logger(),
	}
}

// Register wires the notifier into the bus for every event kind.
func (n *AdminNotifier) Register(bus *events.Bus) {
	bus.SubscribeAll(n.Handle)
}

func (n *AdminNotifier) Handle(ctx context.Context, event events.Event) error {
	admins, err := n.users.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	if len(admins) == 0 {
		return nil
	}

	batch := make([]models.Notification, 0, len(admins))
	for _, admin := range admins {
		// Admins do not get notified about their own logins.
		if event.Kind == events.KindAdminLogin && admin.ID == event.ActorID {
			continue
		}
		sender := event.ActorID
		notification := models.Notification{
			Title:       event.Title,
			Message:     event.Message,
			Type:        event.Type,
			Category:    event.Category,
			RecipientID: admin.ID,
		}
		if sender != 0 {
			notification.SenderID = &sender
		}
		batch = append(batch, notification)
	}

	if err := n.notifications.CreateBatch(ctx, batch); err != nil {
		return fmt.Errorf("store admin notifications: %w", err)
	}
	observability.NotificationsCreated().WithLabelValues(event.Type).Add(float64(len(batch)))

	n.logger.Debug().Str("kind", string(event.Kind)).Int("recipients", len(batch)).Msg("admin fan-out delivered")
	return nil
}

// StudentMessenger delivers a direct message to the student whenever a
// blackmark lands on their record.
type StudentMessenger struct {
	students repository.StudentRepository
	messages repository.MessageRepository
	logger   zerolog.Logger
}

// NewStudentMessenger constructs the blackmark messenger.
func NewStudentMessenger(students repository.StudentRepository, messages repository.MessageRepository, logger zerolog.Logger) *StudentMessenger {
	return &StudentMessenger{
		students: students,
		messages: messages,
		logger:   logger.With().Str("component", "student_messenger").Logger(),
	}
}

// Register wires the messenger into the bus.
func (m *StudentMessenger) Register(bus *events.Bus) {
	bus.Subscribe(events.KindBlackmarkAssigned, m.Handle)
}

func (m *StudentMessenger) Handle(ctx context.Context, event events.Event) error {
	if event.StudentID == 0 {
		return nil
	}

	student, err := m.students.FindByID(ctx, event.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("load student %d: %w", event.StudentID, err)
	}

	message := models.Message{
		SenderID:    event.ActorID,
		RecipientID: student.UserID,
		Content:     event.Message,
		MessageType: models.MessageText,
	}
	if err := m.messages.Create(ctx, &message); err != nil {
		return fmt.Errorf("store blackmark message: %w", err)
	}
	return nil
}
