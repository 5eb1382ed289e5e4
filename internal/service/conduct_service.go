package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mentorhub/mentorhub-api/internal/events"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/policy"
	"github.com/mentorhub/mentorhub-api/internal/repository"
)

// ConductService owns the blackmark collection of the aggregate.
type ConductService interface {
	Assign(ctx context.Context, actor policy.Actor, studentID uint, reason, severity string) ([]models.Blackmark, error)
	Remove(ctx context.Context, actor policy.Actor, studentID uint, blackmarkID string) ([]models.Blackmark, error)
}

type conductService struct {
	students repository.StudentRepository
	bus      *events.Bus
	logger   zerolog.Logger
	now      func() time.Time
}

// NewConductService constructs the blackmark service.
func NewConductService(students repository.StudentRepository, bus *events.Bus, logger zerolog.Logger) ConductService {
	return &conductService{
		students: students,
		bus:      bus,
		logger:   logger.With().Str("component", "conduct_service").Logger(),
		now:      time.Now,
	}
}

func (s *conductService) Assign(ctx context.Context, actor policy.Actor, studentID uint, reason, severity string) ([]models.Blackmark, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(actor, policy.ActionWriteAcademics, student.UserID); err != nil {
		return nil, err
	}

	mark, err := student.AppendBlackmark(reason, severity, actor.UserID, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.students.SaveVersioned(ctx, &student); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.Event{
		Kind:      events.KindBlackmarkAssigned,
		Title:     "Blackmark Assigned",
		Message:   fmt.Sprintf("%s severity blackmark assigned to %s: %s", mark.Severity, student.Name, mark.Reason),
		Type:      blackmarkNotificationType(mark.Severity),
		Category:  "blackmark",
		StudentID: student.ID,
		ActorID:   actor.UserID,
	})

	return student.Blackmarks, nil
}

func (s *conductService) Remove(ctx context.Context, actor policy.Actor, studentID uint, blackmarkID string) ([]models.Blackmark, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(actor, policy.ActionWriteAcademics, student.UserID); err != nil {
		return nil, err
	}

	if !student.RemoveBlackmark(blackmarkID) {
		return nil, ErrBlackmarkNotFound
	}

	if err := s.students.SaveVersioned(ctx, &student); err != nil {
		return nil, err
	}

	return student.Blackmarks, nil
}

func (s *conductService) loadStudent(ctx context.Context, studentID uint) (models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

func blackmarkNotificationType(severity string) string {
	switch severity {
	case models.SeverityHigh:
		return models.NotificationError
	case models.SeverityMedium:
		return models.NotificationWarning
	default:
		return models.NotificationInfo
	}
}
