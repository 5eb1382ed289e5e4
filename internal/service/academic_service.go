package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/events"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/policy"
	"github.com/mentorhub/mentorhub-api/internal/repository"
)

// lowMarksThreshold tags a marks-changed notification as a warning.
const lowMarksThreshold = 40

// AcademicService owns subject mutations and academic record reads.
type AcademicService interface {
	UpsertSubject(ctx context.Context, actor policy.Actor, payload dto.UpsertSubjectRequest) (dto.AcademicsResponse, error)
	RemoveSubject(ctx context.Context, actor policy.Actor, studentID uint, subjectID string) (dto.AcademicsResponse, error)
	StudentAcademics(ctx context.Context, actor policy.Actor, studentID uint) (dto.StudentAcademicsResponse, error)
}

type academicService struct {
	students  repository.StudentRepository
	bus       *events.Bus
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAcademicService constructs the academic record service.
func NewAcademicService(students repository.StudentRepository, bus *events.Bus, validate *validator.Validate, logger zerolog.Logger) AcademicService {
	return &academicService{
		students:  students,
		bus:       bus,
		validator: validate,
		logger:    logger.With().Str("component", "academic_service").Logger(),
		now:       time.Now,
	}
}

func (s *academicService) UpsertSubject(ctx context.Context, actor policy.Actor, payload dto.UpsertSubjectRequest) (dto.AcademicsResponse, error) {
	tracer := otel.Tracer("github.com/mentorhub/mentorhub-api/internal/service/academic")
	ctx, span := tracer.Start(ctx, "academics.upsert_subject")
	span.SetAttributes(
		attribute.Int64("student.id", int64(payload.StudentID)),
		attribute.String("subject.name", payload.SubjectName),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AcademicsResponse{}, err
	}

	student, err := s.loadStudent(ctx, payload.StudentID)
	if err != nil {
		span.RecordError(err)
		return dto.AcademicsResponse{}, err
	}

	if err := policy.Authorize(actor, policy.ActionWriteAcademics, student.UserID); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return dto.AcademicsResponse{}, err
	}

	subject, updated, err := student.UpsertSubject(payload.SubjectName, payload.Marks, s.now())
	if err != nil {
		span.RecordError(err)
		return dto.AcademicsResponse{}, err
	}

	if err := s.students.SaveVersioned(ctx, &student); err != nil {
		span.RecordError(err)
		return dto.AcademicsResponse{}, err
	}

	verb := "added"
	if updated {
		verb = "updated"
	}
	notificationType := models.NotificationSuccess
	if subject.Marks < lowMarksThreshold {
		notificationType = models.NotificationWarning
	}
	s.bus.Publish(ctx, events.Event{
		Kind:      events.KindMarksChanged,
		Title:     "Marks " + capitalize(verb),
		Message:   fmt.Sprintf("Marks %s for %s: %s - %g/100", verb, student.Name, subject.Name, subject.Marks),
		Type:      notificationType,
		Category:  "academic",
		StudentID: student.ID,
		ActorID:   actor.UserID,
	})

	span.SetAttributes(attribute.Bool("subject.updated", updated))
	return dto.NewAcademicsResponse(student), nil
}

func (s *academicService) RemoveSubject(ctx context.Context, actor policy.Actor, studentID uint, subjectID string) (dto.AcademicsResponse, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return dto.AcademicsResponse{}, err
	}

	if err := policy.Authorize(actor, policy.ActionWriteAcademics, student.UserID); err != nil {
		return dto.AcademicsResponse{}, err
	}

	// An unknown subject id is a no-op; the summary recompute still runs so
	// the record can never be stale.
	if !student.RemoveSubject(subjectID) {
		s.logger.Debug().Uint("student_id", studentID).Str("subject_id", subjectID).Msg("remove of unknown subject")
	}

	if err := s.students.SaveVersioned(ctx, &student); err != nil {
		return dto.AcademicsResponse{}, err
	}

	return dto.NewAcademicsResponse(student), nil
}

func (s *academicService) StudentAcademics(ctx context.Context, actor policy.Actor, studentID uint) (dto.StudentAcademicsResponse, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return dto.StudentAcademicsResponse{}, err
	}

	if err := policy.Authorize(actor, policy.ActionReadAcademics, student.UserID); err != nil {
		return dto.StudentAcademicsResponse{}, err
	}

	return dto.StudentAcademicsResponse{
		StudentInfo: dto.StudentInfo{
			ID:    student.ID,
			Name:  student.Name,
			RegNo: student.RegNo,
			Email: student.User.Email,
		},
		Academics: dto.NewAcademicsResponse(student),
	}, nil
}

func (s *academicService) loadStudent(ctx context.Context, studentID uint) (models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return string(word[0]-'a'+'A') + word[1:]
}
