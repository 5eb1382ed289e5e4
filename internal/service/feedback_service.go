package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/policy"
	"github.com/mentorhub/mentorhub-api/internal/repository"
)

// feedbackPreviewLength caps the preview text in the recent-feedback feed.
const feedbackPreviewLength = 100

// FeedbackService owns the mentor feedback history of the aggregate.
// Feedback is mentor-to-student only; no admin fan-out happens here.
type FeedbackService interface {
	Append(ctx context.Context, actor policy.Actor, studentID uint, payload dto.FeedbackRequest) (models.FeedbackEntry, error)
	Latest(ctx context.Context, actor policy.Actor, studentID uint) (*models.FeedbackEntry, error)
	History(ctx context.Context, actor policy.Actor, studentID uint) (dto.FeedbackHistoryResponse, error)
	RecentByMentor(ctx context.Context, actor policy.Actor, limit int) ([]dto.RecentFeedbackItem, error)
}

type feedbackService struct {
	students  repository.StudentRepository
	users     repository.UserRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewFeedbackService constructs the feedback service.
func NewFeedbackService(students repository.StudentRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) FeedbackService {
	return &feedbackService{
		students:  students,
		users:     users,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "feedback_service").Logger(),
		now:       time.Now,
	}
}

func (s *feedbackService) Append(ctx context.Context, actor policy.Actor, studentID uint, payload dto.FeedbackRequest) (models.FeedbackEntry, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.FeedbackEntry{}, err
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return models.FeedbackEntry{}, err
	}

	if err := policy.Authorize(actor, policy.ActionWriteAcademics, student.UserID); err != nil {
		return models.FeedbackEntry{}, err
	}

	mentor, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return models.FeedbackEntry{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	entry, err := student.AppendFeedback(clean, payload.Type, models.FeedbackAuthor{
		ID:    mentor.ID,
		Name:  mentorDisplayName(mentor.Email),
		Email: mentor.Email,
	}, s.now())
	if err != nil {
		return models.FeedbackEntry{}, err
	}

	if err := s.students.SaveVersioned(ctx, &student); err != nil {
		return models.FeedbackEntry{}, err
	}

	return entry, nil
}

func (s *feedbackService) Latest(ctx context.Context, actor policy.Actor, studentID uint) (*models.FeedbackEntry, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(actor, policy.ActionReadAcademics, student.UserID); err != nil {
		return nil, err
	}

	return student.LatestFeedback(), nil
}

func (s *feedbackService) History(ctx context.Context, actor policy.Actor, studentID uint) (dto.FeedbackHistoryResponse, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return dto.FeedbackHistoryResponse{}, err
	}

	if err := policy.Authorize(actor, policy.ActionReadAcademics, student.UserID); err != nil {
		return dto.FeedbackHistoryResponse{}, err
	}

	history := make([]models.FeedbackEntry, len(student.FeedbackHistory))
	copy(history, student.FeedbackHistory)
	sort.Slice(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt)
	})

	return dto.FeedbackHistoryResponse{
		StudentName:     student.Name,
		StudentRegNo:    student.RegNo,
		FeedbackHistory: history,
		TotalFeedback:   len(history),
	}, nil
}

// RecentByMentor lists the actor's latest feedback entries across all
// students, newest first.
func (s *feedbackService) RecentByMentor(ctx context.Context, actor policy.Actor, limit int) ([]dto.RecentFeedbackItem, error) {
	if err := policy.Authorize(actor, policy.ActionReadOverview, 0); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var items []dto.RecentFeedbackItem
	for _, student := range students {
		for _, entry := range student.FeedbackHistory {
			if entry.MentorID != actor.UserID {
				continue
			}
			items = append(items, dto.RecentFeedbackItem{
				StudentID:    student.ID,
				StudentName:  student.Name,
				StudentRegNo: student.RegNo,
				FeedbackType: entry.FeedbackType,
				Feedback:     entry.Feedback,
				Preview:      previewText(entry.Feedback),
				CreatedAt:    entry.CreatedAt,
			})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *feedbackService) loadStudent(ctx context.Context, studentID uint) (models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

func mentorDisplayName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func previewText(text string) string {
	runes := []rune(text)
	if len(runes) <= feedbackPreviewLength {
		return text
	}
	return string(runes[:feedbackPreviewLength]) + "..."
}
