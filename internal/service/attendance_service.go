package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/events"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/policy"
	"github.com/mentorhub/mentorhub-api/internal/repository"
)

// lowAttendanceThreshold tags an attendance notification as a warning.
const lowAttendanceThreshold = 75

// AttendanceService owns the attendance collection of the aggregate.
type AttendanceService interface {
	Upsert(ctx context.Context, actor policy.Actor, studentID uint, payload dto.AttendanceRequest) (models.AttendanceRecord, error)
	Bulk(ctx context.Context, actor policy.Actor, payload dto.BulkAttendanceRequest) (dto.BulkAttendanceResponse, error)
	History(ctx context.Context, actor policy.Actor, studentID uint) (dto.AttendanceOverview, error)
	Remove(ctx context.Context, actor policy.Actor, studentID uint, recordID string) error
}

type attendanceService struct {
	students  repository.StudentRepository
	bus       *events.Bus
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(students repository.StudentRepository, bus *events.Bus, validate *validator.Validate, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		students:  students,
		bus:       bus,
		validator: validate,
		logger:    logger.With().Str("component", "attendance_service").Logger(),
		now:       time.Now,
	}
}

func (s *attendanceService) Upsert(ctx context.Context, actor policy.Actor, studentID uint, payload dto.AttendanceRequest) (models.AttendanceRecord, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.AttendanceRecord{}, err
	}

	record, _, err := s.upsertOne(ctx, actor, studentID, payload.Month, payload.Year, payload.DaysPresent, payload.TotalDays)
	return record, err
}

// Bulk records attendance for many students. Entries succeed or fail
// independently; the response enumerates every outcome.
func (s *attendanceService) Bulk(ctx context.Context, actor policy.Actor, payload dto.BulkAttendanceRequest) (dto.BulkAttendanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BulkAttendanceResponse{}, err
	}

	response := dto.BulkAttendanceResponse{
		Results: make([]dto.BulkAttendanceResult, 0, len(payload.Entries)),
	}

	for _, entry := range payload.Entries {
		record, studentName, err := s.upsertOne(ctx, actor, entry.StudentID, entry.Month, entry.Year, entry.DaysPresent, entry.TotalDays)
		result := dto.BulkAttendanceResult{StudentID: entry.StudentID, StudentName: studentName}
		if err != nil {
			result.Success = false
			result.Message = err.Error()
			response.Summary.Failed++
		} else {
			percentage := record.Percentage
			result.Success = true
			result.Message = "attendance recorded"
			result.Percentage = &percentage
			response.Summary.Successful++
		}
		response.Results = append(response.Results, result)
	}
	response.Summary.Total = len(response.Results)

	return response, nil
}

func (s *attendanceService) History(ctx context.Context, actor policy.Actor, studentID uint) (dto.AttendanceOverview, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return dto.AttendanceOverview{}, err
	}

	if err := policy.Authorize(actor, policy.ActionReadAcademics, student.UserID); err != nil {
		return dto.AttendanceOverview{}, err
	}

	history := student.Attendance
	if history == nil {
		history = []models.AttendanceRecord{}
	}
	return dto.AttendanceOverview{
		Overall: student.OverallAttendance(),
		History: history,
	}, nil
}

func (s *attendanceService) Remove(ctx context.Context, actor policy.Actor, studentID uint, recordID string) error {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return err
	}

	if err := policy.Authorize(actor, policy.ActionWriteAcademics, student.UserID); err != nil {
		return err
	}

	if !student.RemoveAttendance(recordID) {
		return ErrAttendanceNotFound
	}

	return s.students.SaveVersioned(ctx, &student)
}

func (s *attendanceService) upsertOne(ctx context.Context, actor policy.Actor, studentID uint, month string, year, daysPresent, totalDays int) (models.AttendanceRecord, string, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return models.AttendanceRecord{}, "", err
	}

	if err := policy.Authorize(actor, policy.ActionWriteAcademics, student.UserID); err != nil {
		return models.AttendanceRecord{}, student.Name, err
	}

	record, updated, err := student.UpsertAttendance(month, year, daysPresent, totalDays, s.now())
	if err != nil {
		return models.AttendanceRecord{}, student.Name, err
	}

	if err := s.students.SaveVersioned(ctx, &student); err != nil {
		return models.AttendanceRecord{}, student.Name, err
	}

	verb := "added"
	if updated {
		verb = "updated"
	}
	notificationType := models.NotificationSuccess
	if record.Percentage < lowAttendanceThreshold {
		notificationType = models.NotificationWarning
	}
	s.bus.Publish(ctx, events.Event{
		Kind:      events.KindAttendanceRecorded,
		Title:     "Attendance Recorded",
		Message:   fmt.Sprintf("Attendance %s for %s: %d%% (%d/%d days) for %s %d", verb, student.Name, record.Percentage, record.DaysPresent, record.TotalDays, record.Month, record.Year),
		Type:      notificationType,
		Category:  "attendance",
		StudentID: student.ID,
		ActorID:   actor.UserID,
	})

	return record, student.Name, nil
}

func (s *attendanceService) loadStudent(ctx context.Context, studentID uint) (models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}
