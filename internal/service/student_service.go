package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/events"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/policy"
	"github.com/mentorhub/mentorhub-api/internal/repository"
)

// StudentService manages profiles and account lifecycle.
type StudentService interface {
	Profile(ctx context.Context, actor policy.Actor, studentID uint) (dto.StudentDetailResponse, error)
	MyProfile(ctx context.Context, actor policy.Actor) (dto.StudentDetailResponse, error)
	UpdateProfile(ctx context.Context, actor policy.Actor, studentID uint, payload dto.ProfileUpdateRequest) (dto.StudentDetailResponse, error)
	Dashboard(ctx context.Context, actor policy.Actor) (dto.StudentDashboardResponse, error)
	List(ctx context.Context, actor policy.Actor, filter repository.StudentFilter) (dto.StudentListResponse, error)
	Create(ctx context.Context, actor policy.Actor, payload dto.CreateStudentRequest) (dto.StudentDetailResponse, error)
	Delete(ctx context.Context, actor policy.Actor, studentID uint) error
}

type studentService struct {
	students  repository.StudentRepository
	users     repository.UserRepository
	bus       *events.Bus
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewStudentService constructs the profile and lifecycle service.
func NewStudentService(students repository.StudentRepository, users repository.UserRepository, bus *events.Bus, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		students:  students,
		users:     users,
		bus:       bus,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
		now:       time.Now,
	}
}

func (s *studentService) Profile(ctx context.Context, actor policy.Actor, studentID uint) (dto.StudentDetailResponse, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDetailResponse{}, err
	}

	if err := policy.Authorize(actor, policy.ActionReadProfile, student.UserID); err != nil {
		return dto.StudentDetailResponse{}, err
	}

	return dto.NewStudentDetailResponse(student), nil
}

func (s *studentService) MyProfile(ctx context.Context, actor policy.Actor) (dto.StudentDetailResponse, error) {
	student, err := s.loadByUserID(ctx, actor.UserID)
	if err != nil {
		return dto.StudentDetailResponse{}, err
	}
	return dto.NewStudentDetailResponse(student), nil
}

// UpdateProfile merges the non-nil fields of the payload into the profile.
// Identity fields stay student-or-admin only; mentors are rejected by policy.
func (s *studentService) UpdateProfile(ctx context.Context, actor policy.Actor, studentID uint, payload dto.ProfileUpdateRequest) (dto.StudentDetailResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentDetailResponse{}, err
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDetailResponse{}, err
	}

	if err := policy.Authorize(actor, policy.ActionUpdateIdentity, student.UserID); err != nil {
		return dto.StudentDetailResponse{}, err
	}

	if payload.RegNo != nil {
		regNo := strings.TrimSpace(*payload.RegNo)
		if regNo != student.RegNo {
			if _, err := s.students.FindByRegNo(ctx, regNo); err == nil {
				return dto.StudentDetailResponse{}, ErrRegNoTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.StudentDetailResponse{}, err
			}
		}
		student.RegNo = regNo
	}
	if payload.Name != nil {
		student.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.DateOfBirth != nil {
		student.DateOfBirth = parseDate(*payload.DateOfBirth)
	}
	if payload.Gender != nil {
		student.Gender = *payload.Gender
	}
	if payload.FatherName != nil {
		student.FatherName = *payload.FatherName
	}
	if payload.FatherOccupation != nil {
		student.FatherOccupation = *payload.FatherOccupation
	}
	if payload.MotherName != nil {
		student.MotherName = *payload.MotherName
	}
	if payload.MotherOccupation != nil {
		student.MotherOccupation = *payload.MotherOccupation
	}
	if payload.Mobile != nil {
		student.Mobile = strings.TrimSpace(*payload.Mobile)
	}
	if payload.Address != nil {
		student.Address = *payload.Address
	}

	student.RefreshProfileCompleted()

	if err := s.students.SaveVersioned(ctx, &student); err != nil {
		return dto.StudentDetailResponse{}, err
	}

	return dto.NewStudentDetailResponse(student), nil
}

func (s *studentService) Dashboard(ctx context.Context, actor policy.Actor) (dto.StudentDashboardResponse, error) {
	student, err := s.loadByUserID(ctx, actor.UserID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}
	return dto.NewStudentDashboardResponse(student), nil
}

func (s *studentService) List(ctx context.Context, actor policy.Actor, filter repository.StudentFilter) (dto.StudentListResponse, error) {
	if err := policy.Authorize(actor, policy.ActionReadOverview, 0); err != nil {
		return dto.StudentListResponse{}, err
	}

	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return dto.StudentListResponse{}, err
	}

	items := make([]dto.StudentListItem, 0, len(students))
	for _, student := range students {
		items = append(items, dto.NewStudentListItem(student))
	}

	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	return dto.StudentListResponse{
		Students: items,
		Pagination: dto.PaginationMeta{
			Page:         page,
			PageSize:     pageSize,
			TotalPages:   int(math.Ceil(float64(total) / float64(pageSize))),
			TotalRecords: total,
		},
	}, nil
}

// Create provisions an account and a profile in one admin call. The profile
// is force-marked completed; only self-service profiles earn the flag field
// by field.
func (s *studentService) Create(ctx context.Context, actor policy.Actor, payload dto.CreateStudentRequest) (dto.StudentDetailResponse, error) {
	if err := policy.Authorize(actor, policy.ActionManageLifecycle, 0); err != nil {
		return dto.StudentDetailResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentDetailResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return dto.StudentDetailResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StudentDetailResponse{}, err
	}

	if regNo := strings.TrimSpace(payload.Profile.RegNo); regNo != "" {
		if _, err := s.students.FindByRegNo(ctx, regNo); err == nil {
			return dto.StudentDetailResponse{}, ErrRegNoTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentDetailResponse{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.StudentDetailResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		Active:       true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.StudentDetailResponse{}, err
	}

	student := studentFromSeed(user.ID, payload.Profile)
	// Admin-created profiles are always stored as completed, whatever the
	// seed supplied.
	student.ProfileCompleted = true
	if err := s.students.Create(ctx, &student); err != nil {
		return dto.StudentDetailResponse{}, err
	}
	student.User = user

	s.bus.Publish(ctx, events.Event{
		Kind:      events.KindStudentRegistered,
		Title:     "New Student Registration",
		Message:   fmt.Sprintf("New student registered: %s (%s)", student.Name, email),
		Type:      models.NotificationSuccess,
		Category:  "academic",
		StudentID: student.ID,
		ActorID:   actor.UserID,
	})

	return dto.NewStudentDetailResponse(student), nil
}

// Delete removes the profile and the owning account together.
func (s *studentService) Delete(ctx context.Context, actor policy.Actor, studentID uint) error {
	if err := policy.Authorize(actor, policy.ActionManageLifecycle, 0); err != nil {
		return err
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return err
	}

	if err := s.students.DeleteWithUser(ctx, student.ID, student.UserID); err != nil {
		return err
	}

	s.logger.Info().Uint("student_id", student.ID).Uint("user_id", student.UserID).Msg("student account removed")
	return nil
}

func (s *studentService) loadStudent(ctx context.Context, studentID uint) (models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

func (s *studentService) loadByUserID(ctx context.Context, userID uint) (models.Student, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}
