package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/events"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/repository"
)

// AuthService handles registration, login and identity resolution.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
	Me(ctx context.Context, userID uint) (dto.UserResponse, error)
}

type authService struct {
	users       repository.UserRepository
	students    repository.StudentRepository
	bus         *events.Bus
	validator   *validator.Validate
	jwtSecret   string
	adminSecret string
	tokenTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, students repository.StudentRepository, bus *events.Bus, validate *validator.Validate, jwtSecret, adminSecret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		users:       users,
		students:    students,
		bus:         bus,
		validator:   validate,
		jwtSecret:   jwtSecret,
		adminSecret: adminSecret,
		tokenTTL:    tokenTTL,
		logger:      logger.With().Str("component", "auth_service").Logger(),
		now:         time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	role := models.Role(payload.Role)
	if role == models.RoleAdmin && payload.AdminSecret != s.adminSecret {
		return dto.AuthResponse{}, ErrInvalidAdminSecret
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	if role == models.RoleStudent {
		seed := payload.Student
		if seed == nil {
			seed = &dto.StudentSeed{}
		}
		student := studentFromSeed(user.ID, *seed)
		if err := s.students.Create(ctx, &student); err != nil {
			return dto.AuthResponse{}, err
		}

		s.bus.Publish(ctx, events.Event{
			Kind:      events.KindStudentRegistered,
			Title:     "New Student Registration",
			Message:   fmt.Sprintf("New student registered: %s (%s)", student.Name, email),
			Type:      models.NotificationSuccess,
			Category:  "academic",
			StudentID: student.ID,
			ActorID:   user.ID,
		})
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if !user.Active {
		return dto.AuthResponse{}, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	loginAt := s.now()
	user.LastLoginAt = &loginAt
	if err := s.users.Update(ctx, &user); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to record last login")
	}

	if user.Role == models.RoleAdmin {
		s.bus.Publish(ctx, events.Event{
			Kind:     events.KindAdminLogin,
			Title:    "Admin Login",
			Message:  fmt.Sprintf("Admin logged in: %s", user.Email),
			Type:     models.NotificationInfo,
			Category: "system",
			ActorID:  user.ID,
		})
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) issueToken(user models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func studentFromSeed(userID uint, seed dto.StudentSeed) models.Student {
	student := models.Student{
		UserID:           userID,
		Name:             strings.TrimSpace(seed.Name),
		RegNo:            strings.TrimSpace(seed.RegNo),
		Gender:           seed.Gender,
		FatherName:       seed.FatherName,
		FatherOccupation: seed.FatherOccupation,
		MotherName:       seed.MotherName,
		MotherOccupation: seed.MotherOccupation,
		Mobile:           strings.TrimSpace(seed.Mobile),
		Address:          seed.Address,
	}
	if student.Name == "" {
		student.Name = "Student"
	}
	if dob := parseDate(seed.DateOfBirth); dob != nil {
		student.DateOfBirth = dob
	}
	student.RefreshProfileCompleted()
	return student
}

func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed
		}
	}
	return nil
}
