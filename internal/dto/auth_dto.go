package dto

import (
	"time"

	"github.com/mentorhub/mentorhub-api/internal/models"
)

// StudentSeed carries the optional profile details supplied at registration.
type StudentSeed struct {
	Name             string `json:"name"`
	RegNo            string `json:"regNo"`
	DateOfBirth      string `json:"dateOfBirth"`
	Gender           string `json:"gender"`
	FatherName       string `json:"fatherName"`
	FatherOccupation string `json:"fatherOccupation"`
	MotherName       string `json:"motherName"`
	MotherOccupation string `json:"motherOccupation"`
	Mobile           string `json:"mobile"`
	Address          string `json:"address"`
}

// RegisterRequest is the self-service registration payload. Admin
// registration additionally requires the shared admin secret.
type RegisterRequest struct {
	Email       string       `json:"email" validate:"required,email"`
	Password    string       `json:"password" validate:"required,min=6"`
	Role        string       `json:"role" validate:"required,oneof=student admin"`
	AdminSecret string       `json:"adminSecret"`
	Student     *StudentSeed `json:"studentData"`
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// AuthResponse is returned on successful registration or login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// NewUserResponse maps an account model to its public view.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Role:        string(user.Role),
		Active:      user.Active,
		LastLoginAt: user.LastLoginAt,
	}
}
