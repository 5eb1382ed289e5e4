package service

import "errors"

// Sentinel errors shared across the service layer. Handlers map these onto
// HTTP statuses.
var (
	ErrStudentNotFound      = errors.New("student not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrAttendanceNotFound   = errors.New("attendance record not found")
	ErrBlackmarkNotFound    = errors.New("blackmark not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrMessageNotFound      = errors.New("message not found")

	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrRegNoTaken         = errors.New("student with this registration number already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrInvalidAdminSecret = errors.New("invalid admin secret code")
)
