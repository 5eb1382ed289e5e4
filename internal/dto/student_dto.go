package dto

import (
	"math"
	"time"

	"github.com/mentorhub/mentorhub-api/internal/models"
)

// ProfileUpdateRequest carries a partial update of identity, parent and
// contact fields. Nil pointers leave the stored value untouched.
type ProfileUpdateRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1"`
	RegNo            *string `json:"regNo" validate:"omitempty,min=1"`
	DateOfBirth      *string `json:"dateOfBirth"`
	Gender           *string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	FatherName       *string `json:"fatherName"`
	FatherOccupation *string `json:"fatherOccupation"`
	MotherName       *string `json:"motherName"`
	MotherOccupation *string `json:"motherOccupation"`
	Mobile           *string `json:"mobile" validate:"omitempty,min=10"`
	Address          *string `json:"address"`
}

// CreateStudentRequest is the admin path for provisioning an account plus a
// completed profile in one call.
type CreateStudentRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Profile  StudentSeed `json:"profile" validate:"required"`
}

// AcademicsSummary is the derived portion of the academic record.
type AcademicsSummary struct {
	TotalMarks        float64 `json:"total_marks"`
	AveragePercentage float64 `json:"average_percentage"`
	CGPA              float64 `json:"cgpa"`
}

// AcademicsResponse is the academic record: subjects plus summary.
type AcademicsResponse struct {
	Subjects []models.Subject `json:"subjects"`
	Summary  AcademicsSummary `json:"summary"`
}

// StudentInfo is the minimal identity block attached to academic payloads.
type StudentInfo struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	RegNo string `json:"reg_no"`
	Email string `json:"email,omitempty"`
}

// StudentAcademicsResponse pairs identity with the academic record.
type StudentAcademicsResponse struct {
	StudentInfo StudentInfo       `json:"studentInfo"`
	Academics   AcademicsResponse `json:"academics"`
}

// StudentListItem is one row of the mentor/admin student listing.
type StudentListItem struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	RegNo             string    `json:"reg_no"`
	Email             string    `json:"email"`
	CGPA              float64   `json:"cgpa"`
	OverallAttendance float64   `json:"overall_attendance"`
	Blackmarks        int       `json:"blackmarks"`
	ProfileCompleted  bool      `json:"profile_completed"`
	CreatedAt         time.Time `json:"created_at"`
}

// PaginationMeta describes a paginated listing.
type PaginationMeta struct {
	Page         int   `json:"page"`
	PageSize     int   `json:"page_size"`
	TotalPages   int   `json:"total_pages"`
	TotalRecords int64 `json:"total_records"`
}

// StudentListResponse is the paginated student listing.
type StudentListResponse struct {
	Students   []StudentListItem `json:"students"`
	Pagination PaginationMeta    `json:"pagination"`
}

// AttendanceOverview pairs the monthly history with the unweighted overall
// mean used across the portal.
type AttendanceOverview struct {
	Overall float64                   `json:"overall"`
	History []models.AttendanceRecord `json:"history"`
}

// StudentDetailResponse is the full profile view for mentors and admins.
type StudentDetailResponse struct {
	ID               uint                    `json:"id"`
	User             UserResponse            `json:"user"`
	Name             string                  `json:"name"`
	RegNo            string                  `json:"reg_no"`
	DateOfBirth      *time.Time              `json:"date_of_birth,omitempty"`
	Gender           string                  `json:"gender,omitempty"`
	FatherName       string                  `json:"father_name,omitempty"`
	FatherOccupation string                  `json:"father_occupation,omitempty"`
	MotherName       string                  `json:"mother_name,omitempty"`
	MotherOccupation string                  `json:"mother_occupation,omitempty"`
	Mobile           string                  `json:"mobile"`
	Address          string                  `json:"address,omitempty"`
	Academics        AcademicsResponse       `json:"academics"`
	Attendance       AttendanceOverview      `json:"attendance"`
	Blackmarks       []models.Blackmark      `json:"blackmarks"`
	LatestFeedback   *models.FeedbackEntry   `json:"latest_feedback,omitempty"`
	FeedbackHistory  []models.FeedbackEntry  `json:"feedback_history"`
	ProfileCompleted bool                    `json:"profile_completed"`
	Version          int64                   `json:"version"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// StudentDashboardResponse is the student's own landing view.
type StudentDashboardResponse struct {
	Name              string                `json:"name"`
	RegNo             string                `json:"reg_no"`
	Academics         AcademicsResponse     `json:"academics"`
	OverallAttendance float64               `json:"overall_attendance"`
	BlackmarkCount    int                   `json:"blackmark_count"`
	LatestFeedback    *models.FeedbackEntry `json:"latest_feedback,omitempty"`
	ProfileCompleted  bool                  `json:"profile_completed"`
}

// AttendanceRequest records one month of attendance.
type AttendanceRequest struct {
	Month       string `json:"month" validate:"required"`
	Year        int    `json:"year" validate:"required,gte=2000,lte=2100"`
	DaysPresent int    `json:"daysPresent" validate:"gte=0"`
	TotalDays   int    `json:"totalDays" validate:"required,gte=1"`
}

// BulkAttendanceEntry is one student's slot in a bulk upload.
type BulkAttendanceEntry struct {
	StudentID   uint   `json:"studentId" validate:"required"`
	Month       string `json:"month" validate:"required"`
	Year        int    `json:"year" validate:"required,gte=2000,lte=2100"`
	DaysPresent int    `json:"daysPresent" validate:"gte=0"`
	TotalDays   int    `json:"totalDays" validate:"required,gte=1"`
}

// BulkAttendanceRequest uploads attendance for many students at once.
type BulkAttendanceRequest struct {
	Entries []BulkAttendanceEntry `json:"attendanceData" validate:"required,min=1,dive"`
}

// BulkAttendanceResult reports one entry's outcome; entries succeed or fail
// independently.
type BulkAttendanceResult struct {
	StudentID   uint   `json:"studentId"`
	StudentName string `json:"studentName,omitempty"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Percentage  *int   `json:"percentage,omitempty"`
}

// BulkAttendanceSummary totals a bulk run.
type BulkAttendanceSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// BulkAttendanceResponse is the full bulk outcome.
type BulkAttendanceResponse struct {
	Results []BulkAttendanceResult `json:"results"`
	Summary BulkAttendanceSummary  `json:"summary"`
}

// NewAcademicsResponse maps the aggregate's academic record.
func NewAcademicsResponse(student models.Student) AcademicsResponse {
	subjects := student.Subjects
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return AcademicsResponse{
		Subjects: subjects,
		Summary: AcademicsSummary{
			TotalMarks:        student.TotalMarks,
			AveragePercentage: student.AveragePercentage,
			CGPA:              student.CGPA,
		},
	}
}

// NewStudentListItem maps one aggregate to a listing row.
func NewStudentListItem(student models.Student) StudentListItem {
	return StudentListItem{
		ID:                student.ID,
		Name:              student.Name,
		RegNo:             student.RegNo,
		Email:             student.User.Email,
		CGPA:              student.CGPA,
		OverallAttendance: round2(student.OverallAttendance()),
		Blackmarks:        len(student.Blackmarks),
		ProfileCompleted:  student.ProfileCompleted,
		CreatedAt:         student.CreatedAt,
	}
}

// NewStudentDetailResponse maps the full aggregate.
func NewStudentDetailResponse(student models.Student) StudentDetailResponse {
	blackmarks := student.Blackmarks
	if blackmarks == nil {
		blackmarks = []models.Blackmark{}
	}
	history := student.FeedbackHistory
	if history == nil {
		history = []models.FeedbackEntry{}
	}
	attendance := student.Attendance
	if attendance == nil {
		attendance = []models.AttendanceRecord{}
	}

	return StudentDetailResponse{
		ID:               student.ID,
		User:             NewUserResponse(student.User),
		Name:             student.Name,
		RegNo:            student.RegNo,
		DateOfBirth:      student.DateOfBirth,
		Gender:           student.Gender,
		FatherName:       student.FatherName,
		FatherOccupation: student.FatherOccupation,
		MotherName:       student.MotherName,
		MotherOccupation: student.MotherOccupation,
		Mobile:           student.Mobile,
		Address:          student.Address,
		Academics:        NewAcademicsResponse(student),
		Attendance: AttendanceOverview{
			Overall: round2(student.OverallAttendance()),
			History: attendance,
		},
		Blackmarks:       blackmarks,
		LatestFeedback:   student.LatestFeedback(),
		FeedbackHistory:  history,
		ProfileCompleted: student.ProfileCompleted,
		Version:          student.Version,
		CreatedAt:        student.CreatedAt,
		UpdatedAt:        student.UpdatedAt,
	}
}

// NewStudentDashboardResponse maps the aggregate to the student's own view.
func NewStudentDashboardResponse(student models.Student) StudentDashboardResponse {
	return StudentDashboardResponse{
		Name:              student.Name,
		RegNo:             student.RegNo,
		Academics:         NewAcademicsResponse(student),
		OverallAttendance: round2(student.OverallAttendance()),
		BlackmarkCount:    len(student.Blackmarks),
		LatestFeedback:    student.LatestFeedback(),
		ProfileCompleted:  student.ProfileCompleted,
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
