package dto

// UpsertSubjectRequest adds or updates marks for one subject.
type UpsertSubjectRequest struct {
	StudentID   uint    `json:"studentId" validate:"required"`
	SubjectName string  `json:"subjectName" validate:"required,min=1"`
	Marks       float64 `json:"marks" validate:"gte=0,lte=100"`
}

// CGPADistribution buckets students by CGPA band.
type CGPADistribution struct {
	Excellent int `json:"excellent"` // >= 9
	Good      int `json:"good"`      // 7 - 8.9
	Average   int `json:"average"`   // 5 - 6.9
	Poor      int `json:"poor"`      // < 5
}

// OverviewResponse is the aggregate academic statistics view.
type OverviewResponse struct {
	TotalStudents  int              `json:"totalStudents"`
	AverageCGPA    float64          `json:"averageCGPA"`
	HighPerformers int              `json:"highPerformers"` // CGPA >= 8
	LowPerformers  int              `json:"lowPerformers"`  // CGPA < 6
	Distribution   CGPADistribution `json:"cgpaDistribution"`
}

// DashboardAlert is one row of the mentor dashboard activity feed.
type DashboardAlert struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	StudentID uint   `json:"student_id"`
}

// MentorDashboardStats totals the mentor dashboard.
type MentorDashboardStats struct {
	TotalStudents          int     `json:"totalStudents"`
	LowAttendanceStudents  int     `json:"lowAttendanceStudents"`
	LowCGPAStudents        int     `json:"lowCGPAStudents"`
	StudentsWithBlackmarks int     `json:"studentsWithBlackmarks"`
	AverageAttendance      float64 `json:"averageAttendance"`
	AverageCGPA            float64 `json:"averageCGPA"`
}

// MentorDashboardResponse is the mentor landing view.
type MentorDashboardResponse struct {
	Statistics   MentorDashboardStats `json:"statistics"`
	Alerts       []DashboardAlert     `json:"alerts"`
	Distribution CGPADistribution     `json:"cgpaDistribution"`
}
