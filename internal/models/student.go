package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Blackmark severities.
const (
	SeverityLow    = "Low"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

// Feedback types accepted by the portal.
const (
	FeedbackAcademic   = "academic"
	FeedbackAttendance = "attendance"
	FeedbackBehavior   = "behavior"
	FeedbackOverall    = "overall"
)

// minFeedbackLength is the smallest feedback text accepted, measured after
// trimming surrounding whitespace.
const minFeedbackLength = 10

// Subject is a single graded subject inside a student's academic record.
// Names are unique per student, compared case-insensitively.
type Subject struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Marks   float64   `json:"marks"`
	AddedAt time.Time `json:"added_at"`
}

// AttendanceRecord is a monthly attendance entry, keyed by the exact
// (month, year) pair. The percentage is computed at write time.
type AttendanceRecord struct {
	ID          string    `json:"id"`
	Month       string    `json:"month"`
	Year        int       `json:"year"`
	DaysPresent int       `json:"days_present"`
	TotalDays   int       `json:"total_days"`
	Percentage  int       `json:"percentage"`
	AddedAt     time.Time `json:"added_at"`
}

// Blackmark is a disciplinary record. Entries are append-only; the only
// removal path is the explicit mentor/admin delete by id.
type Blackmark struct {
	ID         string    `json:"id"`
	Reason     string    `json:"reason"`
	Severity   string    `json:"severity"`
	AssignedBy uint      `json:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at"`
}

// FeedbackEntry is a mentor-authored feedback record. The history is
// append-only; the newest entry doubles as the student's latest feedback.
type FeedbackEntry struct {
	ID           string    `json:"id"`
	Feedback     string    `json:"feedback"`
	FeedbackType string    `json:"feedback_type"`
	CreatedAt    time.Time `json:"created_at"`
	MentorID     uint      `json:"mentor_id"`
	MentorName   string    `json:"mentor_name"`
	MentorEmail  string    `json:"mentor_email"`
}

// FeedbackAuthor identifies the mentor recorded on a feedback entry.
type FeedbackAuthor struct {
	ID    uint
	Name  string
	Email string
}

// Student is the aggregate root: one row per student holding the nested
// collections as JSON columns, mirroring a single denormalized document.
// All academic state is mutated through the methods below so the derived
// summary can never go stale.
type Student struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `json:"-"`

	// Identity and contact, editable by the student or an admin only.
	Name             string     `gorm:"size:255;not null" json:"name"`
	RegNo            string     `gorm:"size:64;uniqueIndex;not null" json:"reg_no"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	Gender           string     `gorm:"size:16" json:"gender,omitempty"`
	FatherName       string     `gorm:"size:255" json:"father_name,omitempty"`
	FatherOccupation string     `gorm:"size:255" json:"father_occupation,omitempty"`
	MotherName       string     `gorm:"size:255" json:"mother_name,omitempty"`
	MotherOccupation string     `gorm:"size:255" json:"mother_occupation,omitempty"`
	Mobile           string     `gorm:"size:32" json:"mobile"`
	Address          string     `gorm:"type:text" json:"address,omitempty"`

	Subjects        datatypes.JSONSlice[Subject]          `gorm:"type:json" json:"subjects"`
	Attendance      datatypes.JSONSlice[AttendanceRecord] `gorm:"type:json" json:"attendance"`
	Blackmarks      datatypes.JSONSlice[Blackmark]        `gorm:"type:json" json:"blackmarks"`
	FeedbackHistory datatypes.JSONSlice[FeedbackEntry]    `gorm:"type:json" json:"feedback_history"`

	// Derived summary, recomputed synchronously after every subject mutation.
	TotalMarks        float64 `gorm:"not null;default:0" json:"total_marks"`
	AveragePercentage float64 `gorm:"not null;default:0" json:"average_percentage"`
	CGPA              float64 `gorm:"not null;default:0" json:"cgpa"`

	ProfileCompleted bool `gorm:"not null;default:false" json:"profile_completed"`

	// Version guards concurrent mentor edits: saves are conditional on the
	// version read, and bump it on success.
	Version int64 `gorm:"not null;default:0" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BandCGPA maps an average percentage onto the portal's CGPA scale. The
// thresholds are part of the external contract and must not be adjusted:
// averages below 60 all band to 6.
func BandCGPA(averagePercentage float64) float64 {
	switch {
	case averagePercentage >= 90:
		return 10
	case averagePercentage >= 80:
		return 9
	case averagePercentage >= 70:
		return 8
	case averagePercentage >= 60:
		return 7
	default:
		return 6
	}
}

// RecomputeSummary refreshes the derived academic totals from the current
// subject list. With no subjects every summary field is zero.
func (s *Student) RecomputeSummary() {
	if len(s.Subjects) == 0 {
		s.TotalMarks = 0
		s.AveragePercentage = 0
		s.CGPA = 0
		return
	}

	var total float64
	for _, subject := range s.Subjects {
		total += subject.Marks
	}

	s.TotalMarks = total
	s.AveragePercentage = total / float64(len(s.Subjects))
	s.CGPA = BandCGPA(s.AveragePercentage)
}

// UpsertSubject adds a subject or, when the name matches an existing entry
// case-insensitively, replaces its marks in place. The summary is recomputed
// before returning. Reports whether an existing entry was updated.
func (s *Student) UpsertSubject(name string, marks float64, now time.Time) (Subject, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Subject{}, false, NewValidationError("subjectName", "subject name is required")
	}
	if marks < 0 || marks > 100 {
		return Subject{}, false, NewValidationError("marks", "marks must be between 0 and 100")
	}

	for i := range s.Subjects {
		if strings.EqualFold(s.Subjects[i].Name, name) {
			s.Subjects[i].Marks = marks
			s.Subjects[i].AddedAt = now
			s.RecomputeSummary()
			return s.Subjects[i], true, nil
		}
	}

	subject := Subject{
		ID:      uuid.NewString(),
		Name:    name,
		Marks:   marks,
		AddedAt: now,
	}
	s.Subjects = append(s.Subjects, subject)
	s.RecomputeSummary()
	return subject, false, nil
}

// RemoveSubject drops the subject with the given id. Removing an unknown id
// is a no-op; the summary is recomputed either way.
func (s *Student) RemoveSubject(subjectID string) bool {
	removed := false
	kept := s.Subjects[:0]
	for _, subject := range s.Subjects {
		if subject.ID == subjectID {
			removed = true
			continue
		}
		kept = append(kept, subject)
	}
	s.Subjects = kept
	s.RecomputeSummary()
	return removed
}

// UpsertAttendance records attendance for a (month, year) pair, replacing an
// existing entry for the exact same pair. Month strings are compared as-is;
// "September" and "september" are distinct keys. The stored percentage is
// rounded to the nearest whole percent.
func (s *Student) UpsertAttendance(month string, year, daysPresent, totalDays int, now time.Time) (AttendanceRecord, bool, error) {
	if strings.TrimSpace(month) == "" {
		return AttendanceRecord{}, false, NewValidationError("month", "month is required")
	}
	if totalDays < 1 {
		return AttendanceRecord{}, false, NewValidationError("totalDays", "total days must be at least 1")
	}
	if daysPresent < 0 {
		return AttendanceRecord{}, false, NewValidationError("daysPresent", "days present cannot be negative")
	}
	if daysPresent > totalDays {
		return AttendanceRecord{}, false, NewValidationError("daysPresent", "days present cannot be greater than total days")
	}

	percentage := int(math.Round(float64(daysPresent) / float64(totalDays) * 100))

	for i := range s.Attendance {
		if s.Attendance[i].Month == month && s.Attendance[i].Year == year {
			s.Attendance[i].DaysPresent = daysPresent
			s.Attendance[i].TotalDays = totalDays
			s.Attendance[i].Percentage = percentage
			s.Attendance[i].AddedAt = now
			return s.Attendance[i], true, nil
		}
	}

	record := AttendanceRecord{
		ID:          uuid.NewString(),
		Month:       month,
		Year:        year,
		DaysPresent: daysPresent,
		TotalDays:   totalDays,
		Percentage:  percentage,
		AddedAt:     now,
	}
	s.Attendance = append(s.Attendance, record)
	return record, false, nil
}

// RemoveAttendance drops the attendance record with the given id.
func (s *Student) RemoveAttendance(recordID string) bool {
	removed := false
	kept := s.Attendance[:0]
	for _, record := range s.Attendance {
		if record.ID == recordID {
			removed = true
			continue
		}
		kept = append(kept, record)
	}
	s.Attendance = kept
	return removed
}

// OverallAttendance is the arithmetic mean of the stored monthly
// percentages. Months are weighted equally regardless of their length.
func (s *Student) OverallAttendance() float64 {
	if len(s.Attendance) == 0 {
		return 0
	}
	var sum float64
	for _, record := range s.Attendance {
		sum += float64(record.Percentage)
	}
	return sum / float64(len(s.Attendance))
}

// AppendBlackmark adds a disciplinary record. Blackmarks are never edited
// after creation.
func (s *Student) AppendBlackmark(reason, severity string, assignedBy uint, now time.Time) (Blackmark, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Blackmark{}, NewValidationError("reason", "reason is required")
	}
	switch severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		return Blackmark{}, NewValidationError("severity", "severity must be Low, Medium or High")
	}

	mark := Blackmark{
		ID:         uuid.NewString(),
		Reason:     reason,
		Severity:   severity,
		AssignedBy: assignedBy,
		AssignedAt: now,
	}
	s.Blackmarks = append(s.Blackmarks, mark)
	return mark, nil
}

// RemoveBlackmark drops the blackmark with the given id.
func (s *Student) RemoveBlackmark(blackmarkID string) bool {
	removed := false
	kept := s.Blackmarks[:0]
	for _, mark := range s.Blackmarks {
		if mark.ID == blackmarkID {
			removed = true
			continue
		}
		kept = append(kept, mark)
	}
	s.Blackmarks = kept
	return removed
}

// AppendFeedback adds a mentor feedback entry to the history.
func (s *Student) AppendFeedback(text, feedbackType string, author FeedbackAuthor, now time.Time) (FeedbackEntry, error) {
	text = strings.TrimSpace(text)
	if len(text) < minFeedbackLength {
		return FeedbackEntry{}, NewValidationError("feedback", "feedback must be at least %d characters", minFeedbackLength)
	}
	switch feedbackType {
	case FeedbackAcademic, FeedbackAttendance, FeedbackBehavior, FeedbackOverall:
	default:
		return FeedbackEntry{}, NewValidationError("type", "invalid feedback type")
	}

	entry := FeedbackEntry{
		ID:           uuid.NewString(),
		Feedback:     text,
		FeedbackType: feedbackType,
		CreatedAt:    now,
		MentorID:     author.ID,
		MentorName:   author.Name,
		MentorEmail:  author.Email,
	}
	s.FeedbackHistory = append(s.FeedbackHistory, entry)
	return entry, nil
}

// LatestFeedback returns the most recent feedback entry, or nil when the
// history is empty. The value is computed from the history rather than
// mirrored into a second stored field, so it cannot drift.
func (s *Student) LatestFeedback() *FeedbackEntry {
	if len(s.FeedbackHistory) == 0 {
		return nil
	}
	latest := &s.FeedbackHistory[0]
	for i := range s.FeedbackHistory {
		if s.FeedbackHistory[i].CreatedAt.After(latest.CreatedAt) {
			latest = &s.FeedbackHistory[i]
		}
	}
	return latest
}

// RefreshProfileCompleted recomputes the completion flag: name, registration
// number and mobile must all be present.
func (s *Student) RefreshProfileCompleted() {
	s.ProfileCompleted = strings.TrimSpace(s.Name) != "" &&
		strings.TrimSpace(s.RegNo) != "" &&
		strings.TrimSpace(s.Mobile) != ""
}
