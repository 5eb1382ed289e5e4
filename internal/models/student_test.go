package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBandCGPABoundaries(t *testing.T) {
	cases := []struct {
		average float64
		want    float64
	}{
		{100, 10},
		{90.0, 10},
		{89.99, 9},
		{80, 9},
		{79.99, 8},
		{70, 8},
		{69.5, 7},
		{60, 7},
		{59.99, 6},
		{40, 6},
		{0, 6},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, BandCGPA(tc.average), "average %.2f", tc.average)
	}
}

func TestUpsertSubjectRecomputesSummary(t *testing.T) {
	now := time.Now()
	student := Student{}

	_, updated, err := student.UpsertSubject("Math", 85, now)
	require.NoError(t, err)
	require.False(t, updated)
	require.Equal(t, 85.0, student.TotalMarks)
	require.Equal(t, 85.0, student.AveragePercentage)
	require.Equal(t, 9.0, student.CGPA)

	_, updated, err = student.UpsertSubject("Physics", 65, now)
	require.NoError(t, err)
	require.False(t, updated)
	require.Equal(t, 150.0, student.TotalMarks)
	require.Equal(t, 75.0, student.AveragePercentage)
	require.Equal(t, 8.0, student.CGPA)

	var mathID string
	for _, subject := range student.Subjects {
		if subject.Name == "Math" {
			mathID = subject.ID
		}
	}
	require.True(t, student.RemoveSubject(mathID))
	require.Equal(t, 65.0, student.TotalMarks)
	require.Equal(t, 65.0, student.AveragePercentage)
	require.Equal(t, 7.0, student.CGPA)
}

func TestUpsertSubjectCaseInsensitive(t *testing.T) {
	now := time.Now()
	student := Student{}

	_, _, err := student.UpsertSubject("Math", 70, now)
	require.NoError(t, err)

	later := now.Add(time.Hour)
	subject, updated, err := student.UpsertSubject("math", 80, later)
	require.NoError(t, err)
	require.True(t, updated)
	require.Len(t, student.Subjects, 1)
	require.Equal(t, "Math", subject.Name, "original casing is kept")
	require.Equal(t, 80.0, subject.Marks)
	require.Equal(t, later, subject.AddedAt)
	require.Equal(t, 80.0, student.TotalMarks)
}

func TestUpsertSubjectRejectsOutOfRangeMarks(t *testing.T) {
	student := Student{}
	now := time.Now()

	for _, marks := range []float64{-1, 100.5, 200} {
		_, _, err := student.UpsertSubject("Chemistry", marks, now)
		require.Error(t, err)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
	}
	require.Empty(t, student.Subjects)
}

func TestRemoveSubjectUnknownIDStillRecomputes(t *testing.T) {
	student := Student{}
	now := time.Now()
	_, _, err := student.UpsertSubject("Math", 50, now)
	require.NoError(t, err)

	// Force a stale summary, then confirm the no-op removal repairs it.
	student.TotalMarks = 999
	require.False(t, student.RemoveSubject("missing"))
	require.Equal(t, 50.0, student.TotalMarks)
	require.Len(t, student.Subjects, 1)
}

func TestRecomputeSummaryEmpty(t *testing.T) {
	student := Student{TotalMarks: 12, AveragePercentage: 3, CGPA: 7}
	student.RecomputeSummary()
	require.Zero(t, student.TotalMarks)
	require.Zero(t, student.AveragePercentage)
	require.Zero(t, student.CGPA)
}

func TestUpsertAttendanceKeying(t *testing.T) {
	student := Student{}
	now := time.Now()

	record, updated, err := student.UpsertAttendance("September", 2024, 18, 22, now)
	require.NoError(t, err)
	require.False(t, updated)
	require.Equal(t, 82, record.Percentage)

	_, updated, err = student.UpsertAttendance("September", 2024, 20, 22, now.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, updated)
	require.Len(t, student.Attendance, 1)
	require.Equal(t, 91, student.Attendance[0].Percentage)

	_, updated, err = student.UpsertAttendance("September", 2025, 10, 20, now)
	require.NoError(t, err)
	require.False(t, updated)
	require.Len(t, student.Attendance, 2)

	// Month strings are not normalized.
	_, updated, err = student.UpsertAttendance("september", 2024, 5, 20, now)
	require.NoError(t, err)
	require.False(t, updated)
	require.Len(t, student.Attendance, 3)
}

func TestUpsertAttendanceRejections(t *testing.T) {
	student := Student{}
	now := time.Now()

	cases := []struct {
		present, total int
	}{
		{0, -1},
		{0, 0},
		{31, 30},
		{1, 0},
		{-1, 30},
	}
	for _, tc := range cases {
		_, _, err := student.UpsertAttendance("January", 2025, tc.present, tc.total, now)
		require.Error(t, err, "present=%d total=%d", tc.present, tc.total)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
	}
	require.Empty(t, student.Attendance)
}

func TestOverallAttendanceIsMeanOfPercentages(t *testing.T) {
	student := Student{}
	now := time.Now()

	require.Zero(t, student.OverallAttendance())

	_, _, err := student.UpsertAttendance("January", 2025, 20, 20, now) // 100
	require.NoError(t, err)
	_, _, err = student.UpsertAttendance("February", 2025, 10, 20, now) // 50
	require.NoError(t, err)

	require.Equal(t, 75.0, student.OverallAttendance())
}

func TestBlackmarksAppendOnly(t *testing.T) {
	student := Student{}
	now := time.Now()

	first, err := student.AppendBlackmark("Late submission", SeverityLow, 7, now)
	require.NoError(t, err)
	_, err = student.AppendBlackmark("Misconduct", SeverityHigh, 7, now)
	require.NoError(t, err)
	require.Len(t, student.Blackmarks, 2)

	_, err = student.AppendBlackmark("whatever", "Critical", 7, now)
	require.Error(t, err)
	require.Len(t, student.Blackmarks, 2)

	require.True(t, student.RemoveBlackmark(first.ID))
	require.Len(t, student.Blackmarks, 1)
	require.False(t, student.RemoveBlackmark(first.ID))
}

func TestAppendFeedbackAndLatest(t *testing.T) {
	student := Student{}
	author := FeedbackAuthor{ID: 3, Name: "priya", Email: "priya@school.edu"}
	base := time.Now()

	require.Nil(t, student.LatestFeedback())

	_, err := student.AppendFeedback("too short", FeedbackAcademic, author, base)
	require.Error(t, err)

	_, err = student.AppendFeedback("Strong improvement in algebra this term.", FeedbackAcademic, author, base)
	require.NoError(t, err)
	second, err := student.AppendFeedback("Attendance has slipped below expectations.", FeedbackAttendance, author, base.Add(time.Minute))
	require.NoError(t, err)

	latest := student.LatestFeedback()
	require.NotNil(t, latest)
	require.Equal(t, second.ID, latest.ID)
	require.Len(t, student.FeedbackHistory, 2)

	_, err = student.AppendFeedback("A perfectly valid feedback text.", "general", author, base)
	require.Error(t, err)
}

func TestRefreshProfileCompleted(t *testing.T) {
	student := Student{Name: "Asha", RegNo: "REG-001", Mobile: "9876543210"}
	student.RefreshProfileCompleted()
	require.True(t, student.ProfileCompleted)

	student.Mobile = "  "
	student.RefreshProfileCompleted()
	require.False(t, student.ProfileCompleted)

	student.Mobile = "9876543210"
	student.Name = ""
	student.RefreshProfileCompleted()
	require.False(t, student.ProfileCompleted)
}
