package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/mentorhub-api/internal/events"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/policy"
)

func overviewStudents() []models.Student {
	return []models.Student{
		{ID: 1, UserID: 10, Name: "Topper", Subjects: []models.Subject{{ID: "s1", Name: "Math", Marks: 95}}, CGPA: 10, AveragePercentage: 95, TotalMarks: 95},
		{ID: 2, UserID: 11, Name: "Solid", Subjects: []models.Subject{{ID: "s2", Name: "Math", Marks: 75}}, CGPA: 8, AveragePercentage: 75, TotalMarks: 75},
		{ID: 3, UserID: 12, Name: "Struggling", Subjects: []models.Subject{{ID: "s3", Name: "Math", Marks: 45}}, CGPA: 6, AveragePercentage: 45, TotalMarks: 45,
			Attendance: []models.AttendanceRecord{{ID: "a1", Month: "September", Year: 2024, DaysPresent: 10, TotalDays: 20, Percentage: 50}},
			Blackmarks: []models.Blackmark{{ID: "b1", Reason: "Late submissions", Severity: models.SeverityLow}}},
		{ID: 4, UserID: 13, Name: "Fresh"},
	}
}

func TestOverviewServiceBandsAndAverages(t *testing.T) {
	repo := newFakeStudentRepo(overviewStudents()...)
	svc := NewOverviewService(repo, nil, time.Minute, nil, testLogger())

	overview, err := svc.Overview(context.Background(), mentorActor())
	require.NoError(t, err)
	require.Equal(t, 4, overview.TotalStudents)
	require.Equal(t, 1, overview.Distribution.Excellent)
	require.Equal(t, 1, overview.Distribution.Good)
	require.Equal(t, 1, overview.Distribution.Average)
	require.Equal(t, 0, overview.Distribution.Poor)
	require.Equal(t, 2, overview.HighPerformers)
	require.Equal(t, 0, overview.LowPerformers)
	// Students with no subjects stay out of the CGPA average.
	require.Equal(t, 8.0, overview.AverageCGPA)
}

func TestOverviewServiceRequiresStaffRole(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewOverviewService(repo, nil, time.Minute, nil, testLogger())

	_, err := svc.Overview(context.Background(), policy.Actor{UserID: 10, Role: models.RoleStudent})
	require.ErrorIs(t, err, policy.ErrForbidden)
}

func TestOverviewServiceCachesUntilInvalidated(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	repo := newFakeStudentRepo(overviewStudents()...)
	bus := events.NewBus(testLogger())
	svc := NewOverviewService(repo, client, time.Minute, bus, testLogger())

	first, err := svc.Overview(context.Background(), mentorActor())
	require.NoError(t, err)
	require.Equal(t, 4, first.TotalStudents)

	// New data is invisible while the cache holds.
	require.NoError(t, repo.Create(context.Background(), &models.Student{UserID: 14, Name: "Latecomer"}))
	cached, err := svc.Overview(context.Background(), mentorActor())
	require.NoError(t, err)
	require.Equal(t, 4, cached.TotalStudents)

	// Any academic event flushes the cache.
	bus.Publish(context.Background(), events.Event{Kind: events.KindStudentRegistered})
	fresh, err := svc.Overview(context.Background(), mentorActor())
	require.NoError(t, err)
	require.Equal(t, 5, fresh.TotalStudents)
}

func TestMentorDashboardCollectsAlerts(t *testing.T) {
	repo := newFakeStudentRepo(overviewStudents()...)
	svc := NewOverviewService(repo, nil, time.Minute, nil, testLogger())

	dashboard, err := svc.MentorDashboard(context.Background(), mentorActor())
	require.NoError(t, err)
	require.Equal(t, 4, dashboard.Statistics.TotalStudents)
	require.Equal(t, 1, dashboard.Statistics.LowAttendanceStudents)
	require.Equal(t, 1, dashboard.Statistics.StudentsWithBlackmarks)
	require.Equal(t, 50.0, dashboard.Statistics.AverageAttendance)

	// Low attendance, low CGPA would need CGPA < 6; the struggling student
	// sits exactly at the band floor so only attendance and blackmark alerts fire.
	require.Equal(t, 0, dashboard.Statistics.LowCGPAStudents)
	require.Len(t, dashboard.Alerts, 2)
}
