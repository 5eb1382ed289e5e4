package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/events"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/policy"
	"github.com/mentorhub/mentorhub-api/internal/repository"
)

const (
	overviewCacheKey  = "overview:academics"
	dashboardCacheKey = "overview:mentor_dashboard"

	highPerformerCGPA = 8.0
	lowPerformerCGPA  = 6.0
)

// OverviewService produces the aggregated cohort statistics for mentors and
// admins. Results are cached and invalidated whenever an academic event lands.
type OverviewService interface {
	Overview(ctx context.Context, actor policy.Actor) (dto.OverviewResponse, error)
	MentorDashboard(ctx context.Context, actor policy.Actor) (dto.MentorDashboardResponse, error)
}

type overviewService struct {
	students repository.StudentRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewOverviewService builds the cohort statistics aggregator. The bus
// subscription keeps cached views from outliving the data underneath them.
func NewOverviewService(students repository.StudentRepository, cache *redis.Client, ttl time.Duration, bus *events.Bus, logger zerolog.Logger) OverviewService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	s := &overviewService{
		students: students,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "overview_service").Logger(),
	}
	if bus != nil {
		for _, kind := range []events.Kind{events.KindMarksChanged, events.KindAttendanceRecorded, events.KindBlackmarkAssigned, events.KindStudentRegistered} {
			bus.Subscribe(kind, s.invalidate)
		}
	}
	return s
}

func (s *overviewService) Overview(ctx context.Context, actor policy.Actor) (dto.OverviewResponse, error) {
	if err := policy.Authorize(actor, policy.ActionReadOverview, 0); err != nil {
		return dto.OverviewResponse{}, err
	}

	var cached dto.OverviewResponse
	if s.readCache(ctx, overviewCacheKey, &cached) {
		return cached, nil
	}

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return dto.OverviewResponse{}, err
	}

	response := buildOverview(students)
	s.writeCache(ctx, overviewCacheKey, response)
	return response, nil
}

func (s *overviewService) MentorDashboard(ctx context.Context, actor policy.Actor) (dto.MentorDashboardResponse, error) {
	if err := policy.Authorize(actor, policy.ActionReadOverview, 0); err != nil {
		return dto.MentorDashboardResponse{}, err
	}

	var cached dto.MentorDashboardResponse
	if s.readCache(ctx, dashboardCacheKey, &cached) {
		return cached, nil
	}

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return dto.MentorDashboardResponse{}, err
	}

	response := buildMentorDashboard(students)
	s.writeCache(ctx, dashboardCacheKey, response)
	return response, nil
}

func (s *overviewService) invalidate(ctx context.Context, event events.Event) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Del(ctx, overviewCacheKey, dashboardCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate overview cache: %w", err)
	}
	s.logger.Debug().Str("kind", string(event.Kind)).Msg("overview cache invalidated")
	return nil
}

func (s *overviewService) readCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}
	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read overview cache")
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), target); err != nil {
		return false
	}
	s.logger.Debug().Str("key", key).Msg("overview cache hit")
	return true
}

func (s *overviewService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store overview cache")
	}
}

func buildOverview(students []models.Student) dto.OverviewResponse {
	response := dto.OverviewResponse{TotalStudents: len(students)}

	var cgpaTotal float64
	var withSubjects int
	for _, student := range students {
		if len(student.Subjects) == 0 {
			continue
		}
		withSubjects++
		cgpaTotal += student.CGPA

		switch {
		case student.CGPA >= 9:
			response.Distribution.Excellent++
		case student.CGPA >= 7:
			response.Distribution.Good++
		case student.CGPA >= 5:
			response.Distribution.Average++
		default:
			response.Distribution.Poor++
		}
		if student.CGPA >= highPerformerCGPA {
			response.HighPerformers++
		}
		if student.CGPA < lowPerformerCGPA {
			response.LowPerformers++
		}
	}
	if withSubjects > 0 {
		response.AverageCGPA = roundTo2(cgpaTotal / float64(withSubjects))
	}
	return response
}

func buildMentorDashboard(students []models.Student) dto.MentorDashboardResponse {
	overview := buildOverview(students)
	response := dto.MentorDashboardResponse{
		Statistics:   dto.MentorDashboardStats{TotalStudents: len(students)},
		Alerts:       []dto.DashboardAlert{},
		Distribution: overview.Distribution,
	}
	response.Statistics.AverageCGPA = overview.AverageCGPA

	var attendanceTotal float64
	var withAttendance int
	for _, student := range students {
		attendance := student.OverallAttendance()
		if len(student.Attendance) > 0 {
			withAttendance++
			attendanceTotal += attendance
			if attendance < lowAttendanceThreshold {
				response.Statistics.LowAttendanceStudents++
				response.Alerts = append(response.Alerts, dto.DashboardAlert{
					Type:      models.NotificationWarning,
					Message:   fmt.Sprintf("%s has low attendance: %.0f%%", student.Name, attendance),
					StudentID: student.ID,
				})
			}
		}
		if len(student.Subjects) > 0 && student.CGPA < lowPerformerCGPA {
			response.Statistics.LowCGPAStudents++
			response.Alerts = append(response.Alerts, dto.DashboardAlert{
				Type:      models.NotificationWarning,
				Message:   fmt.Sprintf("%s has a low CGPA: %.1f", student.Name, student.CGPA),
				StudentID: student.ID,
			})
		}
		if len(student.Blackmarks) > 0 {
			response.Statistics.StudentsWithBlackmarks++
			response.Alerts = append(response.Alerts, dto.DashboardAlert{
				Type:      models.NotificationError,
				Message:   fmt.Sprintf("%s has %d blackmark(s)", student.Name, len(student.Blackmarks)),
				StudentID: student.ID,
			})
		}
	}
	if withAttendance > 0 {
		response.Statistics.AverageAttendance = roundTo2(attendanceTotal / float64(withAttendance))
	}
	return response
}

func roundTo2(value float64) float64 {
	return math.Round(value*100) / 100
}
