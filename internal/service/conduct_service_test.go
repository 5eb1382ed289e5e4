package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mentorhub/mentorhub-api/internal/events"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/policy"
)

func TestConductServiceAssignSeverityDrivesNotificationType(t *testing.T) {
	cases := []struct {
		severity string
		want     string
	}{
		{models.SeverityHigh, models.NotificationError},
		{models.SeverityMedium, models.NotificationWarning},
		{models.SeverityLow, models.NotificationInfo},
	}

	for _, tc := range cases {
		t.Run(tc.severity, func(t *testing.T) {
			repo := newFakeStudentRepo(seededStudent())
			bus := events.NewBus(testLogger())
			recorder := &eventRecorder{}
			bus.Subscribe(events.KindBlackmarkAssigned, recorder.Handle)

			svc := NewConductService(repo, bus, testLogger())

			marks, err := svc.Assign(context.Background(), mentorActor(), 1, "Repeated late submissions", tc.severity)
			require.NoError(t, err)
			require.Len(t, marks, 1)
			require.Equal(t, tc.severity, marks[0].Severity)
			require.Equal(t, uint(42), marks[0].AssignedBy)

			require.Len(t, recorder.events, 1)
			require.Equal(t, tc.want, recorder.events[0].Type)
		})
	}
}

func TestConductServiceAssignRejectsUnknownSeverity(t *testing.T) {
	repo := newFakeStudentRepo(seededStudent())
	svc := NewConductService(repo, events.NewBus(testLogger()), testLogger())

	_, err := svc.Assign(context.Background(), mentorActor(), 1, "Some reason", "Catastrophic")
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestConductServiceStudentCannotAssign(t *testing.T) {
	repo := newFakeStudentRepo(seededStudent())
	svc := NewConductService(repo, events.NewBus(testLogger()), testLogger())

	_, err := svc.Assign(context.Background(), policy.Actor{UserID: 7, Role: models.RoleStudent}, 1, "Self-inflicted", models.SeverityLow)
	require.ErrorIs(t, err, policy.ErrForbidden)
}

func TestConductServiceRemove(t *testing.T) {
	repo := newFakeStudentRepo(seededStudent())
	svc := NewConductService(repo, events.NewBus(testLogger()), testLogger())

	marks, err := svc.Assign(context.Background(), mentorActor(), 1, "To be removed later", models.SeverityLow)
	require.NoError(t, err)
	require.Len(t, marks, 1)

	remaining, err := svc.Remove(context.Background(), mentorActor(), 1, marks[0].ID)
	require.NoError(t, err)
	require.Empty(t, remaining)

	_, err = svc.Remove(context.Background(), mentorActor(), 1, "missing")
	require.ErrorIs(t, err, ErrBlackmarkNotFound)
}
