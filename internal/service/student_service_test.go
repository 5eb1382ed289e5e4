package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/mentorhub-api/internal/dto"
	"github.com/mentorhub/mentorhub-api/internal/events"
	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/policy"
	"github.com/mentorhub/mentorhub-api/internal/repository"
)

func newStudentService(students repository.StudentRepository, users repository.UserRepository, bus *events.Bus) StudentService {
	if bus == nil {
		bus = events.NewBus(testLogger())
	}
	return NewStudentService(students, users, bus, validator.New(), testLogger())
}

func strPtr(value string) *string {
	return &value
}

func TestStudentServiceUpdateProfileMergesAndRefreshesCompletion(t *testing.T) {
	student := seededStudent()
	student.Mobile = ""
	student.ProfileCompleted = false
	students := newFakeStudentRepo(student)

	svc := newStudentService(students, newFakeUserRepo(), nil)

	actor := policy.Actor{UserID: 7, Role: models.RoleStudent}
	response, err := svc.UpdateProfile(context.Background(), actor, 1, dto.ProfileUpdateRequest{
		Mobile:     strPtr("9876543210"),
		FatherName: strPtr("Rajesh Sharma"),
	})
	require.NoError(t, err)
	require.Equal(t, "9876543210", response.Mobile)
	require.Equal(t, "Rajesh Sharma", response.FatherName)
	// Name is untouched by a nil pointer.
	require.Equal(t, "Priya Sharma", response.Name)
	// Name, reg no and mobile are now all present.
	require.True(t, response.ProfileCompleted)
}

func TestStudentServiceMentorCannotEditIdentity(t *testing.T) {
	students := newFakeStudentRepo(seededStudent())
	svc := newStudentService(students, newFakeUserRepo(), nil)

	_, err := svc.UpdateProfile(context.Background(), mentorActor(), 1, dto.ProfileUpdateRequest{
		Name: strPtr("Renamed By Mentor"),
	})
	require.ErrorIs(t, err, policy.ErrForbidden)
}

func TestStudentServiceUpdateProfileRejectsTakenRegNo(t *testing.T) {
	first := seededStudent()
	second := models.Student{ID: 2, UserID: 8, Name: "Arun Verma", RegNo: "REG2024002"}
	students := newFakeStudentRepo(first, second)

	svc := newStudentService(students, newFakeUserRepo(), nil)

	actor := policy.Actor{UserID: 7, Role: models.RoleStudent}
	_, err := svc.UpdateProfile(context.Background(), actor, 1, dto.ProfileUpdateRequest{
		RegNo: strPtr("REG2024002"),
	})
	require.ErrorIs(t, err, ErrRegNoTaken)
}

func TestStudentServiceCreateIsAdminOnly(t *testing.T) {
	students := newFakeStudentRepo()
	users := newFakeUserRepo()
	svc := newStudentService(students, users, nil)

	payload := dto.CreateStudentRequest{
		Email:    "new.student@portal.edu",
		Password: "secret123",
		Profile: dto.StudentSeed{
			Name:   "Kiran Rao",
			RegNo:  "REG2024010",
			Mobile: "9876500000",
		},
	}

	_, err := svc.Create(context.Background(), mentorActor(), payload)
	require.ErrorIs(t, err, policy.ErrForbidden)

	admin := policy.Actor{UserID: 1, Role: models.RoleAdmin}
	response, err := svc.Create(context.Background(), admin, payload)
	require.NoError(t, err)
	require.Equal(t, "Kiran Rao", response.Name)
	require.True(t, response.ProfileCompleted)

	// The account exists and is a student.
	user, err := users.FindByEmail(context.Background(), "new.student@portal.edu")
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, user.Role)

	// A second create with the same email is rejected.
	_, err = svc.Create(context.Background(), admin, payload)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestStudentServiceCreateForcesProfileCompleted(t *testing.T) {
	students := newFakeStudentRepo()
	users := newFakeUserRepo()
	svc := newStudentService(students, users, nil)

	admin := policy.Actor{UserID: 1, Role: models.RoleAdmin}
	// No mobile in the seed: a self-registered profile with this data would
	// stay incomplete.
	response, err := svc.Create(context.Background(), admin, dto.CreateStudentRequest{
		Email:    "sparse.student@portal.edu",
		Password: "secret123",
		Profile:  dto.StudentSeed{Name: "Sparse Student", RegNo: "REG2024012"},
	})
	require.NoError(t, err)
	require.True(t, response.ProfileCompleted)

	stored, err := students.FindByID(context.Background(), response.ID)
	require.NoError(t, err)
	require.True(t, stored.ProfileCompleted)
}

func TestStudentServiceCreatePublishesRegistrationEvent(t *testing.T) {
	bus := events.NewBus(testLogger())
	recorder := &eventRecorder{}
	bus.Subscribe(events.KindStudentRegistered, recorder.Handle)

	svc := newStudentService(newFakeStudentRepo(), newFakeUserRepo(), bus)

	admin := policy.Actor{UserID: 1, Role: models.RoleAdmin}
	_, err := svc.Create(context.Background(), admin, dto.CreateStudentRequest{
		Email:    "event.student@portal.edu",
		Password: "secret123",
		Profile:  dto.StudentSeed{Name: "Event Student", RegNo: "REG2024011"},
	})
	require.NoError(t, err)
	require.Len(t, recorder.events, 1)
	require.Equal(t, events.KindStudentRegistered, recorder.events[0].Kind)
}

func TestStudentServiceDeleteRemovesProfileAndAccount(t *testing.T) {
	students := newFakeStudentRepo(seededStudent())
	users := newFakeUserRepo(models.User{ID: 7, Email: "priya@portal.edu", Role: models.RoleStudent, Active: true})
	svc := newStudentService(students, users, nil)

	err := svc.Delete(context.Background(), mentorActor(), 1)
	require.ErrorIs(t, err, policy.ErrForbidden)

	admin := policy.Actor{UserID: 1, Role: models.RoleAdmin}
	require.NoError(t, svc.Delete(context.Background(), admin, 1))

	_, err = students.FindByID(context.Background(), 1)
	require.Error(t, err)
}

func TestStudentServiceListRequiresStaffRole(t *testing.T) {
	students := newFakeStudentRepo(seededStudent())
	svc := newStudentService(students, newFakeUserRepo(), nil)

	_, err := svc.List(context.Background(), policy.Actor{UserID: 7, Role: models.RoleStudent}, repository.StudentFilter{})
	require.ErrorIs(t, err, policy.ErrForbidden)

	listing, err := svc.List(context.Background(), mentorActor(), repository.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, listing.Students, 1)
	require.Equal(t, int64(1), listing.Pagination.TotalRecords)
}
