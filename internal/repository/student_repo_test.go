package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mentorhub/mentorhub-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Student{}, &models.Notification{}, &models.Message{}))
	t.Cleanup(func() {
		require.NoError(t, db.Exec("DELETE FROM students").Error)
		require.NoError(t, db.Exec("DELETE FROM users").Error)
	})
	return db
}

func seedStudent(t *testing.T, db *gorm.DB, name, regNo string) models.Student {
	t.Helper()
	user := models.User{Email: regNo + "@school.edu", PasswordHash: "x", Role: models.RoleStudent, Active: true}
	require.NoError(t, db.Create(&user).Error)

	student := models.Student{UserID: user.ID, Name: name, RegNo: regNo, Mobile: "9876543210"}
	student.RefreshProfileCompleted()
	require.NoError(t, db.Create(&student).Error)
	return student
}

func TestStudentRepositorySaveVersioned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	seeded := seedStudent(t, db, "Asha Verma", "REG-100")

	first, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)

	_, _, err = first.UpsertSubject("Math", 80, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.SaveVersioned(ctx, &first))
	require.Equal(t, int64(1), first.Version)

	// The second loader still holds version 0; its save must be rejected.
	_, _, err = second.UpsertSubject("Math", 40, time.Now())
	require.NoError(t, err)
	err = repo.SaveVersioned(ctx, &second)
	require.ErrorIs(t, err, ErrVersionConflict)

	stored, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.Equal(t, 80.0, stored.TotalMarks, "losing write must not clobber the winner")
}

func TestStudentRepositoryPersistsCollections(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	seeded := seedStudent(t, db, "Rohan Gupta", "REG-101")

	student, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	_, _, err = student.UpsertSubject("Physics", 72.5, time.Now())
	require.NoError(t, err)
	_, _, err = student.UpsertAttendance("September", 2024, 18, 22, time.Now())
	require.NoError(t, err)
	_, err = student.AppendBlackmark("Late submission", models.SeverityLow, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.SaveVersioned(ctx, &student))

	stored, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.Len(t, stored.Subjects, 1)
	require.Equal(t, 72.5, stored.Subjects[0].Marks)
	require.Len(t, stored.Attendance, 1)
	require.Equal(t, 82, stored.Attendance[0].Percentage)
	require.Len(t, stored.Blackmarks, 1)
}

func TestStudentRepositoryListSearchAndSort(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	seedStudent(t, db, "Asha Verma", "REG-200")
	seedStudent(t, db, "Rohan Gupta", "REG-201")

	students, total, err := repo.List(ctx, StudentFilter{Search: "asha", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, students, 1)
	require.Equal(t, "Asha Verma", students[0].Name)

	students, total, err = repo.List(ctx, StudentFilter{SortBy: "name", Order: "desc", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, "Rohan Gupta", students[0].Name)
}

func TestStudentRepositoryDeleteWithUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	seeded := seedStudent(t, db, "Kiran Rao", "REG-300")

	require.NoError(t, repo.DeleteWithUser(ctx, seeded.ID, seeded.UserID))

	_, err := repo.FindByID(ctx, seeded.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", seeded.UserID).Count(&count).Error)
	require.Zero(t, count)
}
