package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mentorhub/mentorhub-api/internal/models"
	"github.com/mentorhub/mentorhub-api/internal/observability"
)

// ErrVersionConflict indicates a versioned save lost a race with a
// concurrent writer; callers should reload and retry or surface a 409.
var ErrVersionConflict = errors.New("student aggregate was modified concurrently")

// StudentFilter narrows and orders student listings.
type StudentFilter struct {
	Search   string
	SortBy   string // name, regNo, cgpa, createdAt
	Order    string // asc, desc
	Page     int
	PageSize int
}

// StudentRepository handles persistence for the student aggregate.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id uint) (models.Student, error)
	FindByUserID(ctx context.Context, userID uint) (models.Student, error)
	FindByRegNo(ctx context.Context, regNo string) (models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	SaveVersioned(ctx context.Context, student *models.Student) error
	DeleteWithUser(ctx context.Context, studentID, userID uint) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a repository backed by GORM.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) FindByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Preload("User").First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) FindByUserID(ctx context.Context, userID uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) FindByRegNo(ctx context.Context, regNo string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("reg_no = ?", regNo).First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error) {
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	query := r.db.WithContext(ctx).Model(&models.Student{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(reg_no) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "ASC"
	if strings.EqualFold(filter.Order, "desc") {
		direction = "DESC"
	}
	column := map[string]string{
		"name":      "name",
		"regNo":     "reg_no",
		"cgpa":      "cgpa",
		"createdAt": "created_at",
	}[filter.SortBy]
	if column == "" {
		column = "created_at"
	}

	var students []models.Student
	if err := query.
		Preload("User").
		Order(column + " " + direction).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (r *studentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).Preload("User").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

// SaveVersioned persists the aggregate only if nobody else wrote it since it
// was loaded. The in-memory version is bumped on success so the caller can
// keep mutating the same value.
func (r *studentRepository) SaveVersioned(ctx context.Context, student *models.Student) error {
	loaded := student.Version
	student.Version = loaded + 1

	result := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ? AND version = ?", student.ID, loaded).
		Select("*").
		Omit("id", "created_at").
		Updates(student)
	if result.Error != nil {
		student.Version = loaded
		return result.Error
	}
	if result.RowsAffected == 0 {
		student.Version = loaded
		observability.AggregateVersionConflicts().Inc()
		return ErrVersionConflict
	}
	return nil
}

// DeleteWithUser removes the profile and its owning account atomically.
func (r *studentRepository) DeleteWithUser(ctx context.Context, studentID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Student{}, studentID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
}
