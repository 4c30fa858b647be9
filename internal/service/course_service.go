package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eduadmin/academic-api/internal/models"
	appErrors "github.com/eduadmin/academic-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	SetTeacher(ctx context.Context, courseID, teacherID string) error
	Delete(ctx context.Context, id string) error
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type rosterReader interface {
	Roster(ctx context.Context, courseID string) ([]models.CourseRosterEntry, error)
}

// CreateCourseRequest holds payload for creating courses.
type CreateCourseRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"required"`
	Duration    int     `json:"duration" validate:"required,gt=0"`
	TeacherID   *string `json:"teacher_id"`
}

// UpdateCourseRequest holds payload for full course updates.
type UpdateCourseRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"required"`
	Duration    int     `json:"duration" validate:"required,gt=0"`
	TeacherID   *string `json:"teacher_id"`
}

// PatchCourseRequest holds partial-update values. A nil field was omitted
// from the payload and is left untouched; a present empty teacher_id clears
// the assignment.
type PatchCourseRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty"`
	Duration    *int    `json:"duration" validate:"omitempty,gt=0"`
	TeacherID   *string `json:"teacher_id"`
}

// AttachTeachersRequest carries teacher ids for course assignment. The data
// model holds a single teacher per course, so exactly one id is accepted.
type AttachTeachersRequest struct {
	Teachers []string `json:"teachers" validate:"required,min=1,dive,required"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo      courseRepository
	teachers  teacherReader
	roster    rosterReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, teachers teacherReader, roster rosterReader, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, teachers: teachers, roster: roster, validator: validate, logger: logger}
}

// List returns courses with teacher context and pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return courses, pagination, nil
}

// Get returns a course with its teacher context and full student roster.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	roster, err := s.roster.Roster(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course roster")
	}
	detail.Students = roster
	return detail, nil
}

// Create registers a new course, optionally assigned to a teacher.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid course payload")
	}
	req.TeacherID = normalizeRef(req.TeacherID)
	if err := s.checkTeacherRef(ctx, req.TeacherID); err != nil {
		return nil, err
	}
	course := &models.Course{
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		TeacherID:   req.TeacherID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update replaces all mutable fields of an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid course payload")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	req.TeacherID = normalizeRef(req.TeacherID)
	if err := s.checkTeacherRef(ctx, req.TeacherID); err != nil {
		return nil, err
	}
	course.Name = req.Name
	course.Description = req.Description
	course.Duration = req.Duration
	course.TeacherID = req.TeacherID
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Patch applies only the fields present in the request.
func (s *CourseService) Patch(ctx context.Context, id string, req PatchCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid course payload")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if req.TeacherID != nil {
		ref := normalizeRef(req.TeacherID)
		if err := s.checkTeacherRef(ctx, ref); err != nil {
			return nil, err
		}
		course.TeacherID = ref
	}
	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// AssignTeachers resolves the bulk-attach contract onto the single teacher
// reference a course carries. More than one id is rejected.
func (s *CourseService) AssignTeachers(ctx context.Context, courseID string, req AttachTeachersRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid teacher assignment payload")
	}
	if len(req.Teachers) != 1 {
		return nil, appErrors.FieldError("teachers", "a course has a single teacher; provide exactly one id")
	}
	course, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	teacherID := req.Teachers[0]
	if err := s.checkTeacherRef(ctx, &teacherID); err != nil {
		return nil, err
	}
	if err := s.repo.SetTeacher(ctx, courseID, teacherID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign teacher")
	}
	course.TeacherID = &teacherID
	return course, nil
}

// Delete removes a course along with its association rows.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}

// normalizeRef folds an explicit empty string into "no reference".
func normalizeRef(id *string) *string {
	if id != nil && *id == "" {
		return nil
	}
	return id
}

func (s *CourseService) checkTeacherRef(ctx context.Context, teacherID *string) error {
	if teacherID == nil {
		return nil
	}
	if _, err := s.teachers.FindByID(ctx, *teacherID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.FieldError("teacher_id", "referenced teacher does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher")
	}
	return nil
}
