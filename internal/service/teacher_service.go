package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eduadmin/academic-api/internal/models"
	appErrors "github.com/eduadmin/academic-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindByIdentification(ctx context.Context, identification string) (*models.Teacher, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	ExistsByIdentification(ctx context.Context, identification string, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
}

// CreateTeacherRequest holds payload for registering teachers.
type CreateTeacherRequest struct {
	Identification string     `json:"identification" validate:"required,max=255"`
	FirstName      string     `json:"first_name" validate:"required,max=255"`
	LastName       string     `json:"last_name" validate:"required,max=255"`
	Email          string     `json:"email" validate:"required,email,max=255"`
	Phone          string     `json:"phone" validate:"required,numeric,max=10"`
	Address        string     `json:"address" validate:"max=100"`
	City           string     `json:"city" validate:"max=255"`
	State          string     `json:"state" validate:"max=255"`
	PostalCode     string     `json:"postal_code" validate:"max=10"`
	BirthDate      *time.Time `json:"birth_date" validate:"omitempty,beforenow"`
	Gender         string     `json:"gender" validate:"max=50"`
	Nationality    string     `json:"nationality" validate:"max=255"`
}

// UpdateTeacherRequest holds payload for full updates.
type UpdateTeacherRequest struct {
	Identification string     `json:"identification" validate:"required,max=255"`
	FirstName      string     `json:"first_name" validate:"required,max=255"`
	LastName       string     `json:"last_name" validate:"required,max=255"`
	Email          string     `json:"email" validate:"required,email,max=255"`
	Phone          string     `json:"phone" validate:"required,numeric,max=10"`
	Address        string     `json:"address" validate:"max=100"`
	City           string     `json:"city" validate:"max=255"`
	State          string     `json:"state" validate:"max=255"`
	PostalCode     string     `json:"postal_code" validate:"max=10"`
	BirthDate      *time.Time `json:"birth_date" validate:"omitempty,beforenow"`
	Gender         string     `json:"gender" validate:"max=50"`
	Nationality    string     `json:"nationality" validate:"max=255"`
}

// PatchTeacherRequest carries partial-update values with explicit presence
// markers.
type PatchTeacherRequest struct {
	Identification *string    `json:"identification" validate:"omitempty,max=255"`
	FirstName      *string    `json:"first_name" validate:"omitempty,max=255"`
	LastName       *string    `json:"last_name" validate:"omitempty,max=255"`
	Email          *string    `json:"email" validate:"omitempty,email,max=255"`
	Phone          *string    `json:"phone" validate:"omitempty,numeric,max=10"`
	Address        *string    `json:"address" validate:"omitempty,max=100"`
	City           *string    `json:"city" validate:"omitempty,max=255"`
	State          *string    `json:"state" validate:"omitempty,max=255"`
	PostalCode     *string    `json:"postal_code" validate:"omitempty,max=10"`
	BirthDate      *time.Time `json:"birth_date" validate:"omitempty,beforenow"`
	Gender         *string    `json:"gender" validate:"omitempty,max=50"`
	Nationality    *string    `json:"nationality" validate:"omitempty,max=255"`
}

// TeacherService handles teacher use-cases.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// List returns teachers and pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
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
	return teachers, pagination, nil
}

// Get returns a teacher by surrogate id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Lookup returns the teacher matching an external identification, or nil when
// the identification is blank or unknown. Absence is not an error: the client
// uses this to probe while an operator is still typing.
func (s *TeacherService) Lookup(ctx context.Context, identification string) (*models.Teacher, error) {
	identification = strings.TrimSpace(identification)
	if identification == "" {
		return nil, nil
	}
	teacher, err := s.repo.FindByIdentification(ctx, identification)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up teacher")
	}
	return teacher, nil
}

// Create registers a new teacher.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid teacher payload")
	}
	if err := s.checkUnique(ctx, req.Email, req.Identification, ""); err != nil {
		return nil, err
	}
	teacher := &models.Teacher{
		Identification: req.Identification,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		PostalCode:     req.PostalCode,
		BirthDate:      req.BirthDate,
		Gender:         req.Gender,
		Nationality:    req.Nationality,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		for _, field := range []string{"identification", "email"} {
			if mapped := appErrors.UniqueViolation(err, field); mapped != err {
				return nil, mapped
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// Update replaces all mutable fields of an existing teacher.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid teacher payload")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if err := s.checkUnique(ctx, req.Email, req.Identification, id); err != nil {
		return nil, err
	}
	teacher.Identification = req.Identification
	teacher.FirstName = req.FirstName
	teacher.LastName = req.LastName
	teacher.Email = req.Email
	teacher.Phone = req.Phone
	teacher.Address = req.Address
	teacher.City = req.City
	teacher.State = req.State
	teacher.PostalCode = req.PostalCode
	teacher.BirthDate = req.BirthDate
	teacher.Gender = req.Gender
	teacher.Nationality = req.Nationality
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return teacher, nil
}

// Patch overwrites only the fields present in the request.
func (s *TeacherService) Patch(ctx context.Context, id string, req PatchTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid teacher payload")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if req.Email != nil && *req.Email != teacher.Email {
		exists, err := s.repo.ExistsByEmail(ctx, *req.Email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
		}
		if exists {
			return nil, appErrors.FieldError("email", "already in use")
		}
	}
	if req.Identification != nil && *req.Identification != teacher.Identification {
		exists, err := s.repo.ExistsByIdentification(ctx, *req.Identification, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate identification")
		}
		if exists {
			return nil, appErrors.FieldError("identification", "already in use")
		}
	}
	if req.Identification != nil {
		teacher.Identification = *req.Identification
	}
	if req.FirstName != nil {
		teacher.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		teacher.LastName = *req.LastName
	}
	if req.Email != nil {
		teacher.Email = *req.Email
	}
	if req.Phone != nil {
		teacher.Phone = *req.Phone
	}
	if req.Address != nil {
		teacher.Address = *req.Address
	}
	if req.City != nil {
		teacher.City = *req.City
	}
	if req.State != nil {
		teacher.State = *req.State
	}
	if req.PostalCode != nil {
		teacher.PostalCode = *req.PostalCode
	}
	if req.BirthDate != nil {
		teacher.BirthDate = req.BirthDate
	}
	if req.Gender != nil {
		teacher.Gender = *req.Gender
	}
	if req.Nationality != nil {
		teacher.Nationality = *req.Nationality
	}
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return teacher, nil
}

// Delete removes a teacher. Courses assigned to them keep existing with no
// teacher.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	return nil
}

func (s *TeacherService) checkUnique(ctx context.Context, email, identification, excludeID string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return appErrors.FieldError("email", "already in use")
	}
	exists, err = s.repo.ExistsByIdentification(ctx, identification, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate identification")
	}
	if exists {
		return appErrors.FieldError("identification", "already in use")
	}
	return nil
}
