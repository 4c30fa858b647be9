package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eduadmin/academic-api/internal/models"
	appErrors "github.com/eduadmin/academic-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	FirstName   string     `json:"first_name" validate:"required,max=255"`
	LastName    string     `json:"last_name" validate:"required,max=255"`
	Email       string     `json:"email" validate:"required,email,max=255"`
	Phone       string     `json:"phone" validate:"required,numeric,max=10"`
	Address     string     `json:"address" validate:"max=255"`
	City        string     `json:"city" validate:"max=255"`
	State       string     `json:"state" validate:"max=255"`
	PostalCode  string     `json:"postal_code" validate:"max=10"`
	BirthDate   *time.Time `json:"birth_date" validate:"omitempty,beforenow"`
	Gender      string     `json:"gender" validate:"max=50"`
	Nationality string     `json:"nationality" validate:"max=255"`
}

// UpdateStudentRequest holds payload for full updates. All mutable fields are
// replaced.
type UpdateStudentRequest struct {
	FirstName   string     `json:"first_name" validate:"required,max=255"`
	LastName    string     `json:"last_name" validate:"required,max=255"`
	Email       string     `json:"email" validate:"required,email,max=255"`
	Phone       string     `json:"phone" validate:"required,numeric,max=10"`
	Address     string     `json:"address" validate:"max=255"`
	City        string     `json:"city" validate:"max=255"`
	State       string     `json:"state" validate:"max=255"`
	PostalCode  string     `json:"postal_code" validate:"max=10"`
	BirthDate   *time.Time `json:"birth_date" validate:"omitempty,beforenow"`
	Gender      string     `json:"gender" validate:"max=50"`
	Nationality string     `json:"nationality" validate:"max=255"`
}

// PatchStudentRequest holds partial-update values. A nil field was omitted
// from the payload and is left untouched; a present empty string clears the
// column.
type PatchStudentRequest struct {
	FirstName   *string    `json:"first_name" validate:"omitempty,max=255"`
	LastName    *string    `json:"last_name" validate:"omitempty,max=255"`
	Email       *string    `json:"email" validate:"omitempty,email,max=255"`
	Phone       *string    `json:"phone" validate:"omitempty,numeric,max=10"`
	Address     *string    `json:"address" validate:"omitempty,max=255"`
	City        *string    `json:"city" validate:"omitempty,max=255"`
	State       *string    `json:"state" validate:"omitempty,max=255"`
	PostalCode  *string    `json:"postal_code" validate:"omitempty,max=10"`
	BirthDate   *time.Time `json:"birth_date" validate:"omitempty,beforenow"`
	Gender      *string    `json:"gender" validate:"omitempty,max=50"`
	Nationality *string    `json:"nationality" validate:"omitempty,max=255"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students and pagination metadata. An empty result is a valid
// empty collection, never an error.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
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
	return students, pagination, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.FieldError("email", "already in use")
	}
	student := &models.Student{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		PostalCode:  req.PostalCode,
		BirthDate:   req.BirthDate,
		Gender:      req.Gender,
		Nationality: req.Nationality,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if mapped := appErrors.UniqueViolation(err, "email"); mapped != err {
			return nil, mapped
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update replaces all mutable fields of an existing student.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.FieldError("email", "already in use")
	}
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Email = req.Email
	student.Phone = req.Phone
	student.Address = req.Address
	student.City = req.City
	student.State = req.State
	student.PostalCode = req.PostalCode
	student.BirthDate = req.BirthDate
	student.Gender = req.Gender
	student.Nationality = req.Nationality
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Patch overwrites only the fields present in the request.
func (s *StudentService) Patch(ctx context.Context, id string, req PatchStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if req.Email != nil && *req.Email != student.Email {
		exists, err := s.repo.ExistsByEmail(ctx, *req.Email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
		}
		if exists {
			return nil, appErrors.FieldError("email", "already in use")
		}
	}
	if req.FirstName != nil {
		student.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		student.LastName = *req.LastName
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.Address != nil {
		student.Address = *req.Address
	}
	if req.City != nil {
		student.City = *req.City
	}
	if req.State != nil {
		student.State = *req.State
	}
	if req.PostalCode != nil {
		student.PostalCode = *req.PostalCode
	}
	if req.BirthDate != nil {
		student.BirthDate = req.BirthDate
	}
	if req.Gender != nil {
		student.Gender = *req.Gender
	}
	if req.Nationality != nil {
		student.Nationality = *req.Nationality
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student and cleans up its course associations.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}
