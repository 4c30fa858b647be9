package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eduadmin/academic-api/internal/models"
	appErrors "github.com/eduadmin/academic-api/pkg/errors"
)

type courseStudentRepository interface {
	Roster(ctx context.Context, courseID string) ([]models.CourseRosterEntry, error)
	ValidateStudentIDs(ctx context.Context, studentIDs []string) (map[string]bool, error)
	Attach(ctx context.Context, courseID string, studentIDs []string, status models.CourseStudentStatus) error
	Detach(ctx context.Context, courseID string, studentIDs []string) error
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// AttachStudentsRequest carries the batch of student ids to associate with a
// course, together with the pivot status they receive.
type AttachStudentsRequest struct {
	Students []string `json:"students" validate:"required,min=1,dive,required"`
	Status   string   `json:"status" validate:"required,max=50"`
}

// DetachStudentsRequest carries the batch of student ids to dissociate.
type DetachStudentsRequest struct {
	Students []string `json:"students" validate:"required,min=1,dive,required"`
}

// RosterService manages the course-student association. Batches are
// fail-closed: any invalid member reference voids the entire operation.
type RosterService struct {
	repo      courseStudentRepository
	courses   courseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService constructs the roster service.
func NewRosterService(repo courseStudentRepository, courses courseReader, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// Attach associates the given students with the course. Re-attaching an
// already associated student refreshes its pivot status instead of failing or
// duplicating the row.
func (s *RosterService) Attach(ctx context.Context, courseID string, req AttachStudentsRequest) ([]models.CourseRosterEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid attach payload")
	}
	if err := s.ensureCourse(ctx, courseID); err != nil {
		return nil, err
	}
	ids := dedupe(req.Students)
	if err := s.ensureStudents(ctx, ids); err != nil {
		return nil, err
	}
	if err := s.repo.Attach(ctx, courseID, ids, models.CourseStudentStatus(req.Status)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach students")
	}
	s.logger.Info("students attached",
		zap.String("course_id", courseID),
		zap.Int("count", len(ids)),
		zap.String("status", req.Status))
	return s.loadRoster(ctx, courseID)
}

// Detach removes the matching association rows. Students without an existing
// association are skipped silently; unknown student ids still fail the batch.
func (s *RosterService) Detach(ctx context.Context, courseID string, req DetachStudentsRequest) ([]models.CourseRosterEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid detach payload")
	}
	if err := s.ensureCourse(ctx, courseID); err != nil {
		return nil, err
	}
	ids := dedupe(req.Students)
	if err := s.ensureStudents(ctx, ids); err != nil {
		return nil, err
	}
	if err := s.repo.Detach(ctx, courseID, ids); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to detach students")
	}
	s.logger.Info("students detached",
		zap.String("course_id", courseID),
		zap.Int("count", len(ids)))
	return s.loadRoster(ctx, courseID)
}

// Roster returns the current association rows for a course.
func (s *RosterService) Roster(ctx context.Context, courseID string) ([]models.CourseRosterEntry, error) {
	if err := s.ensureCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.loadRoster(ctx, courseID)
}

func (s *RosterService) ensureCourse(ctx context.Context, courseID string) error {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return nil
}

func (s *RosterService) ensureStudents(ctx context.Context, studentIDs []string) error {
	existing, err := s.repo.ValidateStudentIDs(ctx, studentIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate students")
	}
	var missing []string
	for _, id := range studentIDs {
		if !existing[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return appErrors.FieldError("students", "unknown student ids: "+strings.Join(missing, ", "))
	}
	return nil
}

func (s *RosterService) loadRoster(ctx context.Context, courseID string) ([]models.CourseRosterEntry, error) {
	roster, err := s.repo.Roster(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course roster")
	}
	return roster, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
