package service

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduadmin/academic-api/internal/models"
	appErrors "github.com/eduadmin/academic-api/pkg/errors"
)

type mockCourseReader struct {
	courses map[string]models.Course
}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

// mockRosterRepo keeps pivot rows in a map keyed by student id.
type mockRosterRepo struct {
	known map[string]bool
	pivot map[string]models.CourseStudentStatus
}

func newMockRosterRepo(known ...string) *mockRosterRepo {
	k := make(map[string]bool, len(known))
	for _, id := range known {
		k[id] = true
	}
	return &mockRosterRepo{known: k, pivot: map[string]models.CourseStudentStatus{}}
}

func (m *mockRosterRepo) Roster(ctx context.Context, courseID string) ([]models.CourseRosterEntry, error) {
	ids := make([]string, 0, len(m.pivot))
	for id := range m.pivot {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]models.CourseRosterEntry, 0, len(ids))
	for _, id := range ids {
		entry := models.CourseRosterEntry{Status: m.pivot[id]}
		entry.ID = id
		out = append(out, entry)
	}
	return out, nil
}

func (m *mockRosterRepo) ValidateStudentIDs(ctx context.Context, studentIDs []string) (map[string]bool, error) {
	found := map[string]bool{}
	for _, id := range studentIDs {
		if m.known[id] {
			found[id] = true
		}
	}
	return found, nil
}

func (m *mockRosterRepo) Attach(ctx context.Context, courseID string, studentIDs []string, status models.CourseStudentStatus) error {
	for _, id := range studentIDs {
		m.pivot[id] = status
	}
	return nil
}

func (m *mockRosterRepo) Detach(ctx context.Context, courseID string, studentIDs []string) error {
	for _, id := range studentIDs {
		delete(m.pivot, id)
	}
	return nil
}

func newRosterFixture(known ...string) (*RosterService, *mockRosterRepo) {
	repo := newMockRosterRepo(known...)
	courses := &mockCourseReader{courses: map[string]models.Course{"c1": {ID: "c1", Name: "Algebra"}}}
	return NewRosterService(repo, courses, nil, nil), repo
}

func TestRosterServiceAttach(t *testing.T) {
	svc, repo := newRosterFixture("s1", "s2")

	roster, err := svc.Attach(context.Background(), "c1", AttachStudentsRequest{
		Students: []string{"s1", "s2"},
		Status:   "active",
	})
	require.NoError(t, err)
	assert.Len(t, roster, 2)
	assert.Equal(t, models.CourseStudentStatus("active"), repo.pivot["s1"])
}

func TestRosterServiceAttachIsIdempotent(t *testing.T) {
	svc, repo := newRosterFixture("s1")

	_, err := svc.Attach(context.Background(), "c1", AttachStudentsRequest{Students: []string{"s1"}, Status: "active"})
	require.NoError(t, err)

	roster, err := svc.Attach(context.Background(), "c1", AttachStudentsRequest{Students: []string{"s1"}, Status: "inactive"})
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, models.CourseStudentStatus("inactive"), repo.pivot["s1"])
}

func TestRosterServiceAttachUnknownCourse(t *testing.T) {
	svc, repo := newRosterFixture("s1")

	_, err := svc.Attach(context.Background(), "ghost", AttachStudentsRequest{Students: []string{"s1"}, Status: "active"})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
	assert.Empty(t, repo.pivot)
}

func TestRosterServiceAttachFailsClosedOnUnknownStudent(t *testing.T) {
	svc, repo := newRosterFixture("s1")

	_, err := svc.Attach(context.Background(), "c1", AttachStudentsRequest{
		Students: []string{"s1", "ghost"},
		Status:   "active",
	})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Details["students"], "ghost")
	assert.Empty(t, repo.pivot)
}

func TestRosterServiceAttachMissingStatus(t *testing.T) {
	svc, _ := newRosterFixture("s1")

	_, err := svc.Attach(context.Background(), "c1", AttachStudentsRequest{Students: []string{"s1"}})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Details, "status")
}

func TestRosterServiceDetachIsSelective(t *testing.T) {
	svc, repo := newRosterFixture("s1", "s2", "s3")

	_, err := svc.Attach(context.Background(), "c1", AttachStudentsRequest{
		Students: []string{"s1", "s2", "s3"},
		Status:   "active",
	})
	require.NoError(t, err)

	roster, err := svc.Detach(context.Background(), "c1", DetachStudentsRequest{Students: []string{"s2"}})
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.NotContains(t, repo.pivot, "s2")
	assert.Contains(t, repo.pivot, "s1")
	assert.Contains(t, repo.pivot, "s3")
}

func TestRosterServiceDetachNotEnrolledIsNoop(t *testing.T) {
	svc, repo := newRosterFixture("s1", "s2")

	_, err := svc.Attach(context.Background(), "c1", AttachStudentsRequest{Students: []string{"s1"}, Status: "active"})
	require.NoError(t, err)

	roster, err := svc.Detach(context.Background(), "c1", DetachStudentsRequest{Students: []string{"s2"}})
	require.NoError(t, err)
	assert.Len(t, roster, 1)
	assert.Contains(t, repo.pivot, "s1")
}

func TestRosterServiceAttachDedupesBatch(t *testing.T) {
	svc, repo := newRosterFixture("s1")

	roster, err := svc.Attach(context.Background(), "c1", AttachStudentsRequest{
		Students: []string{"s1", "s1", "s1"},
		Status:   "active",
	})
	require.NoError(t, err)
	assert.Len(t, roster, 1)
	assert.Len(t, repo.pivot, 1)
}
