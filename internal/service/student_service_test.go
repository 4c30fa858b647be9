package service

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduadmin/academic-api/internal/models"
	appErrors "github.com/eduadmin/academic-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[string]models.Student
	deleted  []string
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: map[string]models.Student{}}
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for id, s := range m.students {
		if id != excludeID && strings.EqualFold(s.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "new-student"
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func validCreateStudent() CreateStudentRequest {
	return CreateStudentRequest{
		FirstName: "Ana",
		LastName:  "Quintero",
		Email:     "ana@example.edu",
		Phone:     "3001112233",
	}
}

func TestStudentServiceCreateThenGet(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validCreateStudent())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.FirstName, fetched.FirstName)
	assert.Equal(t, created.Email, fetched.Email)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), nil, nil)

	req := validCreateStudent()
	req.Email = "not-an-email"
	req.Phone = "letters"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Details, "email")
	assert.Contains(t, appErr.Details, "phone")
}

func TestStudentServiceCreateDuplicateEmail(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	_, err := svc.Create(context.Background(), validCreateStudent())
	require.NoError(t, err)

	req := validCreateStudent()
	req.FirstName = "Other"
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "already in use", appErr.Details["email"])
	assert.Len(t, repo.students, 1)
}

func TestStudentServiceUpdateKeepsOwnEmail(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validCreateStudent())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateStudentRequest{
		FirstName: "Anita",
		LastName:  created.LastName,
		Email:     created.Email,
		Phone:     created.Phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Anita", updated.FirstName)
}

func TestStudentServicePatchLeavesOmittedFields(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validCreateStudent())
	require.NoError(t, err)

	city := "Medellin"
	patched, err := svc.Patch(context.Background(), created.ID, PatchStudentRequest{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Medellin", patched.City)
	assert.Equal(t, created.FirstName, patched.FirstName)
	assert.Equal(t, created.Email, patched.Email)
}

func TestStudentServicePatchClearsWithEmptyString(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	req := validCreateStudent()
	req.Address = "Street 1"
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	empty := ""
	patched, err := svc.Patch(context.Background(), created.ID, PatchStudentRequest{Address: &empty})
	require.NoError(t, err)
	assert.Empty(t, patched.Address)
}

func TestStudentServiceGetMissing(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), nil, nil)

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestStudentServiceDeleteMissing(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), nil, nil)

	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}
