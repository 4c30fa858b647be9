package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduadmin/academic-api/internal/models"
	"github.com/eduadmin/academic-api/internal/service"
)

type studentRepoMock struct {
	students map[string]models.Student
}

func newStudentRepoMock() *studentRepoMock {
	return &studentRepoMock{students: map[string]models.Student{}}
}

func (m *studentRepoMock) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *studentRepoMock) ListAll(ctx context.Context) ([]models.Student, error) {
	students, _, err := m.List(context.Background(), models.StudentFilter{})
	return students, err
}

func (m *studentRepoMock) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *studentRepoMock) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for id, s := range m.students {
		if id != excludeID && strings.EqualFold(s.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *studentRepoMock) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "new-student"
	}
	m.students[student.ID] = *student
	return nil
}

func (m *studentRepoMock) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *studentRepoMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	return nil
}

type teacherListerStub struct{}

func (teacherListerStub) ListAll(ctx context.Context) ([]models.Teacher, error) { return nil, nil }

type courseDetailStub struct{}

func (courseDetailStub) FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	return nil, sql.ErrNoRows
}

type rosterStub struct{}

func (rosterStub) Roster(ctx context.Context, courseID string) ([]models.CourseRosterEntry, error) {
	return nil, nil
}

func newStudentRouter(repo *studentRepoMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	students := service.NewStudentService(repo, nil, nil)
	exports := service.NewExportService(courseDetailStub{}, rosterStub{}, repo, teacherListerStub{}, nil, nil, "", nil)
	h := NewStudentHandler(students, exports)

	r := gin.New()
	r.GET("/students", h.List)
	r.POST("/students", h.Create)
	r.GET("/students/export", h.Export)
	r.GET("/students/:id", h.Get)
	r.PUT("/students/:id", h.Update)
	r.PATCH("/students/:id", h.Patch)
	r.DELETE("/students/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStudentHandlerCreate(t *testing.T) {
	repo := newStudentRepoMock()
	r := newStudentRouter(repo)

	w := doJSON(t, r, http.MethodPost, "/students", map[string]string{
		"first_name": "Ana",
		"last_name":  "Quintero",
		"email":      "ana@example.edu",
		"phone":      "3001112233",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.Student `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.ID)
	assert.Equal(t, "ana@example.edu", envelope.Data.Email)
}

func TestStudentHandlerCreateInvalidBody(t *testing.T) {
	r := newStudentRouter(newStudentRepoMock())

	req, _ := http.NewRequest(http.MethodPost, "/students", bytes.NewReader([]byte(`{invalid`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandlerCreateDuplicateEmail(t *testing.T) {
	repo := newStudentRepoMock()
	r := newStudentRouter(repo)

	payload := map[string]string{
		"first_name": "Ana",
		"last_name":  "Quintero",
		"email":      "ana@example.edu",
		"phone":      "3001112233",
	}
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/students", payload).Code)

	w := doJSON(t, r, http.MethodPost, "/students", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Equal(t, "already in use", envelope.Error.Details["email"])
}

func TestStudentHandlerGetMissing(t *testing.T) {
	r := newStudentRouter(newStudentRepoMock())

	w := doJSON(t, r, http.MethodGet, "/students/ghost", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestStudentHandlerList(t *testing.T) {
	repo := newStudentRepoMock()
	repo.students["s1"] = models.Student{ID: "s1", FirstName: "Ana", Email: "ana@example.edu"}
	r := newStudentRouter(repo)

	w := doJSON(t, r, http.MethodGet, "/students?page=1&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data       []models.Student   `json:"data"`
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 1)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.TotalCount)
}

func TestStudentHandlerPatch(t *testing.T) {
	repo := newStudentRepoMock()
	repo.students["s1"] = models.Student{ID: "s1", FirstName: "Ana", LastName: "Quintero", Email: "ana@example.edu", Phone: "3001112233"}
	r := newStudentRouter(repo)

	w := doJSON(t, r, http.MethodPatch, "/students/s1", map[string]string{"city": "Medellin"})
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.Student `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "Medellin", envelope.Data.City)
	assert.Equal(t, "Ana", envelope.Data.FirstName)
}

func TestStudentHandlerDelete(t *testing.T) {
	repo := newStudentRepoMock()
	repo.students["s1"] = models.Student{ID: "s1", Email: "ana@example.edu"}
	r := newStudentRouter(repo)

	w := doJSON(t, r, http.MethodDelete, "/students/s1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.students)
}

func TestStudentHandlerExportCSV(t *testing.T) {
	repo := newStudentRepoMock()
	repo.students["s1"] = models.Student{ID: "s1", FirstName: "Ana", LastName: "Quintero", Email: "ana@example.edu"}
	r := newStudentRouter(repo)

	w := doJSON(t, r, http.MethodGet, "/students/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "ana@example.edu")
}
