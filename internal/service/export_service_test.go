package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduadmin/academic-api/internal/models"
	appErrors "github.com/eduadmin/academic-api/pkg/errors"
	"github.com/eduadmin/academic-api/pkg/export"
)

type staticCourseDetail struct {
	detail *models.CourseDetail
}

func (s *staticCourseDetail) FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	return s.detail, nil
}

type staticStudents struct {
	students []models.Student
}

func (s *staticStudents) ListAll(ctx context.Context) ([]models.Student, error) {
	return s.students, nil
}

type staticTeachers struct {
	teachers []models.Teacher
}

func (s *staticTeachers) ListAll(ctx context.Context) ([]models.Teacher, error) {
	return s.teachers, nil
}

func exportFixture() *ExportService {
	detail := &models.CourseDetail{}
	detail.ID = "c1"
	detail.Name = "Algebra"
	detail.Description = "Linear equations."
	detail.Duration = 40

	entry := models.CourseRosterEntry{Status: "active"}
	entry.FirstName = "Ana"
	entry.LastName = "Quintero"
	entry.Email = "ana@example.edu"

	return NewExportService(
		&staticCourseDetail{detail: detail},
		&staticRoster{entries: []models.CourseRosterEntry{entry}},
		&staticStudents{students: []models.Student{{FirstName: "Ana", LastName: "Quintero", Email: "ana@example.edu"}}},
		&staticTeachers{teachers: []models.Teacher{{Identification: "1002003001", FirstName: "Laura", LastName: "Mendez", Email: "laura@example.edu"}}},
		export.NewCSVExporter(),
		export.NewPDFExporter(),
		"Springfield Institute",
		nil,
	)
}

func TestExportServiceCourseRosterPDFDefault(t *testing.T) {
	svc := exportFixture()

	file, err := svc.CourseRoster(context.Background(), "c1", "")
	require.NoError(t, err)
	assert.Equal(t, "course_c1_students.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportServiceCourseRosterCSV(t *testing.T) {
	svc := exportFixture()

	file, err := svc.CourseRoster(context.Background(), "c1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "course_c1_students.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	body := string(file.Content)
	assert.Contains(t, body, "First Name")
	assert.Contains(t, body, "ana@example.edu")
	assert.Contains(t, body, "active")
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := exportFixture()

	_, err := svc.CourseRoster(context.Background(), "c1", "xlsx")
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Details, "format")
}

func TestExportServiceStudentListCSV(t *testing.T) {
	svc := exportFixture()

	file, err := svc.StudentList(context.Background(), "csv")
	require.NoError(t, err)
	assert.Contains(t, file.Filename, "students_")
	assert.Contains(t, string(file.Content), "Quintero")
}

func TestExportServiceTeacherListPDF(t *testing.T) {
	svc := exportFixture()

	file, err := svc.TeacherList(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.NotEmpty(t, file.Content)
}
