package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/eduadmin/academic-api/internal/models"
	appErrors "github.com/eduadmin/academic-api/pkg/errors"
	"github.com/eduadmin/academic-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type studentLister interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type teacherLister interface {
	ListAll(ctx context.Context) ([]models.Teacher, error)
}

type courseDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error)
}

// Supported export formats.
const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

// ExportFile is a rendered document ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders rosters and entity lists into downloadable documents.
type ExportService struct {
	courses     courseDetailReader
	roster      rosterReader
	students    studentLister
	teachers    teacherLister
	csv         csvRenderer
	pdf         pdfRenderer
	institution string
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(courses courseDetailReader, roster rosterReader, students studentLister, teachers teacherLister, csv csvRenderer, pdf pdfRenderer, institution string, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		courses:     courses,
		roster:      roster,
		students:    students,
		teachers:    teachers,
		csv:         csv,
		pdf:         pdf,
		institution: institution,
		logger:      logger,
	}
}

// CourseRoster renders the student list of a course.
func (s *ExportService) CourseRoster(ctx context.Context, courseID, format string) (*ExportFile, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.FindDetailByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	roster, err := s.roster.Roster(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course roster")
	}

	headers := []string{"#", "First Name", "Last Name", "Email", "Status"}
	rows := make([]map[string]string, 0, len(roster))
	for i, entry := range roster {
		rows = append(rows, map[string]string{
			"#":          strconv.Itoa(i + 1),
			"First Name": entry.FirstName,
			"Last Name":  entry.LastName,
			"Email":      entry.Email,
			"Status":     string(entry.Status),
		})
	}
	subtitles := []string{
		"Description: " + course.Description,
		fmt.Sprintf("Duration: %d hours", course.Duration),
	}
	if s.institution != "" {
		subtitles = append([]string{s.institution}, subtitles...)
	}
	dataset := export.Dataset{Headers: headers, Subtitles: subtitles, Rows: rows}

	filename := fmt.Sprintf("course_%s_students.%s", course.ID, format)
	return s.render(dataset, "Course: "+course.Name, filename, format)
}

// StudentList renders the full student directory.
func (s *ExportService) StudentList(ctx context.Context, format string) (*ExportFile, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	headers := []string{"#", "First Name", "Last Name", "Email", "Phone", "City", "Nationality"}
	rows := make([]map[string]string, 0, len(students))
	for i, st := range students {
		rows = append(rows, map[string]string{
			"#":           strconv.Itoa(i + 1),
			"First Name":  st.FirstName,
			"Last Name":   st.LastName,
			"Email":       st.Email,
			"Phone":       st.Phone,
			"City":        st.City,
			"Nationality": st.Nationality,
		})
	}
	dataset := export.Dataset{Headers: headers, Subtitles: s.institutionSubtitle(), Rows: rows}
	filename := fmt.Sprintf("students_%s.%s", time.Now().UTC().Format("20060102"), format)
	return s.render(dataset, "Students", filename, format)
}

// TeacherList renders the full teacher directory.
func (s *ExportService) TeacherList(ctx context.Context, format string) (*ExportFile, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	teachers, err := s.teachers.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	headers := []string{"#", "Identification", "First Name", "Last Name", "Email", "Phone"}
	rows := make([]map[string]string, 0, len(teachers))
	for i, t := range teachers {
		rows = append(rows, map[string]string{
			"#":              strconv.Itoa(i + 1),
			"Identification": t.Identification,
			"First Name":     t.FirstName,
			"Last Name":      t.LastName,
			"Email":          t.Email,
			"Phone":          t.Phone,
		})
	}
	dataset := export.Dataset{Headers: headers, Subtitles: s.institutionSubtitle(), Rows: rows}
	filename := fmt.Sprintf("teachers_%s.%s", time.Now().UTC().Format("20060102"), format)
	return s.render(dataset, "Teachers", filename, format)
}

func (s *ExportService) render(dataset export.Dataset, title, filename, format string) (*ExportFile, error) {
	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case FormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	case FormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("export rendered", zap.String("filename", filename), zap.Int("bytes", len(payload)))
	return &ExportFile{Filename: filename, ContentType: contentType, Content: payload}, nil
}

func (s *ExportService) institutionSubtitle() []string {
	if s.institution == "" {
		return nil
	}
	return []string{s.institution}
}

func normalizeFormat(format string) (string, error) {
	switch format {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", appErrors.FieldError("format", "must be pdf or csv")
	}
}
