package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eduadmin/academic-api/internal/models"
)

// CourseStudentRepository manages the course-student association rows.
type CourseStudentRepository struct {
	db *sqlx.DB
}

// NewCourseStudentRepository constructs a CourseStudentRepository.
func NewCourseStudentRepository(db *sqlx.DB) *CourseStudentRepository {
	return &CourseStudentRepository{db: db}
}

// Roster returns the students associated with a course, including pivot status.
func (r *CourseStudentRepository) Roster(ctx context.Context, courseID string) ([]models.CourseRosterEntry, error) {
	const query = `SELECT s.id, s.first_name, s.last_name, s.email, s.phone, s.address, s.city, s.state, s.postal_code, s.birth_date, s.gender, s.nationality, s.created_at, s.updated_at, cs.status
        FROM course_students cs
        JOIN students s ON s.id = cs.student_id
        WHERE cs.course_id = $1
        ORDER BY s.last_name ASC, s.first_name ASC`
	entries := []models.CourseRosterEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, courseID); err != nil {
		return nil, fmt.Errorf("load course roster: %w", err)
	}
	return entries, nil
}

// ValidateStudentIDs checks which of the given student ids exist, returning
// the set of found ids.
func (r *CourseStudentRepository) ValidateStudentIDs(ctx context.Context, studentIDs []string) (map[string]bool, error) {
	if len(studentIDs) == 0 {
		return map[string]bool{}, nil
	}
	const chunkSize = 100
	existing := make(map[string]bool, len(studentIDs))
	for start := 0; start < len(studentIDs); start += chunkSize {
		end := start + chunkSize
		if end > len(studentIDs) {
			end = len(studentIDs)
		}
		chunk := studentIDs[start:end]
		placeholders := make([]string, len(chunk))
		args := make([]interface{}, len(chunk))
		for i, id := range chunk {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = id
		}
		query := fmt.Sprintf("SELECT id FROM students WHERE id IN (%s)", strings.Join(placeholders, ","))
		rows, err := r.db.QueryxContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("validate students: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan student id: %w", err)
			}
			existing[id] = true
		}
		rows.Close()
	}
	return existing, nil
}

// Attach upserts association rows for the given students within a single
// transaction. Re-attaching an existing pair refreshes its status instead of
// duplicating the row.
func (r *CourseStudentRepository) Attach(ctx context.Context, courseID string, studentIDs []string, status models.CourseStudentStatus) (err error) {
	if len(studentIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attach students: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const query = `INSERT INTO course_students (course_id, student_id, status, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (course_id, student_id) DO UPDATE SET status = EXCLUDED.status`
	for _, studentID := range studentIDs {
		if _, err = tx.ExecContext(ctx, query, courseID, studentID, status, now); err != nil {
			return fmt.Errorf("attach student %s: %w", studentID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit attach students: %w", err)
	}
	return nil
}

// Detach removes association rows for the given students. Absent pairs are
// ignored.
func (r *CourseStudentRepository) Detach(ctx context.Context, courseID string, studentIDs []string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	placeholders := make([]string, len(studentIDs))
	args := make([]interface{}, 0, len(studentIDs)+1)
	args = append(args, courseID)
	for i, id := range studentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	query := fmt.Sprintf("DELETE FROM course_students WHERE course_id = $1 AND student_id IN (%s)", strings.Join(placeholders, ","))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("detach students: %w", err)
	}
	return nil
}

// CountByCourse returns how many students are associated with a course.
func (r *CourseStudentRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM course_students WHERE course_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID); err != nil {
		return 0, fmt.Errorf("count course students: %w", err)
	}
	return count, nil
}
