// Command seed populates the database with a small sample dataset for
// local development. It is safe to run repeatedly: rows are keyed by
// email or name and re-runs update in place.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eduadmin/academic-api/pkg/config"
	"github.com/eduadmin/academic-api/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	teacherID, err := upsertTeacher(ctx, db, "1002003001", "Laura", "Mendez", "laura.mendez@example.edu")
	if err != nil {
		log.Fatalf("seed teacher: %v", err)
	}

	studentIDs := make([]string, 0, 3)
	for _, s := range []struct{ first, last, email string }{
		{"Carlos", "Rojas", "carlos.rojas@example.edu"},
		{"Ana", "Quintero", "ana.quintero@example.edu"},
		{"Miguel", "Santos", "miguel.santos@example.edu"},
	} {
		id, err := upsertStudent(ctx, db, s.first, s.last, s.email)
		if err != nil {
			log.Fatalf("seed student %s: %v", s.email, err)
		}
		studentIDs = append(studentIDs, id)
	}

	courseID, err := upsertCourse(ctx, db, "Introduction to Algebra", "Linear equations, polynomials and factoring.", 40, teacherID)
	if err != nil {
		log.Fatalf("seed course: %v", err)
	}

	for _, sid := range studentIDs {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO course_students (course_id, student_id, status, created_at)
			VALUES ($1, $2, 'active', $3)
			ON CONFLICT (course_id, student_id) DO NOTHING`,
			courseID, sid, time.Now().UTC()); err != nil {
			log.Fatalf("seed enrollment: %v", err)
		}
	}

	fmt.Printf("seeded course %s with %d students, teacher %s\n", courseID, len(studentIDs), teacherID)
}

func upsertTeacher(ctx context.Context, db *sqlx.DB, identification, first, last, email string) (string, error) {
	var id string
	err := db.QueryRowxContext(ctx, `
		INSERT INTO teachers (id, identification, first_name, last_name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, '3001112233', $6, $6)
		ON CONFLICT (email) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id`,
		uuid.NewString(), identification, first, last, email, time.Now().UTC()).Scan(&id)
	return id, err
}

func upsertStudent(ctx context.Context, db *sqlx.DB, first, last, email string) (string, error) {
	var id string
	err := db.QueryRowxContext(ctx, `
		INSERT INTO students (id, first_name, last_name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, '3009998877', $5, $5)
		ON CONFLICT (email) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id`,
		uuid.NewString(), first, last, email, time.Now().UTC()).Scan(&id)
	return id, err
}

func upsertCourse(ctx context.Context, db *sqlx.DB, name, description string, duration int, teacherID string) (string, error) {
	var id string
	err := db.QueryRowxContext(ctx, `SELECT id FROM courses WHERE name = $1 LIMIT 1`, name).Scan(&id)
	if err == nil {
		_, err = db.ExecContext(ctx, `
			UPDATE courses SET description = $2, duration = $3, teacher_id = $4, updated_at = $5 WHERE id = $1`,
			id, description, duration, teacherID, time.Now().UTC())
		return id, err
	}
	id = uuid.NewString()
	_, err = db.ExecContext(ctx, `
		INSERT INTO courses (id, name, description, duration, teacher_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		id, name, description, duration, teacherID, time.Now().UTC())
	return id, err
}
