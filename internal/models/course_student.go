package models

import "time"

// CourseStudentStatus labels the state carried on the course-student pivot.
type CourseStudentStatus string

// Known pivot statuses. The column is free-form text; "active" is the
// conventional default used by the clients.
const (
	CourseStudentStatusActive   CourseStudentStatus = "active"
	CourseStudentStatusInactive CourseStudentStatus = "inactive"
)

// CourseStudent is the association row linking a student to a course.
// The (course_id, student_id) pair is unique.
type CourseStudent struct {
	CourseID  string              `db:"course_id" json:"course_id"`
	StudentID string              `db:"student_id" json:"student_id"`
	Status    CourseStudentStatus `db:"status" json:"status"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
}

// CourseRosterEntry is a student row as it appears in a course roster,
// including the pivot status.
type CourseRosterEntry struct {
	Student
	Status CourseStudentStatus `db:"status" json:"status"`
}
