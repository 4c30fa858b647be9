package models

import "time"

// Course represents a taught course. A course has at most one teacher.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Duration    int       `db:"duration" json:"duration"`
	TeacherID   *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseDetail extends Course with teacher context and the student roster.
type CourseDetail struct {
	Course
	TeacherName *string             `db:"teacher_name" json:"teacher_name,omitempty"`
	Students    []CourseRosterEntry `json:"students"`
}

// CourseFilter encapsulates allowed search parameters for listing courses.
type CourseFilter struct {
	Search    string
	TeacherID string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
