package models

import "time"

// Teacher represents an instructor. Identification is the external document
// number, distinct from the surrogate id.
type Teacher struct {
	ID             string     `db:"id" json:"id"`
	Identification string     `db:"identification" json:"identification"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Email          string     `db:"email" json:"email"`
	Phone          string     `db:"phone" json:"phone"`
	Address        string     `db:"address" json:"address"`
	City           string     `db:"city" json:"city"`
	State          string     `db:"state" json:"state"`
	PostalCode     string     `db:"postal_code" json:"postal_code"`
	BirthDate      *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender         string     `db:"gender" json:"gender"`
	Nationality    string     `db:"nationality" json:"nationality"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// TeacherFilter encapsulates allowed search parameters for listing teachers.
type TeacherFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
