package models

import "time"

// Student represents a learner registered in the institution.
type Student struct {
	ID          string     `db:"id" json:"id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	Email       string     `db:"email" json:"email"`
	Phone       string     `db:"phone" json:"phone"`
	Address     string     `db:"address" json:"address"`
	City        string     `db:"city" json:"city"`
	State       string     `db:"state" json:"state"`
	PostalCode  string     `db:"postal_code" json:"postal_code"`
	BirthDate   *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender      string     `db:"gender" json:"gender"`
	Nationality string     `db:"nationality" json:"nationality"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	CourseID  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
