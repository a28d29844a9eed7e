package models

import "time"

// Class represents a class (grade plus optional section) in the school.
type Class struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	GradeLevel int       `db:"grade_level" json:"grade_level"`
	Section    *string   `db:"section" json:"section,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AcademicYear scopes assignments to one school year.
type AcademicYear struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsCurrent bool      `db:"is_current" json:"is_current"`
}
