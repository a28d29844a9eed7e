package models

import "time"

// AssignmentType distinguishes the responsibilities a staff member can hold.
type AssignmentType string

const (
	AssignmentTypeClassTeacher   AssignmentType = "class_teacher"
	AssignmentTypeSubjectTeacher AssignmentType = "subject_teacher"
)

// Valid reports whether the assignment type is known.
func (t AssignmentType) Valid() bool {
	return t == AssignmentTypeClassTeacher || t == AssignmentTypeSubjectTeacher
}

// StaffAssignment is a staff member's responsibility over a period of an academic year.
// Rows are never reactivated: supersession and ending only flip IsActive to false.
type StaffAssignment struct {
	ID             int64          `db:"id" json:"id"`
	StaffID        int64          `db:"staff_id" json:"staff_id"`
	AcademicYearID int64          `db:"academic_year_id" json:"academic_year_id"`
	AssignmentType AssignmentType `db:"assignment_type" json:"assignment_type"`
	ClassID        *int64         `db:"class_id" json:"class_id,omitempty"`
	SubjectID      *int64         `db:"subject_id" json:"subject_id,omitempty"`
	Section        *string        `db:"section" json:"section,omitempty"`
	StartDate      time.Time      `db:"start_date" json:"start_date"`
	EndDate        *time.Time     `db:"end_date" json:"end_date,omitempty"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// StaffAssignmentDetail enriches assignments with descriptive fields.
type StaffAssignmentDetail struct {
	StaffAssignment
	StaffCode        *string `db:"staff_code" json:"staff_code,omitempty"`
	StaffName        *string `db:"staff_name" json:"staff_name,omitempty"`
	ClassName        *string `db:"class_name" json:"class_name,omitempty"`
	SubjectName      *string `db:"subject_name" json:"subject_name,omitempty"`
	AcademicYearName *string `db:"academic_year_name" json:"academic_year_name,omitempty"`
}

// AssignmentFilter narrows the assignments of one staff member.
type AssignmentFilter struct {
	AcademicYearID  *int64
	IncludeInactive bool
	AssignmentType  AssignmentType
}

// AssignmentHistoryFilter narrows the assignment history across staff.
type AssignmentHistoryFilter struct {
	ClassID        *int64
	SubjectID      *int64
	AcademicYearID *int64
	AssignmentType AssignmentType
}

// SubjectAssignmentKey identifies a subject-teacher slot. Nil class or section match only nil.
type SubjectAssignmentKey struct {
	StaffID        int64
	SubjectID      int64
	ClassID        *int64
	Section        *string
	AcademicYearID int64
}
