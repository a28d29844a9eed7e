package models

import "time"

// StaffCategory classifies the kind of work a staff member does.
type StaffCategory string

const (
	StaffCategoryTeaching       StaffCategory = "teaching"
	StaffCategoryNonTeaching    StaffCategory = "non_teaching"
	StaffCategoryAdministrative StaffCategory = "administrative"
)

// StaffStatus is the employment state of a staff member.
type StaffStatus string

const (
	StaffStatusActive   StaffStatus = "active"
	StaffStatusInactive StaffStatus = "inactive"
	StaffStatusOnLeave  StaffStatus = "on_leave"
)

// StaffMember represents an employee record. Soft deleted rows keep their code.
type StaffMember struct {
	ID                   int64         `db:"id" json:"id"`
	StaffCode            string        `db:"staff_code" json:"staff_code"`
	FullName             string        `db:"full_name" json:"full_name"`
	Email                *string       `db:"email" json:"email,omitempty"`
	Phone                *string       `db:"phone" json:"phone,omitempty"`
	Category             StaffCategory `db:"category" json:"category"`
	Status               StaffStatus   `db:"status" json:"status"`
	Department           *string       `db:"department" json:"department,omitempty"`
	Designation          *string       `db:"designation" json:"designation,omitempty"`
	EmploymentType       *string       `db:"employment_type" json:"employment_type,omitempty"`
	JoiningDate          *time.Time    `db:"joining_date" json:"joining_date,omitempty"`
	HighestQualification *string       `db:"highest_qualification" json:"highest_qualification,omitempty"`
	Specialization       *string       `db:"specialization" json:"specialization,omitempty"`
	LicenseNumber        *string       `db:"license_number" json:"license_number,omitempty"`
	CreatedAt            time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time     `db:"updated_at" json:"updated_at"`
	DeletedAt            *time.Time    `db:"deleted_at" json:"deleted_at,omitempty"`
}

// IsTeaching reports whether the staff member belongs to the teaching category.
func (s *StaffMember) IsTeaching() bool {
	return s != nil && s.Category == StaffCategoryTeaching
}

// IsActive reports whether the staff member is currently active.
func (s *StaffMember) IsActive() bool {
	return s != nil && s.Status == StaffStatusActive && s.DeletedAt == nil
}

// StaffFilter captures filtering options for listing staff.
type StaffFilter struct {
	Search     string
	Category   StaffCategory
	Status     StaffStatus
	Department string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
