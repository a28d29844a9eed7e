package dto

import (
	"time"

	"github.com/noah-isme/sma-staff-api/internal/models"
)

// CreateStaffRequest is the payload for registering a staff member. StaffCode is generated when omitted.
type CreateStaffRequest struct {
	StaffCode            *string              `json:"staffCode" validate:"omitempty,min=3,max=50"`
	FullName             string               `json:"fullName" validate:"required,max=200"`
	Email                *string              `json:"email" validate:"omitempty,email"`
	Phone                *string              `json:"phone" validate:"omitempty,max=50"`
	Category             models.StaffCategory `json:"category" validate:"required,oneof=teaching non_teaching administrative"`
	Status               models.StaffStatus   `json:"status" validate:"omitempty,oneof=active inactive on_leave"`
	Department           *string              `json:"department" validate:"omitempty,max=100"`
	Designation          *string              `json:"designation" validate:"omitempty,max=100"`
	EmploymentType       *string              `json:"employmentType" validate:"omitempty,max=50"`
	JoiningDate          *time.Time           `json:"joiningDate"`
	HighestQualification *string              `json:"highestQualification" validate:"omitempty,max=200"`
	Specialization       *string              `json:"specialization" validate:"omitempty,max=200"`
	LicenseNumber        *string              `json:"licenseNumber" validate:"omitempty,max=100"`
}

// UpdateStaffRequest replaces the mutable fields of a staff member.
type UpdateStaffRequest struct {
	FullName             string               `json:"fullName" validate:"required,max=200"`
	Email                *string              `json:"email" validate:"omitempty,email"`
	Phone                *string              `json:"phone" validate:"omitempty,max=50"`
	Category             models.StaffCategory `json:"category" validate:"required,oneof=teaching non_teaching administrative"`
	Department           *string              `json:"department" validate:"omitempty,max=100"`
	Designation          *string              `json:"designation" validate:"omitempty,max=100"`
	EmploymentType       *string              `json:"employmentType" validate:"omitempty,max=50"`
	JoiningDate          *time.Time           `json:"joiningDate"`
	HighestQualification *string              `json:"highestQualification" validate:"omitempty,max=200"`
	Specialization       *string              `json:"specialization" validate:"omitempty,max=200"`
	LicenseNumber        *string              `json:"licenseNumber" validate:"omitempty,max=100"`
}

// UpdateStaffStatusRequest changes employment status.
type UpdateStaffStatusRequest struct {
	Status models.StaffStatus `json:"status" validate:"required,oneof=active inactive on_leave"`
}

// BulkCreateStaffRequest registers many staff members; items are processed independently.
type BulkCreateStaffRequest struct {
	Items []CreateStaffRequest `json:"items" validate:"required,min=1,max=500"`
}

// BulkCreateStaffItemResult reports the outcome of one bulk item.
type BulkCreateStaffItemResult struct {
	Index     int                 `json:"index"`
	Staff     *models.StaffMember `json:"staff,omitempty"`
	ErrorCode string              `json:"errorCode,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// BulkCreateStaffResult aggregates bulk outcomes.
type BulkCreateStaffResult struct {
	Created int                         `json:"created"`
	Failed  int                         `json:"failed"`
	Results []BulkCreateStaffItemResult `json:"results"`
}
