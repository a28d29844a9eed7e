package dto

import (
	"time"

	"github.com/noah-isme/sma-staff-api/internal/models"
)

// CreateAssignmentRequest is the payload for assigning a staff member.
type CreateAssignmentRequest struct {
	StaffID        int64                 `json:"staffId" validate:"required,min=1"`
	AcademicYearID int64                 `json:"academicYearId" validate:"required,min=1"`
	AssignmentType models.AssignmentType `json:"assignmentType" validate:"required,oneof=class_teacher subject_teacher"`
	ClassID        *int64                `json:"classId" validate:"omitempty,min=1"`
	SubjectID      *int64                `json:"subjectId" validate:"required_if=AssignmentType subject_teacher"`
	Section        *string               `json:"section" validate:"omitempty,max=50"`
	StartDate      *time.Time            `json:"startDate"`
	EndDate        *time.Time            `json:"endDate"`
	SkipValidation bool                  `json:"skipValidation"`
}

// AssignmentResult bundles the created assignment with its validation outcome.
type AssignmentResult struct {
	Assignment *models.StaffAssignment  `json:"assignment"`
	Validation *models.ValidationResult `json:"validation"`
	Superseded []models.StaffAssignment `json:"superseded"`
}

// EndAssignmentRequest optionally carries an explicit end date.
type EndAssignmentRequest struct {
	EndDate *time.Time `json:"endDate"`
}

// EndAssignmentResult reports whether an active assignment was ended.
type EndAssignmentResult struct {
	Ended bool `json:"ended"`
}

// ValidateSubjectRequest checks a prospective subject assignment.
type ValidateSubjectRequest struct {
	SubjectID int64  `json:"subjectId" validate:"required,min=1"`
	ClassID   *int64 `json:"classId" validate:"omitempty,min=1"`
}

// ValidateClassTeacherRequest checks a prospective class teacher assignment.
type ValidateClassTeacherRequest struct {
	ClassID int64 `json:"classId" validate:"required,min=1"`
}

// ProposedAssignment is one entry of a batch validation.
type ProposedAssignment struct {
	SubjectID *int64 `json:"subjectId" validate:"omitempty,min=1"`
	ClassID   *int64 `json:"classId" validate:"omitempty,min=1"`
}

// ValidateBatchRequest checks several proposed assignments together.
type ValidateBatchRequest struct {
	Assignments []ProposedAssignment `json:"assignments" validate:"required,min=1,dive"`
}
