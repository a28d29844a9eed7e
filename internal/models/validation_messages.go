package models

import "strings"

// MessageCatalog renders issue codes into human readable text. Placeholders use {key}.
type MessageCatalog map[IssueCode]string

// DefaultMessages is the English catalog.
var DefaultMessages = MessageCatalog{
	IssueStaffNotFound:           "staff member {staff_id} not found",
	IssueNotTeachingStaff:        "staff member {staff_name} is not in teaching category (category: {category})",
	IssueStaffNotActive:          "staff member {staff_name} is not active (status: {status})",
	IssueSubjectNotFound:         "subject {subject_id} not found",
	IssueClassNotFound:           "class {class_id} not found",
	IssueMissingLicense:          "staff member {staff_name} has no teaching license on record",
	IssueMissingQualification:    "staff member {staff_name} has no highest qualification on record",
	IssueSpecializationMismatch:  "specialization \"{specialization}\" may not match subject \"{subject}\"",
	IssueQualificationBelowGrade: "qualification \"{qualification}\" may be insufficient for grade {grade_level}",
	IssueExcessiveWorkload:       "{count} proposed assignments exceed the recommended maximum of {limit}",
	IssueWorkloadApproaching:     "staff member already holds {count} subject assignments this year, approaching the limit of {limit}",
	IssueWorkloadLimitReached:    "staff member already holds {count} subject assignments this year, the limit is {limit}",
	IssueAlreadyClassTeacher:     "staff member is already class teacher of class {class_id} this academic year",
	IssueDuplicateAssignment:     "staff member already teaches this subject for the same class and section this academic year",
}

// Format renders code with the given context. Unknown codes fall back to the code itself.
func (c MessageCatalog) Format(code IssueCode, ctx map[string]string) string {
	tmpl, ok := c[code]
	if !ok {
		tmpl = string(code)
	}
	if len(ctx) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(ctx)*2)
	for key, value := range ctx {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// NewIssue builds an issue rendered with the default catalog.
func NewIssue(code IssueCode, ctx map[string]string) ValidationIssue {
	return ValidationIssue{Code: code, Message: DefaultMessages.Format(code, ctx), Context: ctx}
}
