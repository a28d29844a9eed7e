package models

// IssueCode tags every distinct validation or workload condition.
type IssueCode string

const (
	IssueStaffNotFound           IssueCode = "STAFF_NOT_FOUND"
	IssueNotTeachingStaff        IssueCode = "NOT_TEACHING_STAFF"
	IssueStaffNotActive          IssueCode = "STAFF_NOT_ACTIVE"
	IssueSubjectNotFound         IssueCode = "SUBJECT_NOT_FOUND"
	IssueClassNotFound           IssueCode = "CLASS_NOT_FOUND"
	IssueMissingLicense          IssueCode = "MISSING_LICENSE"
	IssueMissingQualification    IssueCode = "MISSING_QUALIFICATION"
	IssueSpecializationMismatch  IssueCode = "SPECIALIZATION_MISMATCH"
	IssueQualificationBelowGrade IssueCode = "QUALIFICATION_BELOW_GRADE"
	IssueExcessiveWorkload       IssueCode = "EXCESSIVE_WORKLOAD"
	IssueWorkloadApproaching     IssueCode = "WORKLOAD_APPROACHING_LIMIT"
	IssueWorkloadLimitReached    IssueCode = "WORKLOAD_LIMIT_REACHED"
	IssueAlreadyClassTeacher     IssueCode = "ALREADY_CLASS_TEACHER"
	IssueDuplicateAssignment     IssueCode = "DUPLICATE_ASSIGNMENT"
)

// ValidationIssue is one structured finding plus its rendered message.
type ValidationIssue struct {
	Code    IssueCode         `json:"code"`
	Message string            `json:"message"`
	Context map[string]string `json:"context,omitempty"`
}

// ValidationResult collects blocking errors and advisory warnings. It is never persisted.
type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// NewValidationResult returns an all-clear result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{IsValid: true, Errors: []ValidationIssue{}, Warnings: []ValidationIssue{}}
}

// AddError records a blocking issue and marks the result invalid.
func (r *ValidationResult) AddError(issue ValidationIssue) {
	r.Errors = append(r.Errors, issue)
	r.IsValid = false
}

// AddWarning records an advisory issue.
func (r *ValidationResult) AddWarning(issue ValidationIssue) {
	r.Warnings = append(r.Warnings, issue)
}

// Merge folds another result into r.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for _, issue := range other.Errors {
		r.AddError(issue)
	}
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// HasError reports whether an error with the given code was recorded.
func (r *ValidationResult) HasError(code IssueCode) bool {
	return containsIssue(r.Errors, code)
}

// HasWarning reports whether a warning with the given code was recorded.
func (r *ValidationResult) HasWarning(code IssueCode) bool {
	return containsIssue(r.Warnings, code)
}

// ErrorMessages renders the errors as display strings.
func (r *ValidationResult) ErrorMessages() []string {
	return issueMessages(r.Errors)
}

// WarningMessages renders the warnings as display strings.
func (r *ValidationResult) WarningMessages() []string {
	return issueMessages(r.Warnings)
}

func containsIssue(issues []ValidationIssue, code IssueCode) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func issueMessages(issues []ValidationIssue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Message)
	}
	return out
}
