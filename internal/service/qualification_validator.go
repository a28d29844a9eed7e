package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-staff-api/internal/dto"
	"github.com/noah-isme/sma-staff-api/internal/models"
	appErrors "github.com/noah-isme/sma-staff-api/pkg/errors"
)

type staffReader interface {
	FindByID(ctx context.Context, id int64) (*models.StaffMember, error)
}

type subjectReader interface {
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
}

type classReader interface {
	FindByID(ctx context.Context, id int64) (*models.Class, error)
}

// Qualification ordinals.
const (
	QualificationNone        = 0
	QualificationCertificate = 1
	QualificationBachelor    = 2
	QualificationMaster      = 3
	QualificationDoctorate   = 4
)

var qualificationKeywords = []struct {
	level    int
	keywords []string
}{
	{QualificationDoctorate, []string{"doctorate", "doctor", "ph.d", "phd", "ed.d"}},
	{QualificationMaster, []string{"master", "m.sc", "msc", "m.ed", "m.phil", "mba", "m.b.a", "m.tech", "m.a."}},
	{QualificationBachelor, []string{"bachelor", "b.sc", "bsc", "b.ed", "b.a.", "b.com", "b.tech", "degree"}},
	{QualificationCertificate, []string{"diploma", "certificate"}},
}

// QualificationLevel maps a free-text credential to an ordinal from 0 (none) to 4 (doctorate).
func QualificationLevel(qualification string) int {
	value := strings.ToLower(qualification)
	for _, group := range qualificationKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(value, keyword) {
				return group.level
			}
		}
	}
	return QualificationNone
}

// RequiredQualificationLevel returns the minimum ordinal expected for a grade level, or 0 when unknown.
func RequiredQualificationLevel(gradeLevel int) int {
	switch {
	case gradeLevel <= 0:
		return QualificationNone
	case gradeLevel <= 5:
		return QualificationCertificate
	case gradeLevel <= 10:
		return QualificationBachelor
	default:
		return QualificationMaster
	}
}

// QualificationValidator evaluates whether a staff member may take an assignment. It only reads.
type QualificationValidator struct {
	staff              staffReader
	subjects           subjectReader
	classes            classReader
	specializations    SpecializationTable
	batchWarnThreshold int
	logger             *zap.Logger
}

// NewQualificationValidator constructs a QualificationValidator. A nil table uses the defaults.
func NewQualificationValidator(staff staffReader, subjects subjectReader, classes classReader, table SpecializationTable, batchWarnThreshold int, logger *zap.Logger) *QualificationValidator {
	if table == nil {
		table = DefaultSpecializationTable()
	}
	if batchWarnThreshold <= 0 {
		batchWarnThreshold = 6
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QualificationValidator{
		staff:              staff,
		subjects:           subjects,
		classes:            classes,
		specializations:    table,
		batchWarnThreshold: batchWarnThreshold,
		logger:             logger,
	}
}

// ValidateSubjectAssignment checks a staff member against a subject and optional class.
func (v *QualificationValidator) ValidateSubjectAssignment(ctx context.Context, staffID, subjectID int64, classID *int64) (*models.ValidationResult, error) {
	result := models.NewValidationResult()
	staff, err := v.eligibleStaff(ctx, staffID, result)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return result, nil
	}

	subject, err := v.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			result.AddError(models.NewIssue(models.IssueSubjectNotFound, map[string]string{"subject_id": formatID(subjectID)}))
			return result, nil
		}
		return nil, v.readFailure("load subject", err, zap.Int64("subject_id", subjectID))
	}

	var class *models.Class
	if classID != nil {
		if class, err = v.loadClass(ctx, *classID, result); err != nil {
			return nil, err
		}
		if !result.IsValid {
			return result, nil
		}
	}

	v.credentialWarnings(staff, result)
	if staff.Specialization != nil && !v.specializations.Matches(*staff.Specialization, subject.Name) {
		result.AddWarning(models.NewIssue(models.IssueSpecializationMismatch, map[string]string{
			"specialization": *staff.Specialization,
			"subject":        subject.Name,
		}))
	}
	if class != nil {
		v.gradeWarning(staff, class, result)
	}
	return result, nil
}

// ValidateClassTeacherAssignment checks a staff member against a class.
func (v *QualificationValidator) ValidateClassTeacherAssignment(ctx context.Context, staffID, classID int64) (*models.ValidationResult, error) {
	result := models.NewValidationResult()
	staff, err := v.eligibleStaff(ctx, staffID, result)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return result, nil
	}
	class, err := v.loadClass(ctx, classID, result)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return result, nil
	}
	v.credentialWarnings(staff, result)
	v.gradeWarning(staff, class, result)
	return result, nil
}

// ValidateStaffEligibility runs only the staff checks plus credential warnings. It backs class
// teacher assignments that do not name a class.
func (v *QualificationValidator) ValidateStaffEligibility(ctx context.Context, staffID int64) (*models.ValidationResult, error) {
	result := models.NewValidationResult()
	staff, err := v.eligibleStaff(ctx, staffID, result)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return result, nil
	}
	v.credentialWarnings(staff, result)
	return result, nil
}

// ValidateMultipleAssignments aggregates subject validation for every proposal carrying a subject
// and warns when the batch is larger than the recommended maximum.
func (v *QualificationValidator) ValidateMultipleAssignments(ctx context.Context, staffID int64, proposed []dto.ProposedAssignment) (*models.ValidationResult, error) {
	result := models.NewValidationResult()
	for _, item := range proposed {
		if item.SubjectID == nil {
			continue
		}
		single, err := v.ValidateSubjectAssignment(ctx, staffID, *item.SubjectID, item.ClassID)
		if err != nil {
			return nil, err
		}
		result.Merge(single)
	}
	if len(proposed) > v.batchWarnThreshold {
		result.AddWarning(models.NewIssue(models.IssueExcessiveWorkload, map[string]string{
			"count": strconv.Itoa(len(proposed)),
			"limit": strconv.Itoa(v.batchWarnThreshold),
		}))
	}
	return result, nil
}

// eligibleStaff runs the blocking staff checks in priority order, stopping at the first failure.
func (v *QualificationValidator) eligibleStaff(ctx context.Context, staffID int64, result *models.ValidationResult) (*models.StaffMember, error) {
	staff, err := v.staff.FindByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			result.AddError(models.NewIssue(models.IssueStaffNotFound, map[string]string{"staff_id": formatID(staffID)}))
			return nil, nil
		}
		return nil, v.readFailure("load staff", err, zap.Int64("staff_id", staffID))
	}
	if !staff.IsTeaching() {
		result.AddError(models.NewIssue(models.IssueNotTeachingStaff, map[string]string{
			"staff_name": staff.FullName,
			"category":   string(staff.Category),
		}))
		return staff, nil
	}
	if !staff.IsActive() {
		result.AddError(models.NewIssue(models.IssueStaffNotActive, map[string]string{
			"staff_name": staff.FullName,
			"status":     string(staff.Status),
		}))
		return staff, nil
	}
	return staff, nil
}

func (v *QualificationValidator) loadClass(ctx context.Context, classID int64, result *models.ValidationResult) (*models.Class, error) {
	class, err := v.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			result.AddError(models.NewIssue(models.IssueClassNotFound, map[string]string{"class_id": formatID(classID)}))
			return nil, nil
		}
		return nil, v.readFailure("load class", err, zap.Int64("class_id", classID))
	}
	return class, nil
}

func (v *QualificationValidator) credentialWarnings(staff *models.StaffMember, result *models.ValidationResult) {
	if staff.LicenseNumber == nil || strings.TrimSpace(*staff.LicenseNumber) == "" {
		result.AddWarning(models.NewIssue(models.IssueMissingLicense, map[string]string{"staff_name": staff.FullName}))
	}
	if staff.HighestQualification == nil || strings.TrimSpace(*staff.HighestQualification) == "" {
		result.AddWarning(models.NewIssue(models.IssueMissingQualification, map[string]string{"staff_name": staff.FullName}))
	}
}

// gradeWarning compares the credential ordinal to the grade band. A missing credential is
// already reported by credentialWarnings.
func (v *QualificationValidator) gradeWarning(staff *models.StaffMember, class *models.Class, result *models.ValidationResult) {
	if staff.HighestQualification == nil || strings.TrimSpace(*staff.HighestQualification) == "" {
		return
	}
	required := RequiredQualificationLevel(class.GradeLevel)
	if required == QualificationNone {
		return
	}
	if QualificationLevel(*staff.HighestQualification) < required {
		result.AddWarning(models.NewIssue(models.IssueQualificationBelowGrade, map[string]string{
			"qualification": *staff.HighestQualification,
			"grade_level":   strconv.Itoa(class.GradeLevel),
		}))
	}
}

func (v *QualificationValidator) readFailure(op string, err error, fields ...zap.Field) error {
	v.logger.Error("qualification validation read failed", append(fields, zap.String("op", op), zap.Error(err))...)
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate assignment")
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
