package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-staff-api/internal/dto"
	"github.com/noah-isme/sma-staff-api/internal/models"
	"github.com/noah-isme/sma-staff-api/internal/repository"
	"github.com/noah-isme/sma-staff-api/pkg/config"
	appErrors "github.com/noah-isme/sma-staff-api/pkg/errors"
)

type staffAssignmentStore interface {
	InTx(ctx context.Context, fn func(tx repository.AssignmentTx) error) error
	FindByID(ctx context.Context, id int64) (*models.StaffAssignmentDetail, error)
	ListByStaff(ctx context.Context, staffID int64, filter models.AssignmentFilter) ([]models.StaffAssignmentDetail, error)
	ListHistory(ctx context.Context, filter models.AssignmentHistoryFilter) ([]models.StaffAssignmentDetail, error)
	End(ctx context.Context, id int64, endDate time.Time) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type assignmentValidator interface {
	ValidateSubjectAssignment(ctx context.Context, staffID, subjectID int64, classID *int64) (*models.ValidationResult, error)
	ValidateClassTeacherAssignment(ctx context.Context, staffID, classID int64) (*models.ValidationResult, error)
	ValidateStaffEligibility(ctx context.Context, staffID int64) (*models.ValidationResult, error)
}

// AssignOptions tunes a single Assign call.
type AssignOptions struct {
	SkipValidation bool
}

// StaffAssignmentServiceOption customises the service.
type StaffAssignmentServiceOption func(*StaffAssignmentService)

// WithAssignmentClock overrides the clock used for start and supersession dates.
func WithAssignmentClock(now func() time.Time) StaffAssignmentServiceOption {
	return func(s *StaffAssignmentService) {
		if now != nil {
			s.now = now
		}
	}
}

// StaffAssignmentService creates, supersedes and ends staff assignments.
type StaffAssignmentService struct {
	store       staffAssignmentStore
	validations assignmentValidator
	audit       auditLogger
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	warnAt      int
	limit       int
	now         func() time.Time
}

// NewStaffAssignmentService constructs a StaffAssignmentService.
func NewStaffAssignmentService(store staffAssignmentStore, validations assignmentValidator, audit auditLogger, cache *CacheService, metrics *MetricsService, cfg config.WorkloadConfig, validate *validator.Validate, logger *zap.Logger, opts ...StaffAssignmentServiceOption) *StaffAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	warnAt := cfg.SubjectWarnThreshold
	if warnAt <= 0 {
		warnAt = 6
	}
	limit := cfg.SubjectHardLimit
	if limit <= 0 {
		limit = 8
	}
	s := &StaffAssignmentService{
		store:       store,
		validations: validations,
		audit:       audit,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		warnAt:      warnAt,
		limit:       limit,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assign validates and persists a new assignment. Invariant checks, supersession and the insert
// share one transaction that holds advisory locks on (staff, year) and (class, year).
func (s *StaffAssignmentService) Assign(ctx context.Context, req dto.CreateAssignmentRequest, opts AssignOptions, actor *models.JWTClaims) (*dto.AssignmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	now := s.now().UTC()
	startDate := now
	if req.StartDate != nil {
		startDate = req.StartDate.UTC()
	}
	if req.EndDate != nil && req.EndDate.Before(startDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}

	validation := models.NewValidationResult()
	if !opts.SkipValidation {
		result, err := s.validate(ctx, req)
		if err != nil {
			return nil, err
		}
		validation = result
		if !validation.IsValid {
			s.metrics.RecordAssignment(req.AssignmentType, AssignmentOutcomeQualificationRejected)
			s.logger.Info("assignment rejected by qualification checks", zap.Int64("staff_id", req.StaffID), zap.Strings("reasons", validation.ErrorMessages()))
			return nil, appErrors.WithDetails(appErrors.ErrQualificationRejected, validation.ErrorMessages()...)
		}
	}

	assignment := &models.StaffAssignment{
		StaffID:        req.StaffID,
		AcademicYearID: req.AcademicYearID,
		AssignmentType: req.AssignmentType,
		ClassID:        req.ClassID,
		SubjectID:      req.SubjectID,
		Section:        normalizeOptional(req.Section),
		StartDate:      startDate,
		EndDate:        req.EndDate,
		IsActive:       true,
	}

	var superseded []models.StaffAssignment
	err := s.store.InTx(ctx, func(tx repository.AssignmentTx) error {
		if err := tx.LockStaffYear(ctx, req.StaffID, req.AcademicYearID); err != nil {
			return err
		}
		if req.ClassID != nil {
			if err := tx.LockClassYear(ctx, *req.ClassID, req.AcademicYearID); err != nil {
				return err
			}
		}

		var err error
		switch req.AssignmentType {
		case models.AssignmentTypeClassTeacher:
			superseded, err = s.prepareClassTeacher(ctx, tx, req, now)
		case models.AssignmentTypeSubjectTeacher:
			superseded, err = s.prepareSubjectTeacher(ctx, tx, req, assignment.Section, now, validation)
		}
		if err != nil {
			return err
		}
		return tx.Insert(ctx, assignment)
	})
	if err != nil {
		return nil, s.assignFailure(req, err)
	}

	s.metrics.RecordAssignment(req.AssignmentType, AssignmentOutcomeCreated)
	s.metrics.RecordSupersession(req.AssignmentType, len(superseded))
	for i := range superseded {
		emitAudit(ctx, s.audit, s.logger, "staff-assignment-service", &models.AuditLog{
			UserID:     auditActor(actor),
			Action:     models.AuditActionAssignmentSupersede,
			Resource:   models.AuditResourceAssignment,
			ResourceID: auditResourceID(superseded[i].ID),
			OldValues:  auditSnapshot(map[string]interface{}{"is_active": true, "end_date": nil}),
			NewValues:  auditSnapshot(superseded[i]),
		})
	}
	emitAudit(ctx, s.audit, s.logger, "staff-assignment-service", &models.AuditLog{
		UserID:     auditActor(actor),
		Action:     models.AuditActionAssignmentCreate,
		Resource:   models.AuditResourceAssignment,
		ResourceID: auditResourceID(assignment.ID),
		NewValues:  auditSnapshot(assignment),
	})
	s.invalidateWorkload(ctx, req.AcademicYearID)
	invalidated := map[int64]struct{}{req.AcademicYearID: {}}
	for i := range superseded {
		yearID := superseded[i].AcademicYearID
		if _, done := invalidated[yearID]; done {
			continue
		}
		invalidated[yearID] = struct{}{}
		s.invalidateWorkload(ctx, yearID)
	}

	if superseded == nil {
		superseded = []models.StaffAssignment{}
	}
	return &dto.AssignmentResult{Assignment: assignment, Validation: validation, Superseded: superseded}, nil
}

func (s *StaffAssignmentService) validate(ctx context.Context, req dto.CreateAssignmentRequest) (*models.ValidationResult, error) {
	switch {
	case req.AssignmentType == models.AssignmentTypeSubjectTeacher:
		return s.validations.ValidateSubjectAssignment(ctx, req.StaffID, *req.SubjectID, req.ClassID)
	case req.ClassID != nil:
		return s.validations.ValidateClassTeacherAssignment(ctx, req.StaffID, *req.ClassID)
	default:
		return s.validations.ValidateStaffEligibility(ctx, req.StaffID)
	}
}

func (s *StaffAssignmentService) prepareClassTeacher(ctx context.Context, tx repository.AssignmentTx, req dto.CreateAssignmentRequest, now time.Time) ([]models.StaffAssignment, error) {
	existing, err := tx.FindActiveClassTeacherByStaff(ctx, req.StaffID, req.AcademicYearID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		ctxValues := map[string]string{"class_id": "unassigned"}
		if existing.ClassID != nil {
			ctxValues["class_id"] = formatID(*existing.ClassID)
		}
		issue := models.NewIssue(models.IssueAlreadyClassTeacher, ctxValues)
		return nil, appErrors.WithDetails(appErrors.ErrAlreadyClassTeacher, issue.Message)
	}
	if req.ClassID == nil {
		return nil, nil
	}
	return tx.DeactivateClassTeachers(ctx, *req.ClassID, req.AcademicYearID, now)
}

func (s *StaffAssignmentService) prepareSubjectTeacher(ctx context.Context, tx repository.AssignmentTx, req dto.CreateAssignmentRequest, section *string, now time.Time, validation *models.ValidationResult) ([]models.StaffAssignment, error) {
	count, err := tx.CountActiveSubjectAssignments(ctx, req.StaffID, req.AcademicYearID)
	if err != nil {
		return nil, err
	}
	limits := map[string]string{"count": strconv.Itoa(count), "limit": strconv.Itoa(s.limit)}
	if count >= s.limit {
		issue := models.NewIssue(models.IssueWorkloadLimitReached, limits)
		return nil, appErrors.WithDetails(appErrors.ErrWorkloadExceeded, issue.Message)
	}
	if count >= s.warnAt {
		validation.AddWarning(models.NewIssue(models.IssueWorkloadApproaching, limits))
	}

	duplicate, err := tx.FindActiveSubjectAssignment(ctx, models.SubjectAssignmentKey{
		StaffID:        req.StaffID,
		SubjectID:      *req.SubjectID,
		ClassID:        req.ClassID,
		Section:        section,
		AcademicYearID: req.AcademicYearID,
	})
	if err != nil {
		return nil, err
	}
	if duplicate != nil {
		issue := models.NewIssue(models.IssueDuplicateAssignment, nil)
		return nil, appErrors.WithDetails(appErrors.ErrDuplicateAssignment, issue.Message)
	}
	return tx.DeactivateSubjectAssignments(ctx, req.StaffID, *req.SubjectID, req.ClassID, now)
}

func (s *StaffAssignmentService) assignFailure(req dto.CreateAssignmentRequest, err error) error {
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		s.metrics.RecordAssignment(req.AssignmentType, outcomeForError(appErr))
		s.logger.Info("assignment rejected", zap.Int64("staff_id", req.StaffID), zap.String("code", appErr.Code), zap.Strings("reasons", appErr.Details))
		return appErr
	case repository.IsUniqueViolation(err, repository.ConstraintActiveSubjectSlot):
		s.metrics.RecordAssignment(req.AssignmentType, AssignmentOutcomeDuplicate)
		return appErrors.Clone(appErrors.ErrDuplicateAssignment, "")
	case repository.IsUniqueViolation(err, repository.ConstraintActiveStaffClassRole):
		s.metrics.RecordAssignment(req.AssignmentType, AssignmentOutcomeAlreadyClassTeacher)
		return appErrors.Clone(appErrors.ErrAlreadyClassTeacher, "")
	case repository.IsUniqueViolation(err, ""):
		return appErrors.Clone(appErrors.ErrConflict, "assignment conflicts with a concurrent change")
	}
	s.logger.Error("assign staff failed",
		zap.Int64("staff_id", req.StaffID),
		zap.Int64("academic_year_id", req.AcademicYearID),
		zap.String("assignment_type", string(req.AssignmentType)),
		zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
}

func outcomeForError(err *appErrors.Error) string {
	switch err.Code {
	case appErrors.ErrAlreadyClassTeacher.Code:
		return AssignmentOutcomeAlreadyClassTeacher
	case appErrors.ErrWorkloadExceeded.Code:
		return AssignmentOutcomeWorkloadExceeded
	case appErrors.ErrDuplicateAssignment.Code:
		return AssignmentOutcomeDuplicate
	default:
		return err.Code
	}
}

// Get returns a single assignment.
func (s *StaffAssignmentService) Get(ctx context.Context, id int64) (*models.StaffAssignmentDetail, error) {
	detail, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		s.logger.Error("load assignment failed", zap.Int64("assignment_id", id), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return detail, nil
}

// GetAssignments lists the assignments of a staff member. Only active rows are returned unless
// IncludeInactive is set.
func (s *StaffAssignmentService) GetAssignments(ctx context.Context, staffID int64, filter models.AssignmentFilter) ([]models.StaffAssignmentDetail, error) {
	items, err := s.store.ListByStaff(ctx, staffID, filter)
	if err != nil {
		s.logger.Error("list staff assignments failed", zap.Int64("staff_id", staffID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	if items == nil {
		items = []models.StaffAssignmentDetail{}
	}
	return items, nil
}

// GetAssignmentHistory lists active and ended assignments, most recent start first.
func (s *StaffAssignmentService) GetAssignmentHistory(ctx context.Context, filter models.AssignmentHistoryFilter) ([]models.StaffAssignmentDetail, error) {
	items, err := s.store.ListHistory(ctx, filter)
	if err != nil {
		s.logger.Error("list assignment history failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignment history")
	}
	if items == nil {
		items = []models.StaffAssignmentDetail{}
	}
	return items, nil
}

// EndAssignment deactivates an assignment. It reports false when the assignment was already inactive.
func (s *StaffAssignmentService) EndAssignment(ctx context.Context, id int64, req dto.EndAssignmentRequest, actor *models.JWTClaims) (bool, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if !detail.IsActive {
		return false, nil
	}

	endDate := s.now().UTC()
	if req.EndDate != nil {
		endDate = req.EndDate.UTC()
	}
	if endDate.Before(detail.StartDate) {
		return false, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before the assignment start date")
	}

	ended, err := s.store.End(ctx, id, endDate)
	if err != nil {
		s.logger.Error("end assignment failed", zap.Int64("assignment_id", id), zap.Error(err))
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end assignment")
	}
	if !ended {
		return false, nil
	}

	after := detail.StaffAssignment
	after.IsActive = false
	after.EndDate = &endDate
	emitAudit(ctx, s.audit, s.logger, "staff-assignment-service", &models.AuditLog{
		UserID:     auditActor(actor),
		Action:     models.AuditActionAssignmentEnd,
		Resource:   models.AuditResourceAssignment,
		ResourceID: auditResourceID(id),
		OldValues:  auditSnapshot(detail.StaffAssignment),
		NewValues:  auditSnapshot(after),
	})
	s.invalidateWorkload(ctx, detail.AcademicYearID)
	return true, nil
}

// DeleteAssignment permanently removes an assignment.
func (s *StaffAssignmentService) DeleteAssignment(ctx context.Context, id int64, actor *models.JWTClaims) error {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		s.logger.Error("delete assignment failed", zap.Int64("assignment_id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	emitAudit(ctx, s.audit, s.logger, "staff-assignment-service", &models.AuditLog{
		UserID:     auditActor(actor),
		Action:     models.AuditActionAssignmentDelete,
		Resource:   models.AuditResourceAssignment,
		ResourceID: auditResourceID(id),
		OldValues:  auditSnapshot(detail.StaffAssignment),
	})
	s.invalidateWorkload(ctx, detail.AcademicYearID)
	return nil
}

func (s *StaffAssignmentService) invalidateWorkload(ctx context.Context, academicYearID int64) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("%s:*", workloadCachePrefix(academicYearID))
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("workload cache invalidation failed", zap.Int64("academic_year_id", academicYearID), zap.Error(err))
	}
}
