package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-staff-api/internal/dto"
	"github.com/noah-isme/sma-staff-api/internal/models"
	"github.com/noah-isme/sma-staff-api/internal/repository"
	"github.com/noah-isme/sma-staff-api/pkg/config"
	appErrors "github.com/noah-isme/sma-staff-api/pkg/errors"
)

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, int, error)
	FindByID(ctx context.Context, id int64) (*models.StaffMember, error)
	Create(ctx context.Context, staff *models.StaffMember) error
	Update(ctx context.Context, staff *models.StaffMember) error
	UpdateStatus(ctx context.Context, id int64, status models.StaffStatus) error
	SoftDelete(ctx context.Context, id int64) error
}

type staffCodeGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// StaffService manages staff records.
type StaffService struct {
	repo      staffRepository
	codes     staffCodeGenerator
	audit     auditLogger
	validator *validator.Validate
	metrics   *MetricsService
	cache     *CacheService
	logger    *zap.Logger

	createAttempts int
	backoffBase    time.Duration
	backoffJitter  time.Duration
}

// StaffServiceOption customises the service.
type StaffServiceOption func(*StaffService)

// WithStaffCache lets staff mutations drop cached workload reports, which embed staff names and status.
func WithStaffCache(cache *CacheService) StaffServiceOption {
	return func(s *StaffService) {
		s.cache = cache
	}
}

// NewStaffService constructs a StaffService.
func NewStaffService(repo staffRepository, codes staffCodeGenerator, audit auditLogger, cfg config.StaffConfig, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, opts ...StaffServiceOption) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := cfg.CreateAttempts
	if attempts <= 0 {
		attempts = 10
	}
	s := &StaffService{
		repo:           repo,
		codes:          codes,
		audit:          audit,
		validator:      validate,
		metrics:        metrics,
		logger:         logger,
		createAttempts: attempts,
		backoffBase:    cfg.CreateBackoffBase,
		backoffJitter:  cfg.CreateBackoffJitter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns staff plus pagination data.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, *models.Pagination, error) {
	staff, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list staff failed", zap.Error(err))
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return staff, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a staff member by id.
func (s *StaffService) Get(ctx context.Context, id int64) (*models.StaffMember, error) {
	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		s.logger.Error("load staff failed", zap.Int64("staff_id", id), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	return staff, nil
}

// Create registers a staff member. Generated codes that collide at insert time are
// regenerated with exponential backoff; a caller supplied code is never retried.
func (s *StaffService) Create(ctx context.Context, req dto.CreateStaffRequest, actor *models.JWTClaims) (*models.StaffMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	explicitCode := normalizeOptional(req.StaffCode)
	for attempt := 0; attempt < s.createAttempts; attempt++ {
		staff := newStaffFromRequest(req)
		if explicitCode != nil {
			staff.StaffCode = *explicitCode
		} else {
			code, err := s.codes.Generate(ctx)
			if err != nil {
				return nil, err
			}
			staff.StaffCode = code
		}

		err := s.repo.Create(ctx, staff)
		if err == nil {
			emitAudit(ctx, s.audit, s.logger, "staff-service", &models.AuditLog{
				UserID:     auditActor(actor),
				Action:     models.AuditActionStaffCreate,
				Resource:   models.AuditResourceStaff,
				ResourceID: auditResourceID(staff.ID),
				NewValues:  auditSnapshot(staff),
			})
			return staff, nil
		}

		if !repository.IsUniqueViolation(err, repository.ConstraintStaffCode) {
			if repository.IsUniqueViolation(err, "") {
				return nil, appErrors.Clone(appErrors.ErrConflict, "staff record conflicts with an existing record")
			}
			s.logger.Error("create staff failed", zap.String("staff_code", staff.StaffCode), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff member")
		}
		if explicitCode != nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "staff code "+*explicitCode+" is already in use")
		}

		s.metrics.RecordCodeRetry(CodeRetryStageConflict)
		s.logger.Info("staff code conflict, regenerating", zap.String("staff_code", staff.StaffCode), zap.Int("attempt", attempt+1))
		if attempt+1 < s.createAttempts {
			if err := sleepContext(ctx, conflictBackoff(attempt, s.backoffBase, s.backoffJitter)); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "staff creation cancelled")
			}
		}
	}

	s.metrics.RecordCreateConflictExhausted()
	s.logger.Warn("staff creation exhausted conflict retries", zap.Int("attempts", s.createAttempts))
	return nil, appErrors.Clone(appErrors.ErrPersistenceConflict, "could not persist staff member after repeated staff code conflicts")
}

// BulkCreate registers each item independently and reports per item outcomes.
func (s *StaffService) BulkCreate(ctx context.Context, req dto.BulkCreateStaffRequest, actor *models.JWTClaims) (*dto.BulkCreateStaffResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk staff payload")
	}
	result := &dto.BulkCreateStaffResult{Results: make([]dto.BulkCreateStaffItemResult, 0, len(req.Items))}
	for i, item := range req.Items {
		staff, err := s.Create(ctx, item, actor)
		if err != nil {
			appErr := appErrors.FromError(err)
			s.logger.Warn("bulk staff item failed", zap.Int("index", i), zap.String("code", appErr.Code), zap.Error(err))
			result.Failed++
			result.Results = append(result.Results, dto.BulkCreateStaffItemResult{Index: i, ErrorCode: appErr.Code, Error: appErr.Message})
			continue
		}
		result.Created++
		result.Results = append(result.Results, dto.BulkCreateStaffItemResult{Index: i, Staff: staff})
	}
	return result, nil
}

// Update modifies a staff member. The staff code is immutable.
func (s *StaffService) Update(ctx context.Context, id int64, req dto.UpdateStaffRequest, actor *models.JWTClaims) (*models.StaffMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	staff, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *staff

	staff.FullName = strings.TrimSpace(req.FullName)
	staff.Email = normalizeOptional(req.Email)
	staff.Phone = normalizeOptional(req.Phone)
	staff.Category = req.Category
	staff.Department = normalizeOptional(req.Department)
	staff.Designation = normalizeOptional(req.Designation)
	staff.EmploymentType = normalizeOptional(req.EmploymentType)
	staff.JoiningDate = req.JoiningDate
	staff.HighestQualification = normalizeOptional(req.HighestQualification)
	staff.Specialization = normalizeOptional(req.Specialization)
	staff.LicenseNumber = normalizeOptional(req.LicenseNumber)

	if err := s.repo.Update(ctx, staff); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		if repository.IsUniqueViolation(err, "") {
			return nil, appErrors.Clone(appErrors.ErrConflict, "staff record conflicts with an existing record")
		}
		s.logger.Error("update staff failed", zap.Int64("staff_id", id), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff member")
	}
	emitAudit(ctx, s.audit, s.logger, "staff-service", &models.AuditLog{
		UserID:     auditActor(actor),
		Action:     models.AuditActionStaffUpdate,
		Resource:   models.AuditResourceStaff,
		ResourceID: auditResourceID(id),
		OldValues:  auditSnapshot(before),
		NewValues:  auditSnapshot(staff),
	})
	s.invalidateWorkload(ctx, id)
	return staff, nil
}

// UpdateStatus changes a staff member's employment status.
func (s *StaffService) UpdateStatus(ctx context.Context, id int64, req dto.UpdateStaffStatusRequest, actor *models.JWTClaims) (*models.StaffMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	staff, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := staff.Status
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		s.logger.Error("update staff status failed", zap.Int64("staff_id", id), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff status")
	}
	staff.Status = req.Status
	emitAudit(ctx, s.audit, s.logger, "staff-service", &models.AuditLog{
		UserID:     auditActor(actor),
		Action:     models.AuditActionStaffStatus,
		Resource:   models.AuditResourceStaff,
		ResourceID: auditResourceID(id),
		OldValues:  auditSnapshot(map[string]models.StaffStatus{"status": previous}),
		NewValues:  auditSnapshot(map[string]models.StaffStatus{"status": req.Status}),
	})
	s.invalidateWorkload(ctx, id)
	return staff, nil
}

// Delete soft deletes a staff member; the row is kept for audit and its code stays reserved.
func (s *StaffService) Delete(ctx context.Context, id int64, actor *models.JWTClaims) error {
	staff, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		s.logger.Error("delete staff failed", zap.Int64("staff_id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete staff member")
	}
	emitAudit(ctx, s.audit, s.logger, "staff-service", &models.AuditLog{
		UserID:     auditActor(actor),
		Action:     models.AuditActionStaffDelete,
		Resource:   models.AuditResourceStaff,
		ResourceID: auditResourceID(id),
		OldValues:  auditSnapshot(staff),
	})
	s.invalidateWorkload(ctx, id)
	return nil
}

// invalidateWorkload drops workload reports for every year; a staff record does not know
// which years it appears in.
func (s *StaffService) invalidateWorkload(ctx context.Context, staffID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, workloadCacheRoot+":*"); err != nil {
		s.logger.Warn("workload cache invalidation failed", zap.Int64("staff_id", staffID), zap.Error(err))
	}
}

func newStaffFromRequest(req dto.CreateStaffRequest) *models.StaffMember {
	status := req.Status
	if status == "" {
		status = models.StaffStatusActive
	}
	return &models.StaffMember{
		FullName:             strings.TrimSpace(req.FullName),
		Email:                normalizeOptional(req.Email),
		Phone:                normalizeOptional(req.Phone),
		Category:             req.Category,
		Status:               status,
		Department:           normalizeOptional(req.Department),
		Designation:          normalizeOptional(req.Designation),
		EmploymentType:       normalizeOptional(req.EmploymentType),
		JoiningDate:          req.JoiningDate,
		HighestQualification: normalizeOptional(req.HighestQualification),
		Specialization:       normalizeOptional(req.Specialization),
		LicenseNumber:        normalizeOptional(req.LicenseNumber),
	}
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
