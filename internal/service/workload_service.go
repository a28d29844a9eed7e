package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-staff-api/internal/models"
	appErrors "github.com/noah-isme/sma-staff-api/pkg/errors"
	"github.com/noah-isme/sma-staff-api/pkg/export"
)

const (
	periodsPerSubjectAssignment = 5.5
	imbalanceStdDevThreshold    = 2.0
)

// Export formats for the workload distribution.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type workloadStaffReader interface {
	FindByID(ctx context.Context, id int64) (*models.StaffMember, error)
	ListActiveTeaching(ctx context.Context, department string) ([]models.StaffMember, error)
}

type workloadAssignmentReader interface {
	ListActiveByYear(ctx context.Context, academicYearID int64, staffID *int64) ([]models.StaffAssignment, error)
}

type academicYearReader interface {
	FindByID(ctx context.Context, id int64) (*models.AcademicYear, error)
	FindCurrent(ctx context.Context) (*models.AcademicYear, error)
}

type tabularRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type titledRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportedFile is a rendered export ready for download.
type ExportedFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// WorkloadService computes advisory workload figures. Results are cached per academic year and
// invalidated whenever assignments change.
type WorkloadService struct {
	staff       workloadStaffReader
	assignments workloadAssignmentReader
	years       academicYearReader
	cache       *CacheService
	csv         tabularRenderer
	pdf         titledRenderer
	metrics     *MetricsService
	ttl         time.Duration
	logger      *zap.Logger
}

// WorkloadServiceOption customises a WorkloadService.
type WorkloadServiceOption func(*WorkloadService)

// WithWorkloadMetrics records the timing of the workload aggregation queries.
func WithWorkloadMetrics(metrics *MetricsService) WorkloadServiceOption {
	return func(s *WorkloadService) {
		s.metrics = metrics
	}
}

// NewWorkloadService constructs a WorkloadService.
func NewWorkloadService(staff workloadStaffReader, assignments workloadAssignmentReader, years academicYearReader, cache *CacheService, ttl time.Duration, logger *zap.Logger, opts ...WorkloadServiceOption) *WorkloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &WorkloadService{
		staff:       staff,
		assignments: assignments,
		years:       years,
		cache:       cache,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		ttl:         ttl,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ResolveAcademicYear returns the requested academic year id, or the current one when nil.
func (s *WorkloadService) ResolveAcademicYear(ctx context.Context, requested *int64) (int64, error) {
	var (
		year *models.AcademicYear
		err  error
	)
	if requested != nil {
		year, err = s.years.FindByID(ctx, *requested)
	} else {
		year, err = s.years.FindCurrent(ctx)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		s.logger.Error("resolve academic year failed", zap.Error(err))
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	return year.ID, nil
}

// GetWorkloadAnalytics returns the workload snapshot of one staff member for an academic year.
func (s *WorkloadService) GetWorkloadAnalytics(ctx context.Context, staffID, academicYearID int64) (*models.WorkloadSnapshot, error) {
	cacheKey := makeWorkloadCacheKey(academicYearID, "staff", strconv.FormatInt(staffID, 10))
	var cached models.WorkloadSnapshot
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	staff, err := s.staff.FindByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		s.logger.Error("load staff for workload failed", zap.Int64("staff_id", staffID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	start := time.Now()
	assignments, err := s.assignments.ListActiveByYear(ctx, academicYearID, &staffID)
	s.metrics.ObserveDBQuery("workload_staff", time.Since(start))
	if err != nil {
		s.logger.Error("load assignments for workload failed", zap.Int64("staff_id", staffID), zap.Int64("academic_year_id", academicYearID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute workload")
	}

	snapshot := BuildWorkloadSnapshot(staff, academicYearID, assignments)
	if err := s.cache.Set(ctx, cacheKey, snapshot, s.ttl); err != nil {
		s.logger.Debug("workload snapshot not cached", zap.Error(err))
	}
	return &snapshot, nil
}

// GetWorkloadDistribution returns a snapshot for every active teaching staff member plus a population summary.
func (s *WorkloadService) GetWorkloadDistribution(ctx context.Context, academicYearID int64, department string) (*models.WorkloadDistribution, error) {
	department = strings.TrimSpace(department)
	cacheKey := makeWorkloadCacheKey(academicYearID, "distribution", strings.ToLower(department))
	var cached models.WorkloadDistribution
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	staff, err := s.staff.ListActiveTeaching(ctx, department)
	if err != nil {
		s.logger.Error("list staff for distribution failed", zap.String("department", department), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute workload distribution")
	}
	start := time.Now()
	assignments, err := s.assignments.ListActiveByYear(ctx, academicYearID, nil)
	s.metrics.ObserveDBQuery("workload_distribution", time.Since(start))
	if err != nil {
		s.logger.Error("list assignments for distribution failed", zap.Int64("academic_year_id", academicYearID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute workload distribution")
	}

	byStaff := make(map[int64][]models.StaffAssignment)
	for _, assignment := range assignments {
		byStaff[assignment.StaffID] = append(byStaff[assignment.StaffID], assignment)
	}

	distribution := models.WorkloadDistribution{
		AcademicYearID: academicYearID,
		Snapshots:      make([]models.WorkloadSnapshot, 0, len(staff)),
	}
	if department != "" {
		distribution.Department = &department
	}
	for i := range staff {
		distribution.Snapshots = append(distribution.Snapshots, BuildWorkloadSnapshot(&staff[i], academicYearID, byStaff[staff[i].ID]))
	}
	distribution.Summary = SummarizeWorkload(distribution.Snapshots)

	if err := s.cache.Set(ctx, cacheKey, distribution, s.ttl); err != nil {
		s.logger.Debug("workload distribution not cached", zap.Error(err))
	}
	return &distribution, nil
}

// ExportDistribution renders the distribution as CSV or PDF.
func (s *WorkloadService) ExportDistribution(ctx context.Context, academicYearID int64, department, format string) (*ExportedFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	distribution, err := s.GetWorkloadDistribution(ctx, academicYearID, department)
	if err != nil {
		return nil, err
	}

	dataset := workloadDataset(distribution)
	filename := fmt.Sprintf("workload-distribution-%d.%s", academicYearID, format)
	var payload []byte
	var contentType string
	if format == ExportFormatCSV {
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	} else {
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("Workload distribution, academic year %d", academicYearID))
		contentType = "application/pdf"
	}
	if err != nil {
		s.logger.Error("render workload export failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportedFile{Filename: filename, ContentType: contentType, Payload: payload}, nil
}

// BuildWorkloadSnapshot aggregates the active assignments of one staff member.
func BuildWorkloadSnapshot(staff *models.StaffMember, academicYearID int64, assignments []models.StaffAssignment) models.WorkloadSnapshot {
	snapshot := models.WorkloadSnapshot{
		StaffID:        staff.ID,
		StaffCode:      staff.StaffCode,
		StaffName:      staff.FullName,
		Department:     staff.Department,
		AcademicYearID: academicYearID,
	}
	classes := make(map[int64]struct{})
	subjects := make(map[int64]struct{})
	for _, assignment := range assignments {
		if !assignment.IsActive {
			continue
		}
		snapshot.TotalAssignments++
		switch assignment.AssignmentType {
		case models.AssignmentTypeClassTeacher:
			snapshot.ClassTeacherAssignments++
		case models.AssignmentTypeSubjectTeacher:
			snapshot.SubjectTeacherAssignments++
		}
		if assignment.ClassID != nil {
			classes[*assignment.ClassID] = struct{}{}
		}
		if assignment.SubjectID != nil {
			subjects[*assignment.SubjectID] = struct{}{}
		}
	}
	snapshot.DistinctClasses = len(classes)
	snapshot.DistinctSubjects = len(subjects)
	snapshot.EstimatedWeeklyHours = float64(snapshot.SubjectTeacherAssignments) * periodsPerSubjectAssignment
	snapshot.Level = WorkloadLevelFor(snapshot.TotalAssignments)
	snapshot.Recommendations = workloadRecommendations(snapshot)
	return snapshot
}

// WorkloadLevelFor buckets a total assignment count.
func WorkloadLevelFor(total int) models.WorkloadLevel {
	switch {
	case total <= 3:
		return models.WorkloadLight
	case total <= 5:
		return models.WorkloadModerate
	case total <= 7:
		return models.WorkloadHeavy
	default:
		return models.WorkloadOverloaded
	}
}

func workloadRecommendations(snapshot models.WorkloadSnapshot) []string {
	recs := []string{}
	switch snapshot.Level {
	case models.WorkloadOverloaded:
		recs = append(recs, "Workload exceeds the recommended maximum; redistribute some assignments to colleagues with capacity")
	case models.WorkloadHeavy:
		recs = append(recs, "Workload is heavy; avoid adding further assignments this academic year")
	case models.WorkloadLight:
		if snapshot.TotalAssignments == 0 {
			recs = append(recs, "No active assignments this academic year")
		} else {
			recs = append(recs, "Capacity available for additional assignments")
		}
	}
	if snapshot.DistinctSubjects > 3 {
		recs = append(recs, fmt.Sprintf("Teaching %d distinct subjects; consider consolidating to fewer subjects", snapshot.DistinctSubjects))
	}
	if snapshot.EstimatedWeeklyHours > 30 {
		recs = append(recs, fmt.Sprintf("Estimated %.1f teaching hours per week exceeds 30", snapshot.EstimatedWeeklyHours))
	}
	if snapshot.ClassTeacherAssignments > 0 && snapshot.SubjectTeacherAssignments >= 6 {
		recs = append(recs, "Class teacher duties combined with many subject assignments; review pastoral capacity")
	}
	return recs
}

// SummarizeWorkload computes population statistics over snapshots. The standard deviation is the population form.
func SummarizeWorkload(snapshots []models.WorkloadSnapshot) models.WorkloadSummary {
	summary := models.WorkloadSummary{
		StaffCount: len(snapshots),
		LevelCounts: map[models.WorkloadLevel]int{
			models.WorkloadLight:      0,
			models.WorkloadModerate:   0,
			models.WorkloadHeavy:      0,
			models.WorkloadOverloaded: 0,
		},
		Recommendations: []string{},
	}
	if len(snapshots) == 0 {
		return summary
	}
	for _, snapshot := range snapshots {
		summary.TotalAssignments += snapshot.TotalAssignments
		summary.LevelCounts[snapshot.Level]++
	}
	n := float64(len(snapshots))
	summary.MeanAssignments = float64(summary.TotalAssignments) / n
	var variance float64
	for _, snapshot := range snapshots {
		diff := float64(snapshot.TotalAssignments) - summary.MeanAssignments
		variance += diff * diff
	}
	summary.StdDevAssignments = math.Sqrt(variance / n)
	summary.Imbalanced = summary.StdDevAssignments > imbalanceStdDevThreshold

	if summary.Imbalanced {
		summary.Recommendations = append(summary.Recommendations, fmt.Sprintf("Assignment counts vary widely (standard deviation %.2f); rebalance between heavily and lightly loaded staff", summary.StdDevAssignments))
	}
	if overloaded := summary.LevelCounts[models.WorkloadOverloaded]; overloaded > 0 {
		summary.Recommendations = append(summary.Recommendations, fmt.Sprintf("%d staff member(s) are overloaded", overloaded))
	}
	if light := summary.LevelCounts[models.WorkloadLight]; light > 0 && summary.LevelCounts[models.WorkloadOverloaded] > 0 {
		summary.Recommendations = append(summary.Recommendations, fmt.Sprintf("%d staff member(s) have light workloads and could absorb reassigned work", light))
	}
	return summary
}

func workloadDataset(distribution *models.WorkloadDistribution) export.Dataset {
	headers := []string{"Staff Code", "Name", "Department", "Total", "Class Teacher", "Subject Teacher", "Classes", "Subjects", "Weekly Hours", "Level"}
	rows := make([]map[string]string, 0, len(distribution.Snapshots))
	for _, snapshot := range distribution.Snapshots {
		department := ""
		if snapshot.Department != nil {
			department = *snapshot.Department
		}
		rows = append(rows, map[string]string{
			"Staff Code":      snapshot.StaffCode,
			"Name":            snapshot.StaffName,
			"Department":      department,
			"Total":           strconv.Itoa(snapshot.TotalAssignments),
			"Class Teacher":   strconv.Itoa(snapshot.ClassTeacherAssignments),
			"Subject Teacher": strconv.Itoa(snapshot.SubjectTeacherAssignments),
			"Classes":         strconv.Itoa(snapshot.DistinctClasses),
			"Subjects":        strconv.Itoa(snapshot.DistinctSubjects),
			"Weekly Hours":    strconv.FormatFloat(snapshot.EstimatedWeeklyHours, 'f', 1, 64),
			"Level":           string(snapshot.Level),
		})
	}
	summary := distribution.Summary
	footer := []string{
		fmt.Sprintf("Staff: %d, assignments: %d", summary.StaffCount, summary.TotalAssignments),
		fmt.Sprintf("Mean: %.2f, standard deviation: %.2f, imbalanced: %t", summary.MeanAssignments, summary.StdDevAssignments, summary.Imbalanced),
	}
	footer = append(footer, summary.Recommendations...)
	return export.Dataset{Headers: headers, Rows: rows, Footer: footer}
}

const workloadCacheRoot = "workload:year"

func workloadCachePrefix(academicYearID int64) string {
	return workloadCacheRoot + ":" + strconv.FormatInt(academicYearID, 10)
}

func makeWorkloadCacheKey(academicYearID int64, parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts)*16 + 24)
	builder.WriteString(workloadCachePrefix(academicYearID))
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}
