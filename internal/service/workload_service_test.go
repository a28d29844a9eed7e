package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-staff-api/internal/models"
	appErrors "github.com/noah-isme/sma-staff-api/pkg/errors"
)

func activeAssignment(id, staffID int64, kind models.AssignmentType, classID, subjectID *int64) models.StaffAssignment {
	return models.StaffAssignment{
		ID:             id,
		StaffID:        staffID,
		AcademicYearID: 1,
		AssignmentType: kind,
		ClassID:        classID,
		SubjectID:      subjectID,
		StartDate:      fixedNow,
		IsActive:       true,
	}
}

func TestWorkloadLevelFor(t *testing.T) {
	cases := map[int]models.WorkloadLevel{
		0: models.WorkloadLight,
		3: models.WorkloadLight,
		4: models.WorkloadModerate,
		5: models.WorkloadModerate,
		6: models.WorkloadHeavy,
		7: models.WorkloadHeavy,
		8: models.WorkloadOverloaded,
		9: models.WorkloadOverloaded,
	}
	for total, want := range cases {
		assert.Equal(t, want, WorkloadLevelFor(total), "total %d", total)
	}
}

func TestBuildWorkloadSnapshot(t *testing.T) {
	staff := &models.StaffMember{ID: 7, StaffCode: "SCH-STAFF-2026-0007", FullName: "Sari"}
	ended := activeAssignment(5, 7, models.AssignmentTypeSubjectTeacher, int64Ptr(3), int64Ptr(3))
	ended.IsActive = false
	assignments := []models.StaffAssignment{
		activeAssignment(1, 7, models.AssignmentTypeClassTeacher, int64Ptr(1), nil),
		activeAssignment(2, 7, models.AssignmentTypeSubjectTeacher, int64Ptr(1), int64Ptr(1)),
		activeAssignment(3, 7, models.AssignmentTypeSubjectTeacher, int64Ptr(2), int64Ptr(2)),
		activeAssignment(4, 7, models.AssignmentTypeSubjectTeacher, int64Ptr(1), int64Ptr(2)),
		ended,
	}

	snapshot := BuildWorkloadSnapshot(staff, 1, assignments)
	assert.Equal(t, 4, snapshot.TotalAssignments)
	assert.Equal(t, 1, snapshot.ClassTeacherAssignments)
	assert.Equal(t, 3, snapshot.SubjectTeacherAssignments)
	assert.Equal(t, 2, snapshot.DistinctClasses)
	assert.Equal(t, 2, snapshot.DistinctSubjects)
	assert.InDelta(t, 16.5, snapshot.EstimatedWeeklyHours, 0.001)
	assert.Equal(t, models.WorkloadModerate, snapshot.Level)
	assert.NotNil(t, snapshot.Recommendations)

	idle := BuildWorkloadSnapshot(staff, 1, nil)
	assert.Equal(t, models.WorkloadLight, idle.Level)
	assert.Equal(t, []string{"No active assignments this academic year"}, idle.Recommendations)
}

func TestSummarizeWorkload(t *testing.T) {
	snap := func(total int) models.WorkloadSnapshot {
		return models.WorkloadSnapshot{TotalAssignments: total, Level: WorkloadLevelFor(total)}
	}

	uneven := SummarizeWorkload([]models.WorkloadSnapshot{snap(0), snap(0), snap(8), snap(8)})
	assert.Equal(t, 4, uneven.StaffCount)
	assert.Equal(t, 16, uneven.TotalAssignments)
	assert.InDelta(t, 4.0, uneven.MeanAssignments, 0.0001)
	assert.InDelta(t, 4.0, uneven.StdDevAssignments, 0.0001)
	assert.True(t, uneven.Imbalanced)
	assert.Equal(t, 2, uneven.LevelCounts[models.WorkloadOverloaded])
	assert.NotEmpty(t, uneven.Recommendations)

	even := SummarizeWorkload([]models.WorkloadSnapshot{snap(2), snap(3), snap(4)})
	assert.InDelta(t, 0.8165, even.StdDevAssignments, 0.0001)
	assert.False(t, even.Imbalanced)
	assert.Empty(t, even.Recommendations)

	empty := SummarizeWorkload(nil)
	assert.Zero(t, empty.StaffCount)
	assert.Zero(t, empty.MeanAssignments)
	assert.False(t, empty.Imbalanced)
}

type workloadFixture struct {
	staff       *memoryStaffStore
	assignments *memoryAssignmentStore
	cache       *memoryCacheRepo
	svc         *WorkloadService
	ids         map[string]int64
}

func newWorkloadFixture() *workloadFixture {
	f := &workloadFixture{
		staff:       newMemoryStaffStore(),
		assignments: &memoryAssignmentStore{},
		cache:       newMemoryCacheRepo(),
		ids:         make(map[string]int64),
	}
	teacher := func(name, department string, status models.StaffStatus) {
		s := f.staff.add(models.StaffMember{
			FullName:   name,
			Category:   models.StaffCategoryTeaching,
			Status:     status,
			Department: strPtr(department),
		})
		f.ids[name] = s.ID
	}
	teacher("Ani", "Science", models.StaffStatusActive)
	teacher("Budi", "Languages", models.StaffStatusActive)
	teacher("Cici", "Languages", models.StaffStatusActive)
	teacher("Dodi", "Science", models.StaffStatusInactive)
	clerk := f.staff.add(models.StaffMember{FullName: "Eka", Category: models.StaffCategoryNonTeaching, Status: models.StaffStatusActive})
	f.ids["Eka"] = clerk.ID

	var next int64
	add := func(staff string, kind models.AssignmentType, classID, subjectID *int64) {
		next++
		f.assignments.rows = append(f.assignments.rows, activeAssignment(next, f.ids[staff], kind, classID, subjectID))
	}
	add("Ani", models.AssignmentTypeClassTeacher, int64Ptr(1), nil)
	for subject := int64(1); subject <= 7; subject++ {
		add("Ani", models.AssignmentTypeSubjectTeacher, int64Ptr(subject), int64Ptr(subject))
	}
	add("Budi", models.AssignmentTypeSubjectTeacher, int64Ptr(2), int64Ptr(2))

	years := memoryYears{years: map[int64]*models.AcademicYear{
		1: {ID: 1, Name: "2026/2027", IsCurrent: true},
		2: {ID: 2, Name: "2025/2026"},
	}, current: 1}
	cache := NewCacheService(f.cache, nil, time.Minute, zap.NewNop(), true)
	f.svc = NewWorkloadService(f.staff, f.assignments, years, cache, time.Minute, zap.NewNop(), WithWorkloadMetrics(NewMetricsService()))
	return f
}

func TestWorkloadServiceAnalytics(t *testing.T) {
	f := newWorkloadFixture()
	ctx := context.Background()

	snapshot, err := f.svc.GetWorkloadAnalytics(ctx, f.ids["Ani"], 1)
	require.NoError(t, err)
	assert.Equal(t, 8, snapshot.TotalAssignments)
	assert.Equal(t, 7, snapshot.SubjectTeacherAssignments)
	assert.Equal(t, models.WorkloadOverloaded, snapshot.Level)
	assert.InDelta(t, 38.5, snapshot.EstimatedWeeklyHours, 0.001)
	assert.True(t, f.cache.has(makeWorkloadCacheKey(1, "staff", formatID(f.ids["Ani"]))))

	_, err = f.svc.GetWorkloadAnalytics(ctx, 999, 1)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestWorkloadServiceDistribution(t *testing.T) {
	f := newWorkloadFixture()
	ctx := context.Background()

	distribution, err := f.svc.GetWorkloadDistribution(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, distribution.Snapshots, 3)
	assert.Nil(t, distribution.Department)
	assert.Equal(t, 3, distribution.Summary.StaffCount)
	assert.Equal(t, 9, distribution.Summary.TotalAssignments)
	assert.InDelta(t, 3.0, distribution.Summary.MeanAssignments, 0.0001)
	assert.True(t, distribution.Summary.Imbalanced)
	assert.Equal(t, 1, distribution.Summary.LevelCounts[models.WorkloadOverloaded])
	assert.Equal(t, 2, distribution.Summary.LevelCounts[models.WorkloadLight])

	science, err := f.svc.GetWorkloadDistribution(ctx, 1, "science")
	require.NoError(t, err)
	require.Len(t, science.Snapshots, 1)
	assert.Equal(t, "Ani", science.Snapshots[0].StaffName)
	require.NotNil(t, science.Department)
	assert.Equal(t, "science", *science.Department)
}

func TestWorkloadServiceDistributionServedFromCache(t *testing.T) {
	f := newWorkloadFixture()
	ctx := context.Background()

	first, err := f.svc.GetWorkloadDistribution(ctx, 1, "")
	require.NoError(t, err)
	assert.True(t, f.cache.has("workload:year:1:distribution"))

	f.assignments.rows = nil
	cached, err := f.svc.GetWorkloadDistribution(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, first.Summary.TotalAssignments, cached.Summary.TotalAssignments)

	require.NoError(t, f.cache.DeleteByPattern(ctx, "workload:year:1:*"))
	fresh, err := f.svc.GetWorkloadDistribution(ctx, 1, "")
	require.NoError(t, err)
	assert.Zero(t, fresh.Summary.TotalAssignments)
}

func TestWorkloadServiceResolveAcademicYear(t *testing.T) {
	f := newWorkloadFixture()
	ctx := context.Background()

	id, err := f.svc.ResolveAcademicYear(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = f.svc.ResolveAcademicYear(ctx, int64Ptr(2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	_, err = f.svc.ResolveAcademicYear(ctx, int64Ptr(42))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestWorkloadServiceExportDistribution(t *testing.T) {
	f := newWorkloadFixture()
	ctx := context.Background()

	file, err := f.svc.ExportDistribution(ctx, 1, "", "CSV")
	require.NoError(t, err)
	assert.Equal(t, "workload-distribution-1.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Payload, []byte("Staff Code,Name,Department,Total")))
	assert.Contains(t, string(file.Payload), "overloaded")

	pdf, err := f.svc.ExportDistribution(ctx, 1, "", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Payload, []byte("%PDF")))

	_, err = f.svc.ExportDistribution(ctx, 1, "", "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
