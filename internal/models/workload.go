package models

// WorkloadLevel buckets a staff member's total active assignments.
type WorkloadLevel string

const (
	WorkloadLight      WorkloadLevel = "light"
	WorkloadModerate   WorkloadLevel = "moderate"
	WorkloadHeavy      WorkloadLevel = "heavy"
	WorkloadOverloaded WorkloadLevel = "overloaded"
)

// WorkloadSnapshot aggregates one staff member's active assignments in an academic year.
type WorkloadSnapshot struct {
	StaffID                   int64         `json:"staff_id"`
	StaffCode                 string        `json:"staff_code"`
	StaffName                 string        `json:"staff_name"`
	Department                *string       `json:"department,omitempty"`
	AcademicYearID            int64         `json:"academic_year_id"`
	TotalAssignments          int           `json:"total_assignments"`
	ClassTeacherAssignments   int           `json:"class_teacher_assignments"`
	SubjectTeacherAssignments int           `json:"subject_teacher_assignments"`
	DistinctClasses           int           `json:"distinct_classes"`
	DistinctSubjects          int           `json:"distinct_subjects"`
	EstimatedWeeklyHours      float64       `json:"estimated_weekly_hours"`
	Level                     WorkloadLevel `json:"level"`
	Recommendations           []string      `json:"recommendations"`
}

// WorkloadSummary describes the population of a distribution.
type WorkloadSummary struct {
	StaffCount        int                   `json:"staff_count"`
	TotalAssignments  int                   `json:"total_assignments"`
	MeanAssignments   float64               `json:"mean_assignments"`
	StdDevAssignments float64               `json:"stddev_assignments"`
	Imbalanced        bool                  `json:"imbalanced"`
	LevelCounts       map[WorkloadLevel]int `json:"level_counts"`
	Recommendations   []string              `json:"recommendations"`
}

// WorkloadDistribution is the workload of every active teaching staff member for a year.
type WorkloadDistribution struct {
	AcademicYearID int64              `json:"academic_year_id"`
	Department     *string            `json:"department,omitempty"`
	Snapshots      []WorkloadSnapshot `json:"snapshots"`
	Summary        WorkloadSummary    `json:"summary"`
}
