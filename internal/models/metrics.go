package models

import "time"

// SystemMetrics is a point-in-time summary of instrumentation counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	StaffCodesGenerated      uint64    `json:"staff_codes_generated"`
	StaffCodeRetries         uint64    `json:"staff_code_retries"`
	AssignmentsCreated       uint64    `json:"assignments_created"`
	AssignmentsRejected      uint64    `json:"assignments_rejected"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
