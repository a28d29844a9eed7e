package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionStaffCreate         = "STAFF_CREATE"
	AuditActionStaffUpdate         = "STAFF_UPDATE"
	AuditActionStaffStatus         = "STAFF_STATUS_CHANGE"
	AuditActionStaffDelete         = "STAFF_DELETE"
	AuditActionAssignmentCreate    = "ASSIGNMENT_CREATE"
	AuditActionAssignmentSupersede = "ASSIGNMENT_SUPERSEDE"
	AuditActionAssignmentEnd       = "ASSIGNMENT_END"
	AuditActionAssignmentDelete    = "ASSIGNMENT_DELETE"
)

// Audit resources.
const (
	AuditResourceStaff      = "staff"
	AuditResourceAssignment = "staff_assignment"
)

// AuditLog represents an audit trail record with before/after snapshots.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
