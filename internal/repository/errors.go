package repository

import (
	"errors"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// Constraint names declared in migrations/0001_staff_assignments.up.sql.
const (
	ConstraintStaffCode            = "staff_members_staff_code_key"
	ConstraintActiveClassTeacher   = "uq_staff_assignments_active_class_teacher"
	ConstraintActiveStaffClassRole = "uq_staff_assignments_active_staff_class_teacher"
	ConstraintActiveSubjectSlot    = "uq_staff_assignments_active_subject"
)

// IsUniqueViolation reports whether err is a Postgres unique violation. When constraint is
// non-empty the violated constraint must match it.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != pqUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
