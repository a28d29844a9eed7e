package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	codeErr := fmt.Errorf("create staff: %w", &pq.Error{Code: "23505", Constraint: ConstraintStaffCode})
	emailErr := &pq.Error{Code: "23505", Constraint: "staff_members_email_key"}
	fkErr := &pq.Error{Code: "23503", Constraint: ConstraintStaffCode}

	assert.True(t, IsUniqueViolation(codeErr, ConstraintStaffCode))
	assert.True(t, IsUniqueViolation(codeErr, ""))
	assert.False(t, IsUniqueViolation(emailErr, ConstraintStaffCode))
	assert.True(t, IsUniqueViolation(emailErr, ""))
	assert.False(t, IsUniqueViolation(fkErr, ConstraintStaffCode))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
}
