package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// StaffCodeRepository answers sequence questions for staff code generation.
// Soft deleted staff rows are deliberately included in every count.
type StaffCodeRepository struct {
	db *sqlx.DB
}

// NewStaffCodeRepository constructs a StaffCodeRepository.
func NewStaffCodeRepository(db *sqlx.DB) *StaffCodeRepository {
	return &StaffCodeRepository{db: db}
}

// CountWithPrefix counts staff codes starting with prefix. The prefix is compared literally,
// so "_" and "%" in a configured school prefix carry no pattern meaning.
func (r *StaffCodeRepository) CountWithPrefix(ctx context.Context, prefix string) (int, error) {
	const query = `SELECT COUNT(*) FROM staff_members WHERE left(staff_code, length($1)) = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, prefix); err != nil {
		return 0, fmt.Errorf("count staff codes: %w", err)
	}
	return total, nil
}

// Exists reports whether any staff row, deleted or not, carries the code.
func (r *StaffCodeRepository) Exists(ctx context.Context, code string) (bool, error) {
	const query = `SELECT 1 FROM staff_members WHERE staff_code = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check staff code: %w", err)
	}
	return true, nil
}

// NextValue atomically increments the (scope, year) counter and returns the new value.
// The first use and every later use are floored at the number of codes already issued
// under codePrefix so that a populated table is never re-issued from 1.
func (r *StaffCodeRepository) NextValue(ctx context.Context, scope string, year int, codePrefix string) (int, error) {
	const query = `INSERT INTO staff_code_sequences (scope, year, last_value, updated_at)
VALUES ($1, $2, (SELECT COUNT(*) FROM staff_members WHERE left(staff_code, length($3)) = $3) + 1, NOW())
ON CONFLICT (scope, year) DO UPDATE
SET last_value = GREATEST(staff_code_sequences.last_value, (SELECT COUNT(*) FROM staff_members WHERE left(staff_code, length($3)) = $3)) + 1,
	updated_at = NOW()
RETURNING last_value`
	var value int
	if err := r.db.GetContext(ctx, &value, query, scope, year, codePrefix); err != nil {
		return 0, fmt.Errorf("next staff code value: %w", err)
	}
	return value, nil
}
