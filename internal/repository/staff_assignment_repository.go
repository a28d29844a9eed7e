package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-staff-api/internal/models"
	"github.com/noah-isme/sma-staff-api/pkg/database"
)

const assignmentColumns = "id, staff_id, academic_year_id, assignment_type, class_id, subject_id, section, start_date, end_date, is_active, created_at, updated_at"

const assignmentDetailSelect = `SELECT sa.id, sa.staff_id, sa.academic_year_id, sa.assignment_type, sa.class_id, sa.subject_id, sa.section,
	sa.start_date, sa.end_date, sa.is_active, sa.created_at, sa.updated_at,
	s.staff_code, s.full_name AS staff_name, c.name AS class_name, sb.name AS subject_name, ay.name AS academic_year_name
FROM staff_assignments sa
LEFT JOIN staff_members s ON s.id = sa.staff_id
LEFT JOIN classes c ON c.id = sa.class_id
LEFT JOIN subjects sb ON sb.id = sa.subject_id
LEFT JOIN academic_years ay ON ay.id = sa.academic_year_id`

// StaffAssignmentRepository persists staff assignments.
type StaffAssignmentRepository struct {
	db *sqlx.DB
}

// NewStaffAssignmentRepository constructs the repository.
func NewStaffAssignmentRepository(db *sqlx.DB) *StaffAssignmentRepository {
	return &StaffAssignmentRepository{db: db}
}

// AssignmentTx exposes the statements that must run inside one assignment transaction.
type AssignmentTx interface {
	LockStaffYear(ctx context.Context, staffID, academicYearID int64) error
	LockClassYear(ctx context.Context, classID, academicYearID int64) error
	FindActiveClassTeacherByStaff(ctx context.Context, staffID, academicYearID int64) (*models.StaffAssignment, error)
	CountActiveSubjectAssignments(ctx context.Context, staffID, academicYearID int64) (int, error)
	FindActiveSubjectAssignment(ctx context.Context, key models.SubjectAssignmentKey) (*models.StaffAssignment, error)
	DeactivateClassTeachers(ctx context.Context, classID, academicYearID int64, endDate time.Time) ([]models.StaffAssignment, error)
	DeactivateSubjectAssignments(ctx context.Context, staffID, subjectID int64, classID *int64, endDate time.Time) ([]models.StaffAssignment, error)
	Insert(ctx context.Context, assignment *models.StaffAssignment) error
}

// InTx runs fn inside a single transaction. Advisory locks taken through the
// AssignmentTx are released when the transaction ends; callers take the staff
// lock before the class lock.
func (r *StaffAssignmentRepository) InTx(ctx context.Context, fn func(tx AssignmentTx) error) error {
	return database.Transact(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&assignmentTx{tx: tx})
	})
}

type assignmentTx struct {
	tx *sqlx.Tx
}

func (t *assignmentTx) lock(ctx context.Context, key string) error {
	if _, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("advisory lock %s: %w", key, err)
	}
	return nil
}

func (t *assignmentTx) LockStaffYear(ctx context.Context, staffID, academicYearID int64) error {
	return t.lock(ctx, fmt.Sprintf("staff_assignment:staff:%d:%d", staffID, academicYearID))
}

func (t *assignmentTx) LockClassYear(ctx context.Context, classID, academicYearID int64) error {
	return t.lock(ctx, fmt.Sprintf("staff_assignment:class:%d:%d", classID, academicYearID))
}

func (t *assignmentTx) FindActiveClassTeacherByStaff(ctx context.Context, staffID, academicYearID int64) (*models.StaffAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff_assignments WHERE staff_id = $1 AND academic_year_id = $2 AND assignment_type = $3 AND is_active = TRUE LIMIT 1`, assignmentColumns)
	var assignment models.StaffAssignment
	if err := t.tx.GetContext(ctx, &assignment, query, staffID, academicYearID, models.AssignmentTypeClassTeacher); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active class teacher: %w", err)
	}
	return &assignment, nil
}

func (t *assignmentTx) CountActiveSubjectAssignments(ctx context.Context, staffID, academicYearID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM staff_assignments WHERE staff_id = $1 AND academic_year_id = $2 AND assignment_type = $3 AND is_active = TRUE`
	var total int
	if err := t.tx.GetContext(ctx, &total, query, staffID, academicYearID, models.AssignmentTypeSubjectTeacher); err != nil {
		return 0, fmt.Errorf("count active subject assignments: %w", err)
	}
	return total, nil
}

func (t *assignmentTx) FindActiveSubjectAssignment(ctx context.Context, key models.SubjectAssignmentKey) (*models.StaffAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff_assignments
WHERE staff_id = $1 AND subject_id = $2 AND class_id IS NOT DISTINCT FROM $3 AND section IS NOT DISTINCT FROM $4
	AND academic_year_id = $5 AND assignment_type = $6 AND is_active = TRUE
LIMIT 1`, assignmentColumns)
	var assignment models.StaffAssignment
	err := t.tx.GetContext(ctx, &assignment, query, key.StaffID, key.SubjectID, key.ClassID, key.Section, key.AcademicYearID, models.AssignmentTypeSubjectTeacher)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active subject assignment: %w", err)
	}
	return &assignment, nil
}

func (t *assignmentTx) DeactivateClassTeachers(ctx context.Context, classID, academicYearID int64, endDate time.Time) ([]models.StaffAssignment, error) {
	query := fmt.Sprintf(`UPDATE staff_assignments SET is_active = FALSE, end_date = $3, updated_at = $3
WHERE class_id = $1 AND academic_year_id = $2 AND assignment_type = $4 AND is_active = TRUE
RETURNING %s`, assignmentColumns)
	var superseded []models.StaffAssignment
	if err := t.tx.SelectContext(ctx, &superseded, query, classID, academicYearID, endDate, models.AssignmentTypeClassTeacher); err != nil {
		return nil, fmt.Errorf("deactivate class teachers: %w", err)
	}
	return superseded, nil
}

func (t *assignmentTx) DeactivateSubjectAssignments(ctx context.Context, staffID, subjectID int64, classID *int64, endDate time.Time) ([]models.StaffAssignment, error) {
	query := fmt.Sprintf(`UPDATE staff_assignments SET is_active = FALSE, end_date = $4, updated_at = $4
WHERE staff_id = $1 AND subject_id = $2 AND class_id IS NOT DISTINCT FROM $3 AND assignment_type = $5 AND is_active = TRUE
RETURNING %s`, assignmentColumns)
	var superseded []models.StaffAssignment
	if err := t.tx.SelectContext(ctx, &superseded, query, staffID, subjectID, classID, endDate, models.AssignmentTypeSubjectTeacher); err != nil {
		return nil, fmt.Errorf("deactivate subject assignments: %w", err)
	}
	return superseded, nil
}

func (t *assignmentTx) Insert(ctx context.Context, assignment *models.StaffAssignment) error {
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	const query = `INSERT INTO staff_assignments (staff_id, academic_year_id, assignment_type, class_id, subject_id, section, start_date, end_date, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id`
	err := t.tx.QueryRowxContext(ctx, query,
		assignment.StaffID,
		assignment.AcademicYearID,
		assignment.AssignmentType,
		assignment.ClassID,
		assignment.SubjectID,
		assignment.Section,
		assignment.StartDate,
		assignment.EndDate,
		assignment.IsActive,
		assignment.CreatedAt,
		assignment.UpdatedAt,
	).Scan(&assignment.ID)
	if err != nil {
		return fmt.Errorf("insert staff assignment: %w", err)
	}
	return nil
}

// FindByID returns an assignment with descriptive fields.
func (r *StaffAssignmentRepository) FindByID(ctx context.Context, id int64) (*models.StaffAssignmentDetail, error) {
	query := assignmentDetailSelect + "\nWHERE sa.id = $1"
	var detail models.StaffAssignmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByStaff returns the assignments held by a staff member.
func (r *StaffAssignmentRepository) ListByStaff(ctx context.Context, staffID int64, filter models.AssignmentFilter) ([]models.StaffAssignmentDetail, error) {
	query := strings.Builder{}
	query.WriteString(assignmentDetailSelect)
	query.WriteString("\nWHERE sa.staff_id = $1")
	args := []interface{}{staffID}

	if filter.AcademicYearID != nil {
		args = append(args, *filter.AcademicYearID)
		fmt.Fprintf(&query, " AND sa.academic_year_id = $%d", len(args))
	}
	if filter.AssignmentType != "" {
		args = append(args, filter.AssignmentType)
		fmt.Fprintf(&query, " AND sa.assignment_type = $%d", len(args))
	}
	if !filter.IncludeInactive {
		query.WriteString(" AND sa.is_active = TRUE")
	}
	query.WriteString("\nORDER BY sa.start_date DESC, sa.id DESC")

	var items []models.StaffAssignmentDetail
	if err := r.db.SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list staff assignments: %w", err)
	}
	return items, nil
}

// ListHistory returns active and ended assignments, most recent start first.
func (r *StaffAssignmentRepository) ListHistory(ctx context.Context, filter models.AssignmentHistoryFilter) ([]models.StaffAssignmentDetail, error) {
	query := strings.Builder{}
	query.WriteString(assignmentDetailSelect)
	query.WriteString("\nWHERE 1=1")
	var args []interface{}

	if filter.ClassID != nil {
		args = append(args, *filter.ClassID)
		fmt.Fprintf(&query, " AND sa.class_id = $%d", len(args))
	}
	if filter.SubjectID != nil {
		args = append(args, *filter.SubjectID)
		fmt.Fprintf(&query, " AND sa.subject_id = $%d", len(args))
	}
	if filter.AcademicYearID != nil {
		args = append(args, *filter.AcademicYearID)
		fmt.Fprintf(&query, " AND sa.academic_year_id = $%d", len(args))
	}
	if filter.AssignmentType != "" {
		args = append(args, filter.AssignmentType)
		fmt.Fprintf(&query, " AND sa.assignment_type = $%d", len(args))
	}
	query.WriteString("\nORDER BY sa.start_date DESC, sa.id DESC")

	var items []models.StaffAssignmentDetail
	if err := r.db.SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list assignment history: %w", err)
	}
	return items, nil
}

// ListActiveByYear returns every active assignment of the academic year, optionally for one staff member.
func (r *StaffAssignmentRepository) ListActiveByYear(ctx context.Context, academicYearID int64, staffID *int64) ([]models.StaffAssignment, error) {
	query := fmt.Sprintf("SELECT %s FROM staff_assignments WHERE academic_year_id = $1 AND is_active = TRUE", assignmentColumns)
	args := []interface{}{academicYearID}
	if staffID != nil {
		query += " AND staff_id = $2"
		args = append(args, *staffID)
	}
	query += " ORDER BY staff_id ASC, id ASC"

	var items []models.StaffAssignment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list active assignments: %w", err)
	}
	return items, nil
}

// End deactivates an active assignment. It reports false when the row was already inactive or absent.
func (r *StaffAssignmentRepository) End(ctx context.Context, id int64, endDate time.Time) (bool, error) {
	const query = `UPDATE staff_assignments SET is_active = FALSE, end_date = $2, updated_at = $3 WHERE id = $1 AND is_active = TRUE`
	res, err := r.db.ExecContext(ctx, query, id, endDate, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("end staff assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("end staff assignment rows affected: %w", err)
	}
	return affected > 0, nil
}

// Delete removes an assignment permanently.
func (r *StaffAssignmentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM staff_assignments WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete staff assignment: %w", err)
	}
	return expectAffected(res, "delete staff assignment")
}
