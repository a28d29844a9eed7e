package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-staff-api/internal/models"
)

const staffColumns = "id, staff_code, full_name, email, phone, category, status, department, designation, employment_type, joining_date, highest_qualification, specialization, license_number, created_at, updated_at, deleted_at"

// StaffRepository manages persistence for staff members.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// List returns non-deleted staff matching filters along with total count.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, int, error) {
	base := "FROM staff_members WHERE deleted_at IS NULL"
	var conditions []string
	var args []interface{}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(department) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(staff_code) LIKE $%d OR LOWER(COALESCE(email, '')) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"staff_code": "staff_code",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", staffColumns, base, column, order, size, offset)
	var staff []models.StaffMember
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}

	return staff, total, nil
}

// ListActiveTeaching returns every active teaching staff member, optionally within a department.
func (r *StaffRepository) ListActiveTeaching(ctx context.Context, department string) ([]models.StaffMember, error) {
	query := fmt.Sprintf("SELECT %s FROM staff_members WHERE deleted_at IS NULL AND category = $1 AND status = $2", staffColumns)
	args := []interface{}{models.StaffCategoryTeaching, models.StaffStatusActive}
	if department != "" {
		query += " AND LOWER(department) = LOWER($3)"
		args = append(args, department)
	}
	query += " ORDER BY full_name ASC, id ASC"

	var staff []models.StaffMember
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, fmt.Errorf("list active teaching staff: %w", err)
	}
	return staff, nil
}

// FindByID fetches a non-deleted staff member.
func (r *StaffRepository) FindByID(ctx context.Context, id int64) (*models.StaffMember, error) {
	query := fmt.Sprintf("SELECT %s FROM staff_members WHERE id = $1 AND deleted_at IS NULL", staffColumns)
	var staff models.StaffMember
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, err
	}
	return &staff, nil
}

// Create inserts a staff member and fills the generated id and timestamps.
func (r *StaffRepository) Create(ctx context.Context, staff *models.StaffMember) error {
	now := time.Now().UTC()
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = now
	}
	staff.UpdatedAt = now

	const query = `INSERT INTO staff_members (staff_code, full_name, email, phone, category, status, department, designation, employment_type, joining_date, highest_qualification, specialization, license_number, created_at, updated_at)
		VALUES (:staff_code, :full_name, :email, :phone, :category, :status, :department, :designation, :employment_type, :joining_date, :highest_qualification, :specialization, :license_number, :created_at, :updated_at)
		RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, staff)
	if err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("create staff: %w", err)
		}
		return fmt.Errorf("create staff: no id returned")
	}
	if err := rows.Scan(&staff.ID); err != nil {
		return fmt.Errorf("scan staff id: %w", err)
	}
	return nil
}

// Update modifies the mutable fields of a staff member. The staff code never changes.
func (r *StaffRepository) Update(ctx context.Context, staff *models.StaffMember) error {
	staff.UpdatedAt = time.Now().UTC()
	const query = `UPDATE staff_members SET full_name = :full_name, email = :email, phone = :phone, category = :category, status = :status, department = :department, designation = :designation, employment_type = :employment_type, joining_date = :joining_date, highest_qualification = :highest_qualification, specialization = :specialization, license_number = :license_number, updated_at = :updated_at WHERE id = :id AND deleted_at IS NULL`
	res, err := r.db.NamedExecContext(ctx, query, staff)
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	return expectAffected(res, "update staff")
}

// UpdateStatus changes the employment status of a staff member.
func (r *StaffRepository) UpdateStatus(ctx context.Context, id int64, status models.StaffStatus) error {
	const query = `UPDATE staff_members SET status = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update staff status: %w", err)
	}
	return expectAffected(res, "update staff status")
}

// SoftDelete stamps deleted_at. The row and its code remain for audit and sequencing.
func (r *StaffRepository) SoftDelete(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	const query = `UPDATE staff_members SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("soft delete staff: %w", err)
	}
	return expectAffected(res, "soft delete staff")
}

func expectAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
