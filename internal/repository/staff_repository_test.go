package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-staff-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() { _ = sqlxDB.Close() }
}

var staffRowColumns = []string{"id", "staff_code", "full_name", "email", "category", "status", "department", "highest_qualification", "specialization", "license_number", "created_at", "updated_at", "deleted_at"}

func TestStaffRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(staffRowColumns).
		AddRow(int64(1), "SCH-STAFF-2026-0001", "Rina Hartono", "rina@example.com", "teaching", "active", "Science", "M.Sc Physics", "Physics", "TL-9", now, now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM staff_members WHERE deleted_at IS NULL AND category = $1 ORDER BY full_name ASC LIMIT 20 OFFSET 0")).
		WithArgs(models.StaffCategoryTeaching).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM staff_members WHERE deleted_at IS NULL AND category = $1")).
		WithArgs(models.StaffCategoryTeaching).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.StaffFilter{Category: models.StaffCategoryTeaching, SortBy: "full_name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "SCH-STAFF-2026-0001", list[0].StaffCode)
	require.NotNil(t, list[0].Specialization)
	assert.Equal(t, "Physics", *list[0].Specialization)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryListActiveTeachingByDepartment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND LOWER(department) = LOWER($3) ORDER BY full_name ASC, id ASC")).
		WithArgs(models.StaffCategoryTeaching, models.StaffStatusActive, "Science").
		WillReturnRows(sqlmock.NewRows(staffRowColumns))

	list, err := repo.ListActiveTeaching(context.Background(), "Science")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectQuery("INSERT INTO staff_members").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	staff := &models.StaffMember{StaffCode: "SCH-STAFF-2026-0001", FullName: "Rina", Category: models.StaffCategoryTeaching, Status: models.StaffStatusActive}
	require.NoError(t, repo.Create(context.Background(), staff))
	assert.Equal(t, int64(42), staff.ID)
	assert.False(t, staff.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryFindByIDExcludesDeleted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM staff_members WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositorySoftDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE staff_members SET deleted_at = $2")).
		WithArgs(int64(3), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SoftDelete(context.Background(), 3))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE staff_members SET deleted_at = $2")).
		WithArgs(int64(3), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SoftDelete(context.Background(), 3), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE staff_members SET status = $2")).
		WithArgs(int64(5), models.StaffStatusOnLeave, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 5, models.StaffStatusOnLeave))
	assert.NoError(t, mock.ExpectationsWereMet())
}
