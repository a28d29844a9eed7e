package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-staff-api/internal/models"
)

// AcademicYearRepository reads academic years.
type AcademicYearRepository struct {
	db *sqlx.DB
}

// NewAcademicYearRepository instantiates an academic year repository.
func NewAcademicYearRepository(db *sqlx.DB) *AcademicYearRepository {
	return &AcademicYearRepository{db: db}
}

// FindByID fetches an academic year.
func (r *AcademicYearRepository) FindByID(ctx context.Context, id int64) (*models.AcademicYear, error) {
	const query = `SELECT id, name, start_date, end_date, is_current FROM academic_years WHERE id = $1`
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		return nil, err
	}
	return &year, nil
}

// FindCurrent returns the academic year flagged as current.
func (r *AcademicYearRepository) FindCurrent(ctx context.Context) (*models.AcademicYear, error) {
	const query = `SELECT id, name, start_date, end_date, is_current FROM academic_years WHERE is_current = TRUE ORDER BY start_date DESC LIMIT 1`
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query); err != nil {
		return nil, err
	}
	return &year, nil
}
