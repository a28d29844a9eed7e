package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-staff-api/internal/models"
)

// ClassRepository reads classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID retrieves a class by ID.
func (r *ClassRepository) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	const query = `SELECT id, name, grade_level, section, created_at FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}
