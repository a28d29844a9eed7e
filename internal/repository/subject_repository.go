package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-staff-api/internal/models"
)

// SubjectRepository reads subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByID returns a subject by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	const query = `SELECT id, code, name, created_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}
