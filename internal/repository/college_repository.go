package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

// CollegeRepository reads the college roster. Colleges are reference data and
// survive the academic-year reset untouched.
type CollegeRepository struct {
	db *sqlx.DB
}

// NewCollegeRepository constructs the repository.
func NewCollegeRepository(db *sqlx.DB) *CollegeRepository {
	return &CollegeRepository{db: db}
}

// List returns every college ordered by name.
func (r *CollegeRepository) List(ctx context.Context) ([]models.College, error) {
	const query = `SELECT id, name, code, region, created_at FROM colleges ORDER BY name ASC`
	var records []models.College
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list colleges: %w", err)
	}
	return records, nil
}

// Exists reports whether the college id is known.
func (r *CollegeRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM colleges WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check college: %w", err)
	}
	return exists, nil
}
