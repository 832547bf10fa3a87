package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

// StudentRepository persists student accounts.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create stores a new student account.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students
	(id, prn, email, password_hash, full_name, college_id, branch, active, photo_url, photo_folder, created_at, updated_at)
	VALUES (:id, :prn, :email, :password_hash, :full_name, :college_id, :branch, :active, :photo_url, :photo_folder, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// FindByPRN returns a student by registration number.
func (r *StudentRepository) FindByPRN(ctx context.Context, prn string) (*models.Student, error) {
	const query = `SELECT id, prn, email, password_hash, full_name, college_id, branch, active, photo_url, photo_folder, created_at, updated_at
	FROM students WHERE prn = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, prn); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByPRN reports whether a student account already holds the PRN.
func (r *StudentRepository) ExistsByPRN(ctx context.Context, prn string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM students WHERE prn = $1)`, prn); err != nil {
		return false, fmt.Errorf("check student prn: %w", err)
	}
	return exists, nil
}

// ExistsByEmail reports whether a student account already holds the email.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM students WHERE email = $1)`, email); err != nil {
		return false, fmt.Errorf("check student email: %w", err)
	}
	return exists, nil
}
