package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/research-nest/researchnest-api/internal/models"
)

// FacultyRepository manages persistence for faculty records.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs a FacultyRepository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// FindByID fetches a faculty member by their formatted id.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	const query = `SELECT faculty_id, name, email, department, password_hash, created_at
        FROM faculty WHERE faculty_id = $1`
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// FindByEmail fetches a faculty member by email.
func (r *FacultyRepository) FindByEmail(ctx context.Context, email string) (*models.Faculty, error) {
	const query = `SELECT faculty_id, name, email, department, password_hash, created_at
        FROM faculty WHERE email = $1`
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, email); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// ExistsByEmail reports whether any faculty member uses the email.
func (r *FacultyRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, "SELECT 1 FROM faculty WHERE email = $1 LIMIT 1", email)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check faculty email: %w", err)
	}
	return true, nil
}

// Create inserts a new faculty record.
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	faculty.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO faculty (faculty_id, name, email, department, password_hash, created_at)
        VALUES (:faculty_id, :name, :email, :department, :password_hash, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}
