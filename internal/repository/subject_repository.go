package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campuslink/portal-api/internal/models"
)

// SubjectRepository provides persistence for the subject catalog.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects matching the filter, ascending by name.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Department != nil {
		where = append(where, fmt.Sprintf("s.department = $%d", len(args)+1))
		args = append(args, *filter.Department)
	}
	if filter.Semester != nil {
		where = append(where, fmt.Sprintf("s.semester = $%d", len(args)+1))
		args = append(args, *filter.Semester)
	}

	query := fmt.Sprintf(`SELECT s.id, s.name, s.code, s.department, s.professor_id, s.description, s.semester,
s.credits, s.prerequisites, %s
FROM subjects s JOIN users u ON u.id = s.professor_id
WHERE %s ORDER BY s.name ASC`, professorJoinColumns, strings.Join(where, " AND "))

	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListByIDs returns the subjects with the given identifiers in catalog
// (course code) order.
func (r *SubjectRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Subject, error) {
	if len(ids) == 0 {
		return []models.Subject{}, nil
	}
	query := fmt.Sprintf(`SELECT s.id, s.name, s.code, s.department, s.professor_id, s.description, s.semester,
s.credits, s.prerequisites, %s
FROM subjects s JOIN users u ON u.id = s.professor_id
WHERE s.id = ANY($1) ORDER BY s.code ASC`, professorJoinColumns)

	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list subjects by ids: %w", err)
	}
	return subjects, nil
}

// GetByID returns a subject by identifier.
func (r *SubjectRepository) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	query := fmt.Sprintf(`SELECT s.id, s.name, s.code, s.department, s.professor_id, s.description, s.semester,
s.credits, s.prerequisites, %s
FROM subjects s JOIN users u ON u.id = s.professor_id WHERE s.id = $1`, professorJoinColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create inserts a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	query := `INSERT INTO subjects (id, name, code, department, professor_id, description, semester, credits, prerequisites)
VALUES (:id, :name, :code, :department, :professor_id, :description, :semester, :credits, :prerequisites)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}
