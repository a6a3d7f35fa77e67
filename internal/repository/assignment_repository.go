package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuslink/portal-api/internal/models"
)

// AssignmentRepository provides persistence for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns assignments matching the filter, ascending by due date.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Department != nil {
		where = append(where, fmt.Sprintf("a.department = $%d", len(args)+1))
		args = append(args, *filter.Department)
	}
	if filter.Semester != nil {
		where = append(where, fmt.Sprintf("a.semester = $%d", len(args)+1))
		args = append(args, *filter.Semester)
	}

	query := fmt.Sprintf(`SELECT a.id, a.title, a.description, a.due_date, a.created_at, a.department, a.subject,
a.author_id, a.attachments, a.semester, %s
FROM assignments a JOIN users u ON u.id = a.author_id
WHERE %s ORDER BY a.due_date ASC`, authorJoinColumns, strings.Join(where, " AND "))

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// GetByID returns an assignment by identifier.
func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf(`SELECT a.id, a.title, a.description, a.due_date, a.created_at, a.department, a.subject,
a.author_id, a.attachments, a.semester, %s
FROM assignments a JOIN users u ON u.id = a.author_id WHERE a.id = $1`, authorJoinColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO assignments (id, title, description, due_date, created_at, department, subject, author_id, attachments, semester)
VALUES (:id, :title, :description, :due_date, :created_at, :department, :subject, :author_id, :attachments, :semester)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}
