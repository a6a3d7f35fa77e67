package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuslink/portal-api/internal/models"
)

const professorJoinColumns = `u.id AS "professor.id", u.name AS "professor.name", u.email AS "professor.email",
u.role AS "professor.role", u.department AS "professor.department", u.avatar AS "professor.avatar", u.semester AS "professor.semester"`

// LectureRepository provides persistence for lectures.
type LectureRepository struct {
	db *sqlx.DB
}

// NewLectureRepository creates the repository.
func NewLectureRepository(db *sqlx.DB) *LectureRepository {
	return &LectureRepository{db: db}
}

// List returns lectures matching the filter, ascending by date and start
// time.
func (r *LectureRepository) List(ctx context.Context, filter models.LectureFilter) ([]models.Lecture, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Department != nil {
		where = append(where, fmt.Sprintf("l.department = $%d", len(args)+1))
		args = append(args, *filter.Department)
	}
	if filter.Semester != nil {
		where = append(where, fmt.Sprintf("l.semester = $%d", len(args)+1))
		args = append(args, *filter.Semester)
	}
	if filter.Date != "" {
		where = append(where, fmt.Sprintf("l.date = $%d", len(args)+1))
		args = append(args, filter.Date)
	}

	query := fmt.Sprintf(`SELECT l.id, l.title, l.description, l.date, l.start_time, l.end_time, l.location,
l.department, l.subject, l.professor_id, l.materials, l.semester, %s
FROM lectures l JOIN users u ON u.id = l.professor_id
WHERE %s ORDER BY l.date ASC, l.start_time ASC`, professorJoinColumns, strings.Join(where, " AND "))

	var lectures []models.Lecture
	if err := r.db.SelectContext(ctx, &lectures, query, args...); err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	return lectures, nil
}

// GetByID returns a lecture by identifier.
func (r *LectureRepository) GetByID(ctx context.Context, id string) (*models.Lecture, error) {
	query := fmt.Sprintf(`SELECT l.id, l.title, l.description, l.date, l.start_time, l.end_time, l.location,
l.department, l.subject, l.professor_id, l.materials, l.semester, %s
FROM lectures l JOIN users u ON u.id = l.professor_id WHERE l.id = $1`, professorJoinColumns)
	var lecture models.Lecture
	if err := r.db.GetContext(ctx, &lecture, query, id); err != nil {
		return nil, err
	}
	return &lecture, nil
}

// Create inserts a new lecture.
func (r *LectureRepository) Create(ctx context.Context, lecture *models.Lecture) error {
	if lecture.ID == "" {
		lecture.ID = uuid.NewString()
	}
	query := `INSERT INTO lectures (id, title, description, date, start_time, end_time, location, department, subject, professor_id, materials, semester)
VALUES (:id, :title, :description, :date, :start_time, :end_time, :location, :department, :subject, :professor_id, :materials, :semester)`
	if _, err := r.db.NamedExecContext(ctx, query, lecture); err != nil {
		return fmt.Errorf("create lecture: %w", err)
	}
	return nil
}
