package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuslink/portal-api/internal/models"
)

const authorJoinColumns = `u.id AS "author.id", u.name AS "author.name", u.email AS "author.email",
u.role AS "author.role", u.department AS "author.department", u.avatar AS "author.avatar", u.semester AS "author.semester"`

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// List returns announcements in insertion order. A department filter keeps
// department-less announcements alongside the department's own; composite
// visibility ordering is applied by the caller.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error) {
	query := fmt.Sprintf(`SELECT a.id, a.title, a.content, a.created_at, a.author_id, a.department, a.important, a.semester, %s
FROM announcements a JOIN users u ON u.id = a.author_id`, authorJoinColumns)
	args := []interface{}{}
	if filter.Department != nil {
		query += " WHERE (a.department = $1 OR a.department IS NULL)"
		args = append(args, *filter.Department)
	}
	query += " ORDER BY a.created_at ASC, a.id ASC"

	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

// GetByID returns an announcement by identifier.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	query := fmt.Sprintf(`SELECT a.id, a.title, a.content, a.created_at, a.author_id, a.department, a.important, a.semester, %s
FROM announcements a JOIN users u ON u.id = a.author_id WHERE a.id = $1`, authorJoinColumns)
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, id); err != nil {
		return nil, err
	}
	return &announcement, nil
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO announcements (id, title, content, created_at, author_id, department, important, semester)
VALUES (:id, :title, :content, :created_at, :author_id, :department, :important, :semester)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}
