package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuslink/portal-api/internal/models"
)

const teacherJoinColumns = `u.id AS "teacher.id", u.name AS "teacher.name", u.email AS "teacher.email",
u.role AS "teacher.role", u.department AS "teacher.department", u.avatar AS "teacher.avatar", u.semester AS "teacher.semester"`

const senderJoinColumns = `u.id AS "sender.id", u.name AS "sender.name", u.email AS "sender.email",
u.role AS "sender.role", u.department AS "sender.department", u.avatar AS "sender.avatar", u.semester AS "sender.semester"`

// ChatRepository provides persistence for chat groups and messages.
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository creates the repository.
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// ListGroupsByTeacher returns the chat groups a teacher created.
func (r *ChatRepository) ListGroupsByTeacher(ctx context.Context, teacherID string) ([]models.ChatGroup, error) {
	query := fmt.Sprintf(`SELECT g.id, g.name, g.subject_id, g.teacher_id, g.semester, g.created_at, %s
FROM chat_groups g JOIN users u ON u.id = g.teacher_id
WHERE g.teacher_id = $1 ORDER BY g.created_at ASC`, teacherJoinColumns)

	var groups []models.ChatGroup
	if err := r.db.SelectContext(ctx, &groups, query, teacherID); err != nil {
		return nil, fmt.Errorf("list chat groups by teacher: %w", err)
	}
	return groups, nil
}

// ListGroupsByStudent returns chat groups whose subject the student is
// enrolled in.
func (r *ChatRepository) ListGroupsByStudent(ctx context.Context, studentID string) ([]models.ChatGroup, error) {
	query := fmt.Sprintf(`SELECT g.id, g.name, g.subject_id, g.teacher_id, g.semester, g.created_at, %s
FROM chat_groups g
JOIN users u ON u.id = g.teacher_id
JOIN users stu ON stu.id = $1
WHERE g.subject_id = ANY(stu.enrolled_subjects)
ORDER BY g.created_at ASC`, teacherJoinColumns)

	var groups []models.ChatGroup
	if err := r.db.SelectContext(ctx, &groups, query, studentID); err != nil {
		return nil, fmt.Errorf("list chat groups by student: %w", err)
	}
	return groups, nil
}

// GetGroupByID returns a chat group by identifier.
func (r *ChatRepository) GetGroupByID(ctx context.Context, id string) (*models.ChatGroup, error) {
	query := fmt.Sprintf(`SELECT g.id, g.name, g.subject_id, g.teacher_id, g.semester, g.created_at, %s
FROM chat_groups g JOIN users u ON u.id = g.teacher_id WHERE g.id = $1`, teacherJoinColumns)
	var group models.ChatGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// CreateGroup inserts a new chat group.
func (r *ChatRepository) CreateGroup(ctx context.Context, group *models.ChatGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO chat_groups (id, name, subject_id, teacher_id, semester, created_at)
VALUES (:id, :name, :subject_id, :teacher_id, :semester, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create chat group: %w", err)
	}
	return nil
}

// ListMessages returns a group's messages ascending by creation time so
// clients can render them without re-sorting.
func (r *ChatRepository) ListMessages(ctx context.Context, chatGroupID string) ([]models.Message, error) {
	query := fmt.Sprintf(`SELECT m.id, m.content, m.sender_id, m.chat_group_id, m.created_at, %s
FROM messages m JOIN users u ON u.id = m.sender_id
WHERE m.chat_group_id = $1 ORDER BY m.created_at ASC, m.id ASC`, senderJoinColumns)

	var messages []models.Message
	if err := r.db.SelectContext(ctx, &messages, query, chatGroupID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// CreateMessage inserts a new message.
func (r *ChatRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO messages (id, content, sender_id, chat_group_id, created_at)
VALUES (:id, :content, :sender_id, :chat_group_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}
