package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuslink/portal-api/internal/models"
	appErrors "github.com/campuslink/portal-api/pkg/errors"
)

type chatRepository interface {
	ListGroupsByTeacher(ctx context.Context, teacherID string) ([]models.ChatGroup, error)
	ListGroupsByStudent(ctx context.Context, studentID string) ([]models.ChatGroup, error)
	GetGroupByID(ctx context.Context, id string) (*models.ChatGroup, error)
	CreateGroup(ctx context.Context, group *models.ChatGroup) error
	ListMessages(ctx context.Context, chatGroupID string) ([]models.Message, error)
	CreateMessage(ctx context.Context, message *models.Message) error
}

type chatUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CreateChatGroupRequest describes the group create payload.
type CreateChatGroupRequest struct {
	Name      string          `json:"name" validate:"required"`
	SubjectID string          `json:"subjectId" validate:"required"`
	Semester  models.Semester `json:"semester" validate:"required"`
}

// SendMessageRequest describes the message create payload.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// ChatService handles chat groups and messages. Group visibility follows
// participation: teachers see groups they created, students see groups for
// subjects they are enrolled in, admins see any group they address by ID.
type ChatService struct {
	repo      chatRepository
	users     chatUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChatService constructs the service.
func NewChatService(repo chatRepository, users chatUserRepository, validate *validator.Validate, logger *zap.Logger) *ChatService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{repo: repo, users: users, validator: validate, logger: logger}
}

// ListGroups returns the chat groups the user participates in. Roles
// without chat participation get an empty list.
func (s *ChatService) ListGroups(ctx context.Context, userID string) ([]models.ChatGroup, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var groups []models.ChatGroup
	switch user.Role {
	case models.RoleTeacher:
		groups, err = s.repo.ListGroupsByTeacher(ctx, user.ID)
	case models.RoleStudent:
		groups, err = s.repo.ListGroupsByStudent(ctx, user.ID)
	default:
		return []models.ChatGroup{}, nil
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list chat groups")
	}
	if groups == nil {
		groups = []models.ChatGroup{}
	}
	return groups, nil
}

// GetGroup returns a chat group the user can participate in.
func (s *ChatService) GetGroup(ctx context.Context, userID, groupID string) (*models.ChatGroup, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "chat group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load chat group")
	}

	if !canAccessGroup(user, group) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a participant of this chat group")
	}
	return group, nil
}

// CreateGroup opens a chat group for one of the teacher's subjects.
func (s *ChatService) CreateGroup(ctx context.Context, teacherID string, req CreateChatGroupRequest) (*models.ChatGroup, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create chat group payload")
	}
	if !req.Semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown semester")
	}

	teacher, err := s.loadUser(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if teacher.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers can create chat groups")
	}

	group := &models.ChatGroup{
		Name:      req.Name,
		SubjectID: req.SubjectID,
		TeacherID: teacher.ID,
		Semester:  req.Semester,
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create chat group")
	}

	group.Teacher = *teacher
	return group, nil
}

// ListMessages returns a group's messages in ascending creation order.
func (s *ChatService) ListMessages(ctx context.Context, userID, groupID string) ([]models.Message, error) {
	if _, err := s.GetGroup(ctx, userID, groupID); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// SendMessage posts a message to a group the user participates in.
func (s *ChatService) SendMessage(ctx context.Context, userID, groupID string, req SendMessageRequest) (*models.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message content must not be empty")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "chat group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load chat group")
	}
	if !canAccessGroup(user, group) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a participant of this chat group")
	}

	message := &models.Message{
		Content:     req.Content,
		SenderID:    user.ID,
		ChatGroupID: group.ID,
	}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create message")
	}

	message.Sender = *user
	return message, nil
}

func (s *ChatService) loadUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func canAccessGroup(user *models.User, group *models.ChatGroup) bool {
	switch user.Role {
	case models.RoleAdmin, models.RoleDepartmentAdmin:
		return true
	case models.RoleTeacher:
		return group.TeacherID == user.ID
	case models.RoleStudent:
		for _, subjectID := range user.EnrolledSubjects {
			if subjectID == group.SubjectID {
				return true
			}
		}
	}
	return false
}
