package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslink/portal-api/internal/models"
	appErrors "github.com/campuslink/portal-api/pkg/errors"
)

type mockChatRepo struct {
	teacherGroups []models.ChatGroup
	studentGroups []models.ChatGroup
	group         *models.ChatGroup
	groupErr      error
	messages      []models.Message
	createdGroup  *models.ChatGroup
	createdMsg    *models.Message
}

func (m *mockChatRepo) ListGroupsByTeacher(ctx context.Context, teacherID string) ([]models.ChatGroup, error) {
	return m.teacherGroups, nil
}

func (m *mockChatRepo) ListGroupsByStudent(ctx context.Context, studentID string) ([]models.ChatGroup, error) {
	return m.studentGroups, nil
}

func (m *mockChatRepo) GetGroupByID(ctx context.Context, id string) (*models.ChatGroup, error) {
	if m.groupErr != nil {
		return nil, m.groupErr
	}
	return m.group, nil
}

func (m *mockChatRepo) CreateGroup(ctx context.Context, group *models.ChatGroup) error {
	group.ID = "grp-new"
	m.createdGroup = group
	return nil
}

func (m *mockChatRepo) ListMessages(ctx context.Context, chatGroupID string) ([]models.Message, error) {
	return m.messages, nil
}

func (m *mockChatRepo) CreateMessage(ctx context.Context, message *models.Message) error {
	message.ID = "msg-new"
	m.createdMsg = message
	return nil
}

type mockChatUsers struct {
	user *models.User
	err  error
}

func (m *mockChatUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func chatTestService(repo *mockChatRepo, user *models.User) *ChatService {
	return NewChatService(repo, &mockChatUsers{user: user}, validator.New(), zap.NewNop())
}

func TestChatServiceListGroupsByRole(t *testing.T) {
	repo := &mockChatRepo{
		teacherGroups: []models.ChatGroup{{ID: "grp-t"}},
		studentGroups: []models.ChatGroup{{ID: "grp-s"}},
	}

	teacher := &models.User{ID: "tea-1", Role: models.RoleTeacher}
	groups, err := chatTestService(repo, teacher).ListGroups(context.Background(), "tea-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "grp-t", groups[0].ID)

	student := &models.User{ID: "stu-1", Role: models.RoleStudent}
	groups, err = chatTestService(repo, student).ListGroups(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "grp-s", groups[0].ID)

	admin := &models.User{ID: "adm-1", Role: models.RoleAdmin}
	groups, err = chatTestService(repo, admin).ListGroups(context.Background(), "adm-1")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestChatServiceGetGroupEnforcesParticipation(t *testing.T) {
	group := &models.ChatGroup{ID: "grp-1", SubjectID: "sub-1", TeacherID: "tea-1"}
	repo := &mockChatRepo{group: group}

	outsider := &models.User{ID: "stu-2", Role: models.RoleStudent, EnrolledSubjects: pq.StringArray{"sub-9"}}
	_, err := chatTestService(repo, outsider).GetGroup(context.Background(), "stu-2", "grp-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	member := &models.User{ID: "stu-1", Role: models.RoleStudent, EnrolledSubjects: pq.StringArray{"sub-1"}}
	got, err := chatTestService(repo, member).GetGroup(context.Background(), "stu-1", "grp-1")
	require.NoError(t, err)
	assert.Equal(t, "grp-1", got.ID)

	otherTeacher := &models.User{ID: "tea-2", Role: models.RoleTeacher}
	_, err = chatTestService(repo, otherTeacher).GetGroup(context.Background(), "tea-2", "grp-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestChatServiceGetGroupNotFound(t *testing.T) {
	repo := &mockChatRepo{groupErr: sql.ErrNoRows}
	user := &models.User{ID: "stu-1", Role: models.RoleStudent}

	_, err := chatTestService(repo, user).GetGroup(context.Background(), "stu-1", "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestChatServiceCreateGroupTeacherOnly(t *testing.T) {
	repo := &mockChatRepo{}
	student := &models.User{ID: "stu-1", Role: models.RoleStudent}

	_, err := chatTestService(repo, student).CreateGroup(context.Background(), "stu-1", CreateChatGroupRequest{
		Name:      "Algorithms Q&A",
		SubjectID: "sub-1",
		Semester:  models.SemesterFall2023,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	teacher := &models.User{ID: "tea-1", Role: models.RoleTeacher, Name: "Dr. Smith"}
	group, err := chatTestService(repo, teacher).CreateGroup(context.Background(), "tea-1", CreateChatGroupRequest{
		Name:      "Algorithms Q&A",
		SubjectID: "sub-1",
		Semester:  models.SemesterFall2023,
	})
	require.NoError(t, err)
	assert.Equal(t, "tea-1", group.TeacherID)
	assert.Equal(t, "Dr. Smith", group.Teacher.Name)
}

func TestChatServiceSendMessage(t *testing.T) {
	group := &models.ChatGroup{ID: "grp-1", SubjectID: "sub-1", TeacherID: "tea-1"}
	repo := &mockChatRepo{group: group}
	student := &models.User{ID: "stu-1", Name: "Alice Johnson", Role: models.RoleStudent, EnrolledSubjects: pq.StringArray{"sub-1"}}

	message, err := chatTestService(repo, student).SendMessage(context.Background(), "stu-1", "grp-1", SendMessageRequest{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "msg-new", message.ID)
	assert.Equal(t, "stu-1", message.SenderID)
	assert.Equal(t, "Alice Johnson", message.Sender.Name)
	assert.Equal(t, "grp-1", message.ChatGroupID)
}

func TestChatServiceSendMessageRejectsBlankContent(t *testing.T) {
	repo := &mockChatRepo{group: &models.ChatGroup{ID: "grp-1", SubjectID: "sub-1"}}
	student := &models.User{ID: "stu-1", Role: models.RoleStudent, EnrolledSubjects: pq.StringArray{"sub-1"}}

	_, err := chatTestService(repo, student).SendMessage(context.Background(), "stu-1", "grp-1", SendMessageRequest{Content: "   "})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.createdMsg)
}
