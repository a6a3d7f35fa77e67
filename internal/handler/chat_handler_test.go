package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslink/portal-api/internal/middleware"
	"github.com/campuslink/portal-api/internal/models"
	"github.com/campuslink/portal-api/internal/service"
)

type chatRepoStub struct {
	teacherGroups []models.ChatGroup
	studentGroups []models.ChatGroup
	group         *models.ChatGroup
	createdMsg    *models.Message
}

func (s *chatRepoStub) ListGroupsByTeacher(ctx context.Context, teacherID string) ([]models.ChatGroup, error) {
	return s.teacherGroups, nil
}

func (s *chatRepoStub) ListGroupsByStudent(ctx context.Context, studentID string) ([]models.ChatGroup, error) {
	return s.studentGroups, nil
}

func (s *chatRepoStub) GetGroupByID(ctx context.Context, id string) (*models.ChatGroup, error) {
	return s.group, nil
}

func (s *chatRepoStub) CreateGroup(ctx context.Context, group *models.ChatGroup) error {
	group.ID = "grp-new"
	return nil
}

func (s *chatRepoStub) ListMessages(ctx context.Context, chatGroupID string) ([]models.Message, error) {
	return nil, nil
}

func (s *chatRepoStub) CreateMessage(ctx context.Context, message *models.Message) error {
	message.ID = "msg-new"
	s.createdMsg = message
	return nil
}

type chatUsersStub struct {
	user *models.User
}

func (s *chatUsersStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.user, nil
}

func newChatHandler(repo *chatRepoStub, user *models.User) *ChatHandler {
	svc := service.NewChatService(repo, &chatUsersStub{user: user}, validator.New(), zap.NewNop())
	return NewChatHandler(svc)
}

func TestChatHandlerListGroupsRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newChatHandler(&chatRepoStub{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/chat/groups", nil)
	c.Request = req

	handler.ListGroups(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChatHandlerListGroupsForStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	student := &models.User{ID: "stu-1", Role: models.RoleStudent}
	repo := &chatRepoStub{studentGroups: []models.ChatGroup{{ID: "grp-1", Name: "Algorithms Q&A"}}}
	handler := newChatHandler(repo, student)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/chat/groups", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent})

	handler.ListGroups(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.ChatGroup `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "grp-1", envelope.Data[0].ID)
}

func TestChatHandlerSendMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	student := &models.User{ID: "stu-1", Name: "Alice Johnson", Role: models.RoleStudent, EnrolledSubjects: pq.StringArray{"sub-1"}}
	repo := &chatRepoStub{group: &models.ChatGroup{ID: "grp-1", SubjectID: "sub-1"}}
	handler := newChatHandler(repo, student)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.SendMessageRequest{Content: "hello"})
	req, _ := http.NewRequest(http.MethodPost, "/chat/groups/grp-1/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "grp-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent})

	handler.SendMessage(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.createdMsg)
	assert.Equal(t, "grp-1", repo.createdMsg.ChatGroupID)
	assert.Equal(t, "stu-1", repo.createdMsg.SenderID)
}
