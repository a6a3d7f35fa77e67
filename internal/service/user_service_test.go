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

type mockUserRepo struct {
	users          []models.User
	byID           *models.User
	byEmail        *models.User
	findByEmailErr error
	findByIDErr    error
	created        *models.User
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	return m.users, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	return m.byID, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.byEmail, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.created = user
	return nil
}

type mockSubjectLookup struct {
	subjects []models.Subject
	lastIDs  []string
}

func (m *mockSubjectLookup) ListByIDs(ctx context.Context, ids []string) ([]models.Subject, error) {
	m.lastIDs = ids
	return m.subjects, nil
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{byEmail: &models.User{ID: "stu-1", Email: "alice@university.edu"}}
	svc := NewUserService(repo, &mockSubjectLookup{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name:       "Alice Johnson",
		Email:      "alice@university.edu",
		Password:   "secret1",
		Role:       models.RoleStudent,
		Department: models.DeptComputerScience,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "Email already registered", appErr.Detail)
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	repo := &mockUserRepo{findByEmailErr: sql.ErrNoRows}
	svc := NewUserService(repo, &mockSubjectLookup{}, validator.New(), zap.NewNop())

	sem := models.SemesterFall2023
	user, err := svc.Create(context.Background(), CreateUserRequest{
		Name:             "Alice Johnson",
		Email:            "Alice@University.edu",
		Password:         "secret1",
		Role:             models.RoleStudent,
		Department:       models.DeptComputerScience,
		Semester:         &sem,
		EnrolledSubjects: []string{"sub-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@university.edu", user.Email)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	require.NotNil(t, repo.created)
	assert.Equal(t, user.ID, repo.created.ID)
}

func TestUserServiceCreateRejectsUnknownRole(t *testing.T) {
	repo := &mockUserRepo{findByEmailErr: sql.ErrNoRows}
	svc := NewUserService(repo, &mockSubjectLookup{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name:       "Mallory",
		Email:      "mallory@university.edu",
		Password:   "secret1",
		Role:       models.UserRole("superuser"),
		Department: models.DeptComputerScience,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserServiceEnrolledSubjects(t *testing.T) {
	student := &models.User{
		ID:               "stu-1",
		Role:             models.RoleStudent,
		EnrolledSubjects: pq.StringArray{"sub-2", "sub-1"},
	}
	subjects := &mockSubjectLookup{subjects: []models.Subject{{ID: "sub-1", Name: "Algorithms"}, {ID: "sub-2", Name: "Databases"}}}
	svc := NewUserService(&mockUserRepo{byID: student}, subjects, validator.New(), zap.NewNop())

	got, err := svc.EnrolledSubjects(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"sub-2", "sub-1"}, subjects.lastIDs)
}

func TestUserServiceEnrolledSubjectsForTeacherIsEmpty(t *testing.T) {
	teacher := &models.User{ID: "tea-1", Role: models.RoleTeacher, TeachingSubjects: pq.StringArray{"sub-1"}}
	subjects := &mockSubjectLookup{}
	svc := NewUserService(&mockUserRepo{byID: teacher}, subjects, validator.New(), zap.NewNop())

	got, err := svc.EnrolledSubjects(context.Background(), "tea-1")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Nil(t, subjects.lastIDs)
}

func TestUserServiceGetNotFound(t *testing.T) {
	svc := NewUserService(&mockUserRepo{findByIDErr: sql.ErrNoRows}, &mockSubjectLookup{}, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}
