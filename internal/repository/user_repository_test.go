package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/portal-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "role", "department", "avatar", "semester",
		"enrolled_subjects", "teaching_subjects", "associated_semesters", "created_at",
	})
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := userRows().AddRow(
		"stu-1", "Alice Johnson", "alice@university.edu", "hash", string(models.RoleStudent),
		string(models.DeptComputerScience), nil, string(models.SemesterFall2023),
		"{sub-1,sub-2}", "{}", "{}", time.Now(),
	)
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("alice@university.edu").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "alice@university.edu")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", user.ID)
	assert.Equal(t, models.RoleStudent, user.Role)
	require.NotNil(t, user.Semester)
	assert.Equal(t, models.SemesterFall2023, *user.Semester)
	assert.Equal(t, []string{"sub-1", "sub-2"}, []string(user.EnrolledSubjects))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListFiltersByRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := userRows().AddRow(
		"tea-1", "Dr. Smith", "smith@university.edu", "hash", string(models.RoleTeacher),
		string(models.DeptComputerScience), nil, nil,
		"{}", "{sub-1}", `{"Fall 2023","Spring 2024"}`, time.Now(),
	)
	mock.ExpectQuery(`FROM users WHERE 1=1 AND role = \$1 ORDER BY name ASC`).
		WithArgs(models.RoleTeacher).
		WillReturnRows(rows)

	role := models.RoleTeacher
	users, err := repo.List(context.Background(), models.UserFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []string{"Fall 2023", "Spring 2024"}, []string(users[0].AssociatedSemesters))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{
		Name:       "Bob Williams",
		Email:      "bob@university.edu",
		Role:       models.RoleStudent,
		Department: models.DeptMathematics,
	}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
