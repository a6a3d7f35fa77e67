package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/portal-api/internal/models"
)

func announcementRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "content", "created_at", "author_id", "department", "important", "semester",
		"author.id", "author.name", "author.email", "author.role", "author.department", "author.avatar", "author.semester",
	})
}

func TestAnnouncementRepositoryListKeepsCampusWide(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	now := time.Now()
	rows := announcementRows().
		AddRow("ann-1", "Lab closure", "CS lab closed Friday", now, "adm-1",
			string(models.DeptComputerScience), false, nil,
			"adm-1", "Admin", "admin@university.edu", string(models.RoleAdmin), string(models.DeptComputerScience), nil, nil).
		AddRow("ann-2", "Registration opens", "Registration opens Monday", now, "adm-1",
			nil, true, nil,
			"adm-1", "Admin", "admin@university.edu", string(models.RoleAdmin), string(models.DeptComputerScience), nil, nil)
	mock.ExpectQuery(`FROM announcements a JOIN users u ON u.id = a.author_id WHERE \(a.department = \$1 OR a.department IS NULL\)`).
		WithArgs(models.DeptComputerScience).
		WillReturnRows(rows)

	dept := models.DeptComputerScience
	announcements, err := repo.List(context.Background(), models.AnnouncementFilter{Department: &dept})
	require.NoError(t, err)
	require.Len(t, announcements, 2)
	require.NotNil(t, announcements[0].Department)
	assert.Equal(t, models.DeptComputerScience, *announcements[0].Department)
	assert.Nil(t, announcements[1].Department)
	assert.Equal(t, "Admin", announcements[0].Author.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryListUnfiltered(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	rows := announcementRows().
		AddRow("ann-1", "Holiday notice", "Campus closed", time.Now(), "adm-1",
			nil, false, nil,
			"adm-1", "Admin", "admin@university.edu", string(models.RoleAdmin), string(models.DeptComputerScience), nil, nil)
	mock.ExpectQuery(`FROM announcements a JOIN users u ON u.id = a.author_id ORDER BY a.created_at ASC`).
		WillReturnRows(rows)

	announcements, err := repo.List(context.Background(), models.AnnouncementFilter{})
	require.NoError(t, err)
	assert.Len(t, announcements, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectExec("INSERT INTO announcements").WillReturnResult(sqlmock.NewResult(1, 1))

	dept := models.DeptPhysics
	announcement := &models.Announcement{
		Title:      "Colloquium rescheduled",
		Content:    "Moved to 3pm",
		AuthorID:   "adm-1",
		Department: &dept,
		Important:  true,
	}
	err := repo.Create(context.Background(), announcement)
	require.NoError(t, err)
	assert.NotEmpty(t, announcement.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
