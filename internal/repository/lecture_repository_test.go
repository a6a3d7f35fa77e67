package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/portal-api/internal/models"
)

func lectureRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "date", "start_time", "end_time", "location",
		"department", "subject", "professor_id", "materials", "semester",
		"professor.id", "professor.name", "professor.email", "professor.role", "professor.department", "professor.avatar", "professor.semester",
	})
}

func TestLectureRepositoryListFiltersByDepartmentAndDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLectureRepository(db)

	rows := lectureRows().AddRow(
		"lec-1", "Graph Algorithms", "BFS and DFS", "2023-11-16", "10:00", "11:30", "Hall B",
		string(models.DeptComputerScience), "Algorithms", "tea-1", "{slides.pdf}", string(models.SemesterFall2023),
		"tea-1", "Dr. Smith", "smith@university.edu", string(models.RoleTeacher), string(models.DeptComputerScience), nil, nil,
	)
	mock.ExpectQuery(`WHERE 1=1 AND l.department = \$1 AND l.date = \$2 ORDER BY l.date ASC, l.start_time ASC`).
		WithArgs(models.DeptComputerScience, "2023-11-16").
		WillReturnRows(rows)

	dept := models.DeptComputerScience
	lectures, err := repo.List(context.Background(), models.LectureFilter{Department: &dept, Date: "2023-11-16"})
	require.NoError(t, err)
	require.Len(t, lectures, 1)
	assert.Equal(t, "10:00", lectures[0].StartTime)
	assert.Equal(t, []string{"slides.pdf"}, []string(lectures[0].Materials))
	assert.Equal(t, "Dr. Smith", lectures[0].Professor.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLectureRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLectureRepository(db)

	mock.ExpectExec("INSERT INTO lectures").WillReturnResult(sqlmock.NewResult(1, 1))

	lecture := &models.Lecture{
		Title:       "Linear Algebra",
		Date:        "2023-11-17",
		StartTime:   "09:00",
		EndTime:     "10:30",
		Location:    "Room 204",
		Department:  models.DeptMathematics,
		Subject:     "Linear Algebra",
		ProfessorID: "tea-2",
		Semester:    models.SemesterFall2023,
	}
	err := repo.Create(context.Background(), lecture)
	require.NoError(t, err)
	assert.NotEmpty(t, lecture.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
