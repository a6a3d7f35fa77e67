package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslink/portal-api/internal/models"
	appErrors "github.com/campuslink/portal-api/pkg/errors"
	"github.com/campuslink/portal-api/pkg/storage"
)

type mockLectureRepo struct {
	lectures []models.Lecture
}

func (m *mockLectureRepo) List(ctx context.Context, filter models.LectureFilter) ([]models.Lecture, error) {
	return m.lectures, nil
}

func (m *mockLectureRepo) GetByID(ctx context.Context, id string) (*models.Lecture, error) {
	return nil, nil
}

func (m *mockLectureRepo) Create(ctx context.Context, lecture *models.Lecture) error {
	return nil
}

func newExportService(t *testing.T) (*ExportService, *mockLectureRepo) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", 0)
	repo := &mockLectureRepo{lectures: []models.Lecture{{
		Title:     "Graph Algorithms",
		Date:      "2023-11-16",
		StartTime: "10:00",
		EndTime:   "11:30",
		Subject:   "Algorithms",
		Location:  "Hall B",
		Professor: models.User{Name: "Dr. Smith"},
	}}}
	svc := NewExportService(repo, files, signer, ExportConfig{APIPrefix: "/api/v1"}, zap.NewNop(), nil, nil)
	return svc, repo
}

func TestExportServiceGenerateTimetableCSV(t *testing.T) {
	svc, _ := newExportService(t)

	dept := models.DeptComputerScience
	result, err := svc.GenerateTimetable(context.Background(), models.LectureFilter{Department: &dept, Date: "2023-11-16"}, "csv")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, result.Format)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/export/"))

	file, err := svc.OpenByToken(result.Token)
	require.NoError(t, err)
	defer file.Close()

	payload, err := io.ReadAll(file)
	require.NoError(t, err)
	content := string(payload)
	assert.Contains(t, content, "Date,Start,End,Title,Subject,Location,Professor")
	assert.Contains(t, content, "Graph Algorithms")
	assert.Contains(t, content, "Dr. Smith")
}

func TestExportServiceGenerateTimetablePDF(t *testing.T) {
	svc, _ := newExportService(t)

	result, err := svc.GenerateTimetable(context.Background(), models.LectureFilter{}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, result.Format)

	file, err := svc.OpenByToken(result.Token)
	require.NoError(t, err)
	defer file.Close()

	header := make([]byte, 4)
	_, err = io.ReadFull(file, header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(header))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _ := newExportService(t)

	_, err := svc.GenerateTimetable(context.Background(), models.LectureFilter{}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceRejectsTamperedToken(t *testing.T) {
	svc, _ := newExportService(t)

	result, err := svc.GenerateTimetable(context.Background(), models.LectureFilter{}, "csv")
	require.NoError(t, err)

	_, err = svc.OpenByToken(result.Token + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
