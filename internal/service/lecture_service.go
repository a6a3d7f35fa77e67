package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/campuslink/portal-api/internal/models"
	appErrors "github.com/campuslink/portal-api/pkg/errors"
)

type lectureRepository interface {
	List(ctx context.Context, filter models.LectureFilter) ([]models.Lecture, error)
	GetByID(ctx context.Context, id string) (*models.Lecture, error)
	Create(ctx context.Context, lecture *models.Lecture) error
}

// CreateLectureRequest describes the create payload. Times are zero-padded
// HH:MM so string comparison orders them chronologically.
type CreateLectureRequest struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description"`
	Date        string            `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string            `json:"startTime" validate:"required,datetime=15:04"`
	EndTime     string            `json:"endTime" validate:"required,datetime=15:04"`
	Location    string            `json:"location" validate:"required"`
	Department  models.Department `json:"department" validate:"required"`
	Subject     string            `json:"subject" validate:"required"`
	ProfessorID string            `json:"professorId" validate:"required"`
	Materials   []string          `json:"materials"`
	Semester    models.Semester   `json:"semester" validate:"required"`
}

// LectureService handles lecture schedule workflows.
type LectureService struct {
	repo      lectureRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLectureService constructs the service.
func NewLectureService(repo lectureRepository, validate *validator.Validate, logger *zap.Logger) *LectureService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LectureService{repo: repo, validator: validate, logger: logger}
}

// List returns lectures matching the filter, ordered by date and start
// time.
func (s *LectureService) List(ctx context.Context, filter models.LectureFilter) ([]models.Lecture, error) {
	lectures, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lectures")
	}
	if lectures == nil {
		lectures = []models.Lecture{}
	}
	return lectures, nil
}

// Get returns a lecture by ID.
func (s *LectureService) Get(ctx context.Context, id string) (*models.Lecture, error) {
	lecture, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecture")
	}
	return lecture, nil
}

// Create schedules a new lecture.
func (s *LectureService) Create(ctx context.Context, req CreateLectureRequest) (*models.Lecture, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create lecture payload")
	}
	if !req.Department.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}
	if !req.Semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown semester")
	}
	if req.EndTime <= req.StartTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}

	lecture := &models.Lecture{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Department:  req.Department,
		Subject:     req.Subject,
		ProfessorID: req.ProfessorID,
		Materials:   pq.StringArray(req.Materials),
		Semester:    req.Semester,
	}
	if err := s.repo.Create(ctx, lecture); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lecture")
	}
	return s.Get(ctx, lecture.ID)
}
