package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuslink/portal-api/internal/models"
	"github.com/campuslink/portal-api/internal/scope"
	appErrors "github.com/campuslink/portal-api/pkg/errors"
)

const announcementCachePattern = "announcements:*"

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error)
	GetByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
}

// CreateAnnouncementRequest describes the create payload.
type CreateAnnouncementRequest struct {
	Title      string             `json:"title" validate:"required"`
	Content    string             `json:"content" validate:"required"`
	AuthorID   string             `json:"authorId" validate:"required"`
	Department *models.Department `json:"department"`
	Important  bool               `json:"important"`
	Semester   *models.Semester   `json:"semester"`
}

// AnnouncementService handles announcement listing and publication.
type AnnouncementService struct {
	repo      announcementRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns announcements visible to the given department, or every
// announcement when department is nil. Department listings interleave
// campus-wide entries and order them department-first, important-first,
// newest-first.
func (s *AnnouncementService) List(ctx context.Context, department *models.Department) ([]models.Announcement, error) {
	key := announcementCacheKey(department)

	var cached []models.Announcement
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	announcements, err := s.repo.List(ctx, models.AnnouncementFilter{Department: department})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	if department != nil {
		announcements = scope.AnnouncementsFor(announcements, *department)
	}
	if announcements == nil {
		announcements = []models.Announcement{}
	}

	if err := s.cache.Set(ctx, key, announcements, 0); err != nil {
		s.logger.Warn("failed to cache announcements", zap.Error(err))
	}
	return announcements, nil
}

// Get returns an announcement by ID.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	announcement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	return announcement, nil
}

// Create publishes a new announcement and invalidates cached listings.
func (s *AnnouncementService) Create(ctx context.Context, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create announcement payload")
	}
	if req.Department != nil && !req.Department.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}
	if req.Semester != nil && !req.Semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown semester")
	}

	announcement := &models.Announcement{
		Title:      req.Title,
		Content:    req.Content,
		AuthorID:   req.AuthorID,
		Department: req.Department,
		Important:  req.Important,
		Semester:   req.Semester,
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}

	if err := s.cache.Invalidate(ctx, announcementCachePattern); err != nil {
		s.logger.Warn("failed to invalidate announcement cache", zap.Error(err))
	}

	return s.Get(ctx, announcement.ID)
}

func announcementCacheKey(department *models.Department) string {
	if department == nil {
		return "announcements:all"
	}
	return fmt.Sprintf("announcements:%s", *department)
}
