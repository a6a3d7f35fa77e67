package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuslink/portal-api/internal/models"
	appErrors "github.com/campuslink/portal-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type enrolledSubjectRepository interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Subject, error)
}

// CreateUserRequest represents payload for creating portal accounts.
type CreateUserRequest struct {
	Name                string            `json:"name" validate:"required"`
	Email               string            `json:"email" validate:"required,email"`
	Password            string            `json:"password" validate:"required,min=6"`
	Role                models.UserRole   `json:"role" validate:"required,oneof=admin department_admin teacher student"`
	Department          models.Department `json:"department" validate:"required"`
	Avatar              *string           `json:"avatar"`
	Semester            *models.Semester  `json:"semester"`
	EnrolledSubjects    []string          `json:"enrolledSubjects"`
	TeachingSubjects    []string          `json:"teachingSubjects"`
	AssociatedSemesters []string          `json:"associatedSemesters"`
}

// UserService handles account management workflows.
type UserService struct {
	repo      userRepository
	subjects  enrolledSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, subjects enrolledSubjectRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, subjects: subjects, validator: validate, logger: logger}
}

// List returns users matching the filter.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create adds a new account after checking email uniqueness.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create user payload")
	}
	if !req.Department.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}
	if req.Semester != nil && !req.Semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown semester")
	}

	if _, err := s.repo.FindByEmail(ctx, strings.ToLower(req.Email)); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:                  uuid.NewString(),
		Name:                req.Name,
		Email:               strings.ToLower(req.Email),
		PasswordHash:        string(passwordHash),
		Role:                req.Role,
		Department:          req.Department,
		Avatar:              req.Avatar,
		Semester:            req.Semester,
		EnrolledSubjects:    pq.StringArray(req.EnrolledSubjects),
		TeachingSubjects:    pq.StringArray(req.TeachingSubjects),
		AssociatedSemesters: pq.StringArray(req.AssociatedSemesters),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// EnrolledSubjects resolves a student's enrolled subject records. Accounts
// that are not students, or students with no enrollments, get an empty
// list.
func (s *UserService) EnrolledSubjects(ctx context.Context, userID string) ([]models.Subject, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleStudent || len(user.EnrolledSubjects) == 0 {
		return []models.Subject{}, nil
	}

	subjects, err := s.subjects.ListByIDs(ctx, user.EnrolledSubjects)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrolled subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return subjects, nil
}
