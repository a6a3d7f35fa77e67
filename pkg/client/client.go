// Package client is the HTTP SDK for the portal API. It decodes the common
// response envelope, surfaces server error details verbatim and maps
// transport failures to a transient error so pollers can keep retrying.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campuslink/portal-api/internal/models"
	"github.com/campuslink/portal-api/internal/service"
	appErrors "github.com/campuslink/portal-api/pkg/errors"
)

// Options tunes client behaviour.
type Options struct {
	HTTPClient *http.Client
	Logger     *zap.Logger
	Token      string
}

// Client talks to the portal API. It satisfies chatroom.Fetcher so an open
// chat room can poll through it. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

// New constructs a Client for the given base URL.
func New(baseURL string, opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    opts.HTTPClient,
		logger:  opts.Logger,
		token:   opts.Token,
	}
}

// SetToken replaces the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Login authenticates and stores the returned access token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var res models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, models.LoginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return nil, err
	}
	c.SetToken(res.AccessToken)
	return &res, nil
}

// Refresh exchanges the refresh token for a new pair and stores the new
// access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.RefreshTokenResponse, error) {
	var res models.RefreshTokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, models.RefreshTokenRequest{RefreshToken: refreshToken}, &res)
	if err != nil {
		return nil, err
	}
	c.SetToken(res.AccessToken)
	return &res, nil
}

// Announcements lists announcements, optionally scoped to a department.
func (c *Client) Announcements(ctx context.Context, department *models.Department) ([]models.Announcement, error) {
	query := url.Values{}
	if department != nil {
		query.Set("department", string(*department))
	}
	var out []models.Announcement
	if err := c.do(ctx, http.MethodGet, "/announcements", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Assignments lists a department's assignments, optionally narrowed to one
// semester.
func (c *Client) Assignments(ctx context.Context, department models.Department, semester *models.Semester) ([]models.Assignment, error) {
	query := url.Values{}
	query.Set("department", string(department))
	if semester != nil {
		query.Set("semester", string(*semester))
	}
	var out []models.Assignment
	if err := c.do(ctx, http.MethodGet, "/assignments", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Lectures lists lectures for the filter.
func (c *Client) Lectures(ctx context.Context, filter models.LectureFilter) ([]models.Lecture, error) {
	query := url.Values{}
	if filter.Department != nil {
		query.Set("department", string(*filter.Department))
	}
	if filter.Semester != nil {
		query.Set("semester", string(*filter.Semester))
	}
	if filter.Date != "" {
		query.Set("date", filter.Date)
	}
	var out []models.Lecture
	if err := c.do(ctx, http.MethodGet, "/lectures", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Subjects lists catalog subjects for the filter.
func (c *Client) Subjects(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	query := url.Values{}
	if filter.Department != nil {
		query.Set("department", string(*filter.Department))
	}
	if filter.Semester != nil {
		query.Set("semester", string(*filter.Semester))
	}
	var out []models.Subject
	if err := c.do(ctx, http.MethodGet, "/subjects", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Users lists portal accounts.
func (c *Client) Users(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	query := url.Values{}
	if filter.Role != nil {
		query.Set("role", string(*filter.Role))
	}
	if filter.Department != nil {
		query.Set("department", string(*filter.Department))
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/users", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// User fetches one account.
func (c *Client) User(ctx context.Context, id string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the authenticated account.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnrolledSubjects lists a student's enrolled subject records.
func (c *Client) EnrolledSubjects(ctx context.Context, userID string) ([]models.Subject, error) {
	var out []models.Subject
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/subjects", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChatGroups lists the chat groups the authenticated user participates in.
func (c *Client) ChatGroups(ctx context.Context) ([]models.ChatGroup, error) {
	var out []models.ChatGroup
	if err := c.do(ctx, http.MethodGet, "/chat/groups", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChatGroup fetches one chat group. Part of chatroom.Fetcher.
func (c *Client) ChatGroup(ctx context.Context, id string) (*models.ChatGroup, error) {
	var out models.ChatGroup
	if err := c.do(ctx, http.MethodGet, "/chat/groups/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Messages lists a group's messages ascending. Part of chatroom.Fetcher.
func (c *Client) Messages(ctx context.Context, chatGroupID string) ([]models.Message, error) {
	var out []models.Message
	if err := c.do(ctx, http.MethodGet, "/chat/groups/"+url.PathEscape(chatGroupID)+"/messages", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage posts a message to a chat group. The sender is derived from
// the bearer token server-side. Part of chatroom.Fetcher.
func (c *Client) SendMessage(ctx context.Context, chatGroupID, senderID, content string) (*models.Message, error) {
	payload := map[string]string{"content": content}
	var out models.Message
	if err := c.do(ctx, http.MethodPost, "/chat/groups/"+url.PathEscape(chatGroupID)+"/messages", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateChatGroup opens a chat group for one of the teacher's subjects.
func (c *Client) CreateChatGroup(ctx context.Context, req service.CreateChatGroupRequest) (*models.ChatGroup, error) {
	var out models.ChatGroup
	if err := c.do(ctx, http.MethodPost, "/chat/groups", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAnnouncement publishes an announcement.
func (c *Client) CreateAnnouncement(ctx context.Context, req service.CreateAnnouncementRequest) (*models.Announcement, error) {
	var out models.Announcement
	if err := c.do(ctx, http.MethodPost, "/announcements", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAssignment publishes an assignment.
func (c *Client) CreateAssignment(ctx context.Context, req service.CreateAssignmentRequest) (*models.Assignment, error) {
	var out models.Assignment
	if err := c.do(ctx, http.MethodPost, "/assignments", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateLecture schedules a lecture.
func (c *Client) CreateLecture(ctx context.Context, req service.CreateLectureRequest) (*models.Lecture, error) {
	var out models.Lecture
	if err := c.do(ctx, http.MethodPost, "/lectures", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSubject adds a subject to the catalog.
func (c *Client) CreateSubject(ctx context.Context, req service.CreateSubjectRequest) (*models.Subject, error) {
	var out models.Subject
	if err := c.do(ctx, http.MethodPost, "/subjects", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser registers a portal account.
func (c *Client) CreateUser(ctx context.Context, req service.CreateUserRequest) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/users", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "portal unreachable")
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "portal response truncated")
	}

	var envelope struct {
		Data  json.RawMessage  `json:"data"`
		Error *appErrors.Error `json:"error"`
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &envelope); err != nil {
			if resp.StatusCode >= http.StatusInternalServerError {
				return appErrors.Clone(appErrors.ErrUnavailable, "portal returned a malformed response")
			}
			return fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if envelope.Error != nil {
			if envelope.Error.Status == 0 {
				envelope.Error.Status = resp.StatusCode
			}
			return envelope.Error
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return appErrors.Clone(appErrors.ErrUnavailable, fmt.Sprintf("portal returned status %d", resp.StatusCode))
		}
		return appErrors.New(appErrors.ErrInternal.Code, resp.StatusCode, fmt.Sprintf("portal returned status %d", resp.StatusCode))
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}
