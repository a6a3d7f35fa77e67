package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/portal-api/internal/models"
	"github.com/campuslink/portal-api/internal/service"
	appErrors "github.com/campuslink/portal-api/pkg/errors"
	"github.com/campuslink/portal-api/pkg/response"
)

// AssignmentHandler wires HTTP endpoints to the assignment service.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler creates a new handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// List godoc
// @Summary List assignments
// @Description List assignments for a department, optionally narrowed to one semester, ordered by due date
// @Tags Assignments
// @Produce json
// @Param department query string false "Filter by department"
// @Param semester query string false "Filter by semester"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	filter, err := assignmentFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	assignments, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments)
}

// Get godoc
// @Summary Get assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment)
}

// Create godoc
// @Summary Publish assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssignmentRequest true "Create payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid create assignment payload"))
		return
	}

	if claims := claimsFromContext(c); claims != nil {
		req.AuthorID = claims.UserID
	}

	assignment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

func assignmentFilterFromQuery(c *gin.Context) (models.AssignmentFilter, error) {
	var filter models.AssignmentFilter
	if raw := c.Query("department"); raw != "" {
		dept := models.Department(raw)
		if !dept.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown department")
		}
		filter.Department = &dept
	}
	if raw := c.Query("semester"); raw != "" {
		sem := models.Semester(raw)
		if !sem.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown semester")
		}
		filter.Semester = &sem
	}
	return filter, nil
}
