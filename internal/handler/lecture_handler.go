package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/portal-api/internal/models"
	"github.com/campuslink/portal-api/internal/service"
	appErrors "github.com/campuslink/portal-api/pkg/errors"
	"github.com/campuslink/portal-api/pkg/response"
)

// LectureHandler wires HTTP endpoints to the lecture service.
type LectureHandler struct {
	service *service.LectureService
}

// NewLectureHandler creates a new handler.
func NewLectureHandler(svc *service.LectureService) *LectureHandler {
	return &LectureHandler{service: svc}
}

// List godoc
// @Summary List lectures
// @Description List lectures filtered by department, semester and date, ordered by date and start time
// @Tags Lectures
// @Produce json
// @Param department query string false "Filter by department"
// @Param semester query string false "Filter by semester"
// @Param date query string false "Filter by ISO date"
// @Success 200 {object} response.Envelope
// @Router /lectures [get]
func (h *LectureHandler) List(c *gin.Context) {
	filter, err := lectureFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	lectures, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lectures)
}

// Get godoc
// @Summary Get lecture
// @Tags Lectures
// @Produce json
// @Param id path string true "Lecture ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lectures/{id} [get]
func (h *LectureHandler) Get(c *gin.Context) {
	lecture, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecture)
}

// Create godoc
// @Summary Schedule lecture
// @Tags Lectures
// @Accept json
// @Produce json
// @Param payload body service.CreateLectureRequest true "Create payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /lectures [post]
func (h *LectureHandler) Create(c *gin.Context) {
	var req service.CreateLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid create lecture payload"))
		return
	}

	lecture, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lecture)
}

func lectureFilterFromQuery(c *gin.Context) (models.LectureFilter, error) {
	var filter models.LectureFilter
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
	filter.Date = c.Query("date")
	return filter, nil
}
