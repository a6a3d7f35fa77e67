package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/portal-api/internal/service"
	"github.com/campuslink/portal-api/pkg/response"
)

// ExportHandler wires HTTP endpoints to the export service.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// GenerateTimetable godoc
// @Summary Export timetable
// @Description Render the lectures matching the filters to CSV or PDF and return a signed download URL
// @Tags Export
// @Produce json
// @Param department query string false "Filter by department"
// @Param semester query string false "Filter by semester"
// @Param date query string false "Filter by ISO date"
// @Param format query string true "csv or pdf"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /export/timetable [get]
func (h *ExportHandler) GenerateTimetable(c *gin.Context) {
	filter, err := lectureFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.GenerateTimetable(c.Request.Context(), filter, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Download godoc
// @Summary Download export
// @Description Stream a rendered export referenced by a signed token
// @Tags Export
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.service.OpenByToken(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
