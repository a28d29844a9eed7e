package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-staff-api/internal/middleware"
	"github.com/noah-isme/sma-staff-api/internal/models"
	"github.com/noah-isme/sma-staff-api/internal/service"
	"github.com/noah-isme/sma-staff-api/pkg/response"
)

type workloadService interface {
	ResolveAcademicYear(ctx context.Context, requested *int64) (int64, error)
	GetWorkloadAnalytics(ctx context.Context, staffID, academicYearID int64) (*models.WorkloadSnapshot, error)
	GetWorkloadDistribution(ctx context.Context, academicYearID int64, department string) (*models.WorkloadDistribution, error)
	ExportDistribution(ctx context.Context, academicYearID int64, department, format string) (*service.ExportedFile, error)
}

// WorkloadHandler exposes workload analytics.
type WorkloadHandler struct {
	service workloadService
}

// NewWorkloadHandler builds a new handler.
func NewWorkloadHandler(service workloadService) *WorkloadHandler {
	return &WorkloadHandler{service: service}
}

// StaffWorkload godoc
// @Summary Workload of a staff member
// @Tags Workload
// @Produce json
// @Param id path int true "Staff ID"
// @Param academicYearId query int false "Academic year (defaults to current)"
// @Success 200 {object} response.Envelope
// @Router /staff/{id}/workload [get]
func (h *WorkloadHandler) StaffWorkload(c *gin.Context) {
	staffID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	yearID, err := h.academicYear(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	snapshot, err := h.service.GetWorkloadAnalytics(c.Request.Context(), staffID, yearID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil, middleware.ExtractMeta(c))
}

// Distribution godoc
// @Summary Workload distribution across teaching staff
// @Tags Workload
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param academicYearId query int false "Academic year (defaults to current)"
// @Param department query string false "Department filter"
// @Param format query string false "csv or pdf to download instead of JSON"
// @Success 200 {object} response.Envelope
// @Router /workload/distribution [get]
func (h *WorkloadHandler) Distribution(c *gin.Context) {
	yearID, err := h.academicYear(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	department := c.Query("department")
	if format := c.Query("format"); format != "" {
		file, err := h.service.ExportDistribution(c.Request.Context(), yearID, department, format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, file.ContentType, file.Filename, file.Payload)
		return
	}
	distribution, err := h.service.GetWorkloadDistribution(c.Request.Context(), yearID, department)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, distribution, nil, middleware.ExtractMeta(c))
}

func (h *WorkloadHandler) academicYear(c *gin.Context) (int64, error) {
	requested, err := optionalQueryID(c, "academicYearId")
	if err != nil {
		return 0, err
	}
	yearID, err := h.service.ResolveAcademicYear(c.Request.Context(), requested)
	if err != nil {
		return 0, err
	}
	middleware.SetMeta(c, "academic_year_id", yearID)
	return yearID, nil
}
