package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-staff-api/internal/dto"
	"github.com/noah-isme/sma-staff-api/internal/models"
	"github.com/noah-isme/sma-staff-api/internal/service"
	appErrors "github.com/noah-isme/sma-staff-api/pkg/errors"
	"github.com/noah-isme/sma-staff-api/pkg/response"
)

type staffAssignmentService interface {
	Assign(ctx context.Context, req dto.CreateAssignmentRequest, opts service.AssignOptions, actor *models.JWTClaims) (*dto.AssignmentResult, error)
	Get(ctx context.Context, id int64) (*models.StaffAssignmentDetail, error)
	GetAssignments(ctx context.Context, staffID int64, filter models.AssignmentFilter) ([]models.StaffAssignmentDetail, error)
	GetAssignmentHistory(ctx context.Context, filter models.AssignmentHistoryFilter) ([]models.StaffAssignmentDetail, error)
	EndAssignment(ctx context.Context, id int64, req dto.EndAssignmentRequest, actor *models.JWTClaims) (bool, error)
	DeleteAssignment(ctx context.Context, id int64, actor *models.JWTClaims) error
}

// StaffAssignmentHandler exposes class and subject teacher assignment endpoints.
type StaffAssignmentHandler struct {
	service staffAssignmentService
}

// NewStaffAssignmentHandler builds a new handler.
func NewStaffAssignmentHandler(service staffAssignmentService) *StaffAssignmentHandler {
	return &StaffAssignmentHandler{service: service}
}

// Assign godoc
// @Summary Assign a staff member
// @Description Creates a class or subject teacher assignment, superseding incumbents atomically.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /assignments [post]
func (h *StaffAssignmentHandler) Assign(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "assignment"))
		return
	}
	result, err := h.service.Assign(c.Request.Context(), req, service.AssignOptions{SkipValidation: req.SkipValidation}, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Get godoc
// @Summary Get assignment
// @Tags Assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *StaffAssignmentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	assignment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// ListByStaff godoc
// @Summary List assignments of a staff member
// @Tags Assignments
// @Produce json
// @Param id path int true "Staff ID"
// @Param academicYearId query int false "Academic year"
// @Param includeInactive query bool false "Include ended assignments"
// @Param assignmentType query string false "class_teacher or subject_teacher"
// @Success 200 {object} response.Envelope
// @Router /staff/{id}/assignments [get]
func (h *StaffAssignmentHandler) ListByStaff(c *gin.Context) {
	staffID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	yearID, err := optionalQueryID(c, "academicYearId")
	if err != nil {
		response.Error(c, err)
		return
	}
	assignmentType, err := assignmentTypeQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	includeInactive, err := optionalQueryBool(c, "includeInactive")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.AssignmentFilter{
		AcademicYearID:  yearID,
		IncludeInactive: includeInactive,
		AssignmentType:  assignmentType,
	}
	items, err := h.service.GetAssignments(c.Request.Context(), staffID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// History godoc
// @Summary Assignment history
// @Description Active and ended assignments, most recent start date first.
// @Tags Assignments
// @Produce json
// @Param classId query int false "Class"
// @Param subjectId query int false "Subject"
// @Param academicYearId query int false "Academic year"
// @Param assignmentType query string false "class_teacher or subject_teacher"
// @Success 200 {object} response.Envelope
// @Router /assignments/history [get]
func (h *StaffAssignmentHandler) History(c *gin.Context) {
	var (
		filter models.AssignmentHistoryFilter
		err    error
	)
	if filter.ClassID, err = optionalQueryID(c, "classId"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.SubjectID, err = optionalQueryID(c, "subjectId"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.AcademicYearID, err = optionalQueryID(c, "academicYearId"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.AssignmentType, err = assignmentTypeQuery(c); err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.GetAssignmentHistory(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// End godoc
// @Summary End an assignment
// @Description Reports ended=false when the assignment was already inactive.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param payload body dto.EndAssignmentRequest false "Optional end date"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/end [post]
func (h *StaffAssignmentHandler) End(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.EndAssignmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bindError(err, "end assignment"))
			return
		}
	}
	ended, err := h.service.EndAssignment(c.Request.Context(), id, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.EndAssignmentResult{Ended: ended}, nil)
}

// Delete godoc
// @Summary Delete an assignment permanently
// @Tags Assignments
// @Param id path int true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (h *StaffAssignmentHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeleteAssignment(c.Request.Context(), id, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func assignmentTypeQuery(c *gin.Context) (models.AssignmentType, error) {
	raw := models.AssignmentType(strings.TrimSpace(c.Query("assignmentType")))
	if raw == "" || raw.Valid() {
		return raw, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "assignmentType must be class_teacher or subject_teacher")
}
