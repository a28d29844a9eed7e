package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-staff-api/internal/dto"
	"github.com/noah-isme/sma-staff-api/internal/models"
	"github.com/noah-isme/sma-staff-api/pkg/response"
)

type qualificationValidator interface {
	ValidateSubjectAssignment(ctx context.Context, staffID, subjectID int64, classID *int64) (*models.ValidationResult, error)
	ValidateClassTeacherAssignment(ctx context.Context, staffID, classID int64) (*models.ValidationResult, error)
	ValidateMultipleAssignments(ctx context.Context, staffID int64, proposed []dto.ProposedAssignment) (*models.ValidationResult, error)
}

// QualificationHandler exposes dry-run qualification checks.
type QualificationHandler struct {
	validator qualificationValidator
	validate  *validator.Validate
}

// NewQualificationHandler builds a new handler.
func NewQualificationHandler(v qualificationValidator, validate *validator.Validate) *QualificationHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &QualificationHandler{validator: v, validate: validate}
}

// ValidateSubject godoc
// @Summary Check a prospective subject assignment
// @Tags Qualification
// @Accept json
// @Produce json
// @Param id path int true "Staff ID"
// @Param payload body dto.ValidateSubjectRequest true "Subject and optional class"
// @Success 200 {object} response.Envelope
// @Router /staff/{id}/validate/subject [post]
func (h *QualificationHandler) ValidateSubject(c *gin.Context) {
	staffID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ValidateSubjectRequest
	if err := h.bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.validator.ValidateSubjectAssignment(c.Request.Context(), staffID, req.SubjectID, req.ClassID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ValidateClassTeacher godoc
// @Summary Check a prospective class teacher assignment
// @Tags Qualification
// @Accept json
// @Produce json
// @Param id path int true "Staff ID"
// @Param payload body dto.ValidateClassTeacherRequest true "Class"
// @Success 200 {object} response.Envelope
// @Router /staff/{id}/validate/class-teacher [post]
func (h *QualificationHandler) ValidateClassTeacher(c *gin.Context) {
	staffID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ValidateClassTeacherRequest
	if err := h.bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.validator.ValidateClassTeacherAssignment(c.Request.Context(), staffID, req.ClassID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ValidateBatch godoc
// @Summary Check several prospective assignments together
// @Tags Qualification
// @Accept json
// @Produce json
// @Param id path int true "Staff ID"
// @Param payload body dto.ValidateBatchRequest true "Proposed assignments"
// @Success 200 {object} response.Envelope
// @Router /staff/{id}/validate/batch [post]
func (h *QualificationHandler) ValidateBatch(c *gin.Context) {
	staffID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ValidateBatchRequest
	if err := h.bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.validator.ValidateMultipleAssignments(c.Request.Context(), staffID, req.Assignments)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func (h *QualificationHandler) bind(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return bindError(err, "validation")
	}
	if err := h.validate.Struct(dest); err != nil {
		return bindError(err, "validation")
	}
	return nil
}
