package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-staff-api/internal/dto"
	"github.com/noah-isme/sma-staff-api/internal/models"
	"github.com/noah-isme/sma-staff-api/pkg/response"
)

type staffService interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.StaffMember, error)
	Create(ctx context.Context, req dto.CreateStaffRequest, actor *models.JWTClaims) (*models.StaffMember, error)
	BulkCreate(ctx context.Context, req dto.BulkCreateStaffRequest, actor *models.JWTClaims) (*dto.BulkCreateStaffResult, error)
	Update(ctx context.Context, id int64, req dto.UpdateStaffRequest, actor *models.JWTClaims) (*models.StaffMember, error)
	UpdateStatus(ctx context.Context, id int64, req dto.UpdateStaffStatusRequest, actor *models.JWTClaims) (*models.StaffMember, error)
	Delete(ctx context.Context, id int64, actor *models.JWTClaims) error
}

// StaffHandler exposes staff record endpoints.
type StaffHandler struct {
	service staffService
}

// NewStaffHandler builds a new handler.
func NewStaffHandler(service staffService) *StaffHandler {
	return &StaffHandler{service: service}
}

// List godoc
// @Summary List staff members
// @Tags Staff
// @Produce json
// @Param search query string false "Search by name, code or email"
// @Param category query string false "teaching, non_teaching or administrative"
// @Param status query string false "active, inactive or on_leave"
// @Param department query string false "Department"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (full_name,staff_code,created_at,updated_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	filter := models.StaffFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Category:   models.StaffCategory(c.Query("category")),
		Status:     models.StaffStatus(c.Query("status")),
		Department: strings.TrimSpace(c.Query("department")),
		SortBy:     c.Query("sort"),
		SortOrder:  c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	staff, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, pagination)
}

// Get godoc
// @Summary Get staff member
// @Tags Staff
// @Produce json
// @Param id path int true "Staff ID"
// @Success 200 {object} response.Envelope
// @Router /staff/{id} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	staff, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, nil)
}

// Create godoc
// @Summary Register staff member
// @Description Generates a staff code when staffCode is omitted.
// @Tags Staff
// @Accept json
// @Produce json
// @Param payload body dto.CreateStaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req dto.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "staff"))
		return
	}
	staff, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, staff)
}

// BulkCreate godoc
// @Summary Register many staff members
// @Description Items are processed independently; failures are reported per item.
// @Tags Staff
// @Accept json
// @Produce json
// @Param payload body dto.BulkCreateStaffRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Router /staff/bulk [post]
func (h *StaffHandler) BulkCreate(c *gin.Context) {
	var req dto.BulkCreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "bulk staff"))
		return
	}
	result, err := h.service.BulkCreate(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Update godoc
// @Summary Update staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path int true "Staff ID"
// @Param payload body dto.UpdateStaffRequest true "Staff payload"
// @Success 200 {object} response.Envelope
// @Router /staff/{id} [put]
func (h *StaffHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "staff"))
		return
	}
	staff, err := h.service.Update(c.Request.Context(), id, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, nil)
}

// UpdateStatus godoc
// @Summary Change staff status
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path int true "Staff ID"
// @Param payload body dto.UpdateStaffStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /staff/{id}/status [patch]
func (h *StaffHandler) UpdateStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateStaffStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "status"))
		return
	}
	staff, err := h.service.UpdateStatus(c.Request.Context(), id, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, nil)
}

// Delete godoc
// @Summary Soft delete staff member
// @Tags Staff
// @Param id path int true "Staff ID"
// @Success 204
// @Router /staff/{id} [delete]
func (h *StaffHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
