package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-staff-api/internal/dto"
	"github.com/noah-isme/sma-staff-api/internal/models"
)

type qualificationValidatorMock struct {
	calls       int
	lastStaffID int64
	lastClassID *int64
	lastBatch   []dto.ProposedAssignment
	result      *models.ValidationResult
}

func (m *qualificationValidatorMock) ValidateSubjectAssignment(ctx context.Context, staffID, subjectID int64, classID *int64) (*models.ValidationResult, error) {
	m.calls++
	m.lastStaffID = staffID
	m.lastClassID = classID
	return m.result, nil
}

func (m *qualificationValidatorMock) ValidateClassTeacherAssignment(ctx context.Context, staffID, classID int64) (*models.ValidationResult, error) {
	m.calls++
	m.lastStaffID = staffID
	m.lastClassID = &classID
	return m.result, nil
}

func (m *qualificationValidatorMock) ValidateMultipleAssignments(ctx context.Context, staffID int64, proposed []dto.ProposedAssignment) (*models.ValidationResult, error) {
	m.calls++
	m.lastStaffID = staffID
	m.lastBatch = proposed
	return m.result, nil
}

func TestQualificationHandlerValidateSubject(t *testing.T) {
	result := models.NewValidationResult()
	result.AddWarning(models.ValidationIssue{Code: models.IssueMissingLicense, Message: "staff member has no teaching license on record"})
	mockValidator := &qualificationValidatorMock{result: result}
	handler := NewQualificationHandler(mockValidator, nil)

	c, w := newTestContext(http.MethodPost, "/staff/7/validate/subject", []byte(`{"subjectId":3,"classId":2}`))
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	handler.ValidateSubject(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), mockValidator.lastStaffID)
	require.NotNil(t, mockValidator.lastClassID)
	assert.Equal(t, int64(2), *mockValidator.lastClassID)
	assert.Contains(t, w.Body.String(), string(models.IssueMissingLicense))
}

func TestQualificationHandlerRejectsInvalidPayload(t *testing.T) {
	mockValidator := &qualificationValidatorMock{result: models.NewValidationResult()}
	handler := NewQualificationHandler(mockValidator, nil)

	c, w := newTestContext(http.MethodPost, "/staff/7/validate/subject", []byte(`{"classId":2}`))
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	handler.ValidateSubject(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodPost, "/staff/7/validate/batch", []byte(`{"assignments":[]}`))
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	handler.ValidateBatch(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodPost, "/staff/abc/validate/class-teacher", []byte(`{"classId":2}`))
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	handler.ValidateClassTeacher(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Zero(t, mockValidator.calls)
}

func TestQualificationHandlerValidateBatch(t *testing.T) {
	mockValidator := &qualificationValidatorMock{result: models.NewValidationResult()}
	handler := NewQualificationHandler(mockValidator, nil)

	c, w := newTestContext(http.MethodPost, "/staff/4/validate/batch", []byte(`{"assignments":[{"subjectId":1},{"subjectId":2,"classId":3}]}`))
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	handler.ValidateBatch(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mockValidator.lastBatch, 2)
	assert.Nil(t, mockValidator.lastBatch[0].ClassID)
	require.NotNil(t, mockValidator.lastBatch[1].ClassID)
	assert.Equal(t, int64(3), *mockValidator.lastBatch[1].ClassID)
}
