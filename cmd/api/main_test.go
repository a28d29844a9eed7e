package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-staff-api/internal/handler"
	"github.com/noah-isme/sma-staff-api/internal/models"
	"github.com/noah-isme/sma-staff-api/internal/service"
)

func TestRegisterRoutesEnforcesRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(service.TokenConfig{Secret: "route-secret"})
	r := gin.New()
	registerRoutes(r.Group("/api/v1"), handlers{metrics: handler.NewMetricsHandler(service.NewMetricsService())}, tokens)

	teacherToken, _, err := tokens.IssueToken("teacher-1", models.RoleTeacher, time.Hour)
	require.NoError(t, err)
	adminToken, _, err := tokens.IssueToken("admin-1", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{name: "missing token", method: http.MethodGet, path: "/api/v1/metrics/summary", status: http.StatusUnauthorized},
		{name: "teacher cannot assign", method: http.MethodPost, path: "/api/v1/assignments", token: teacherToken, status: http.StatusForbidden},
		{name: "teacher cannot delete staff", method: http.MethodDelete, path: "/api/v1/staff/1", token: teacherToken, status: http.StatusForbidden},
		{name: "teacher cannot read summary", method: http.MethodGet, path: "/api/v1/metrics/summary", token: teacherToken, status: http.StatusForbidden},
		{name: "admin reads summary", method: http.MethodGet, path: "/api/v1/metrics/summary", token: adminToken, status: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
