package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-staff-api/internal/models"
	appErrors "github.com/noah-isme/sma-staff-api/pkg/errors"
)

type tokenValidatorStub struct {
	claims *models.JWTClaims
	err    error
	last   string
}

func (s *tokenValidatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	s.last = token
	return s.claims, s.err
}

func newProtectedRouter(tokens tokenValidator, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/staff", JWT(tokens), RequireRoles(roles...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func serve(router *gin.Engine, header string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestJWTRequiresBearerToken(t *testing.T) {
	stub := &tokenValidatorStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}}
	router := newProtectedRouter(stub, models.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, serve(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Basic abc").Code)

	recorder := serve(router, "Bearer good-token")
	require.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "good-token", stub.last)
}

func TestJWTPropagatesValidationError(t *testing.T) {
	stub := &tokenValidatorStub{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")}
	router := newProtectedRouter(stub, models.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, serve(router, "Bearer expired").Code)
}

func TestRequireRoles(t *testing.T) {
	teacher := &tokenValidatorStub{claims: &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher}}

	assert.Equal(t, http.StatusForbidden, serve(newProtectedRouter(teacher, models.RoleAdmin, models.RoleSuperAdmin), "Bearer x").Code)
	assert.Equal(t, http.StatusNoContent, serve(newProtectedRouter(teacher, models.RoleAdmin, models.RoleTeacher), "Bearer x").Code)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/open", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var captured map[string]interface{}
	router := gin.New()
	router.Use(WithResponseMeta())
	router.GET("/", func(c *gin.Context) {
		SetMeta(c, "academic_year_id", int64(3))
		captured = ExtractMeta(c)
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, int64(3), captured["academic_year_id"])
	assert.Contains(t, captured, "processing_time_ms")
}
