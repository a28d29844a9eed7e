package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-staff-api/internal/middleware"
	"github.com/noah-isme/sma-staff-api/internal/models"
	appErrors "github.com/noah-isme/sma-staff-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// pathID reads a positive numeric path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}

// optionalQueryID reads a positive numeric query parameter, returning nil when absent.
func optionalQueryID(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return &id, nil
}

func optionalQueryBool(c *gin.Context, name string) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return value, nil
}

func bindError(err error, what string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+what+" payload")
}
