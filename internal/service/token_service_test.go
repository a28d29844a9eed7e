package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-staff-api/internal/models"
	appErrors "github.com/noah-isme/sma-staff-api/pkg/errors"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "school-identity"})

	token, expires, err := svc.IssueToken("admin-1", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestTokenServiceRejectsInvalidTokens(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "school-identity"})

	other := NewTokenService(TokenConfig{Secret: "other", Issuer: "school-identity"})
	forged, _, err := other.IssueToken("admin-1", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	expired, _, err := svc.IssueToken("admin-1", models.RoleAdmin, -time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	foreign := NewTokenService(TokenConfig{Secret: "secret", Issuer: "elsewhere"})
	wrongIssuer, _, err := foreign.IssueToken("admin-1", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(wrongIssuer)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{UserID: "x"})
	signed, err := noRole.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
