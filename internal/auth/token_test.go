package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/api/internal/authz"
)

func TestTokenRoundTrip(t *testing.T) {
	Configure("test-secret", time.Minute)

	token, err := GenerateAccessToken(7, authz.RoleManager)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, authz.RoleManager, claims.Role)
	assert.NotEmpty(t, claims.ID, "jti is set")
}

func TestParseRejectsTamperedToken(t *testing.T) {
	Configure("test-secret", time.Minute)

	token, err := GenerateAccessToken(7, authz.RoleEmployee)
	require.NoError(t, err)

	Configure("another-secret", time.Minute)
	_, err = ParseAndValidate(token)
	assert.Error(t, err)
}

func TestParseRejectsUnknownRole(t *testing.T) {
	Configure("test-secret", time.Minute)

	token, err := GenerateAccessToken(7, authz.Role("SUPERUSER"))
	require.NoError(t, err)

	_, err = ParseAndValidate(token)
	assert.Error(t, err)
}

func TestGenerateRequiresConfiguredKey(t *testing.T) {
	Configure("", time.Minute)
	defer Configure("test-secret", time.Minute)

	_, err := GenerateAccessToken(7, authz.RoleEmployee)
	assert.Error(t, err)
}
