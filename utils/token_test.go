package authUtils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicfix-be/models"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "64b7f0c2a1b2c3d4e5f60718", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.Subject)
}

func TestParseToken_Rejects(t *testing.T) {
	valid, err := GenerateToken(testSecret, "user-1", models.RoleUser, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(testSecret, "user-1", models.RoleUser, -time.Minute)
	require.NoError(t, err)
	noUser, err := GenerateToken(testSecret, "", models.RoleUser, time.Hour)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{UserID: "user-1"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other-secret", valid},
		{"expired", testSecret, expired},
		{"missing user id", testSecret, noUser},
		{"unexpected algorithm", testSecret, hs512},
		{"garbage", testSecret, "not-a-token"},
		{"unset secret", "", valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(tt.secret, tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestGenerateToken_RequiresSecret(t *testing.T) {
	_, err := GenerateToken("", "user-1", models.RoleUser, time.Hour)
	assert.Error(t, err)
}
