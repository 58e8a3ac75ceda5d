package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sprinkle-fairydust/site-api/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTValidator_RoundTrip(t *testing.T) {
	v := auth.NewJWTValidator(testJWTSecret)
	token, err := v.IssueToken("staff-1", "staff@sprinkle.test", []string{auth.RoleAdmin}, time.Minute)
	require.NoError(t, err)

	admin, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", admin.Subject)
	assert.True(t, admin.IsAdmin())
}

func TestJWTValidator_Expired(t *testing.T) {
	v := auth.NewJWTValidator(testJWTSecret)
	token, err := v.IssueToken("staff-1", "", []string{auth.RoleAdmin}, -time.Minute)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestJWTValidator_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "staff-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	_, err = auth.NewJWTValidator(testJWTSecret).ValidateToken(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_RequiresExpiryAndSubject(t *testing.T) {
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "staff-1"})
	signed, err := noExp.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = auth.NewJWTValidator(testJWTSecret).ValidateToken(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	signed, err = noSub.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = auth.NewJWTValidator(testJWTSecret).ValidateToken(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_NoSecret(t *testing.T) {
	v := auth.NewJWTValidator("")
	_, err := v.IssueToken("staff-1", "", nil, time.Minute)
	assert.ErrorIs(t, err, auth.ErrNoSecret)
	_, err = v.ValidateToken("abc")
	assert.ErrorIs(t, err, auth.ErrNoSecret)
}
