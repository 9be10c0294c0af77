package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/bzero-app/bzero/pkg/errcode"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return signed
}

func TestParseExtractsClaims(t *testing.T) {
	tok := sign(t, jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(time.Hour).Unix()})

	claims, err := Parse(tok)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserId)
}

func TestParseEmptyToken(t *testing.T) {
	_, err := Parse("")
	require.ErrorIs(t, err, errcode.ErrTokenMissing)
}

func TestParseGarbageToken(t *testing.T) {
	_, err := Parse("not-a-jwt")
	require.ErrorIs(t, err, errcode.ErrTokenMissing)
}

func TestCheckExpired(t *testing.T) {
	expired := sign(t, jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(-time.Minute).Unix()})
	require.ErrorIs(t, Check(expired), errcode.ErrTokenExpired)

	valid := sign(t, jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, Check(valid))
}

func TestCheckWithoutExpiry(t *testing.T) {
	// Tokens with no exp claim never expire client-side.
	require.NoError(t, Check(sign(t, jwt.MapClaims{"user_id": "u1"})))
}

func TestUserIDFallsBackToSubject(t *testing.T) {
	id, err := UserID(sign(t, jwt.MapClaims{"user_id": "u1", "sub": "s1"}))
	require.NoError(t, err)
	require.Equal(t, "u1", id)

	id, err = UserID(sign(t, jwt.MapClaims{"sub": "s1"}))
	require.NoError(t, err)
	require.Equal(t, "s1", id)
}
