package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bzero-app/bzero/pkg/errcode"
)

// Claims represents the claims the B0 auth service puts in access tokens
type Claims struct {
	UserId string `json:"user_id"`
	jwt.RegisteredClaims
}

// Parse decodes a token without verifying its signature. The client cannot
// verify server-signed tokens; it only needs the subject and expiry for
// fail-fast checks before opening a connection.
func Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errcode.ErrTokenMissing
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, errcode.ErrTokenMissing.Wrap(err)
	}
	return claims, nil
}

// Check validates that a token is present and not expired.
func Check(tokenString string) error {
	claims, err := Parse(tokenString)
	if err != nil {
		return err
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return errcode.ErrTokenExpired
	}
	return nil
}

// UserID extracts the user id claim, falling back to the registered subject.
func UserID(tokenString string) (string, error) {
	claims, err := Parse(tokenString)
	if err != nil {
		return "", err
	}
	if claims.UserId != "" {
		return claims.UserId, nil
	}
	return claims.Subject, nil
}
