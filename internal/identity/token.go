package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ClaimsFromToken decodes the claims of an access token without verifying its signature.
// The token was issued to us by the auth service and is only read for identity hints.
func ClaimsFromToken(token string) (map[string]any, error) {
	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	return claims, nil
}
