// Package auth verifies bearer tokens presented by upstream callers.
// Token issuance lives outside this service; only verification is needed so
// authentication failures can be classified distinctly at the error seam.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openclass/member-service/internal/errs"
)

// BearerToken extracts the token from an "Authorization: Bearer <JWT>" value.
func BearerToken(header string) (string, error) {
	v := strings.TrimSpace(header)
	if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
		if t := strings.TrimSpace(v[7:]); t != "" {
			return t, nil
		}
	}
	return "", fmt.Errorf("no bearer token: %w", errs.ErrAuthRequired)
}

// VerifyToken verifies an HS256 token and returns its subject as an account id.
// Any failure maps to errs.ErrAuthRequired.
func VerifyToken(token string, signKey []byte) (int64, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return signKey, nil
	})
	if err != nil || !parsed.Valid {
		return 0, fmt.Errorf("invalid token: %w", errs.ErrAuthRequired)
	}

	v := jwt.NewValidator(jwt.WithLeeway(30 * time.Second))
	if err := v.Validate(&claims); err != nil {
		return 0, fmt.Errorf("token expired or not valid yet: %w", errs.ErrAuthRequired)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad subject: %w", errs.ErrAuthRequired)
	}
	return id, nil
}
