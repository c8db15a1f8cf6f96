package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned by [CheckTokenExpiry] for a token whose exp
// claim is in the past.
var ErrTokenExpired = errors.New("token expired")

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

// ParseUserIDFromJWT reads the numeric subject of tokenString without
// verifying the signature. The client never holds the signing key; the server
// verifies every request.
func ParseUserIDFromJWT(tokenString string) (int64, error) {
	claims, err := parseUnverified(tokenString)
	if err != nil {
		return 0, err
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// CheckTokenExpiry reports whether tokenString can still be sent at now.
//
// Returns:
//   - nil            : the token has no exp claim or exp is after now
//   - ErrTokenExpired: exp is at or before now
//   - other error    : the token is empty or malformed
//
// Example usage:
//
//	if err := utils.CheckTokenExpiry(token, time.Now()); err != nil {
//	    // route to re-authentication without touching the network
//	}
func CheckTokenExpiry(tokenString string, now time.Time) error {
	if strings.TrimSpace(tokenString) == "" {
		return errors.New("empty token")
	}

	claims, err := parseUnverified(tokenString)
	if err != nil {
		return err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("error reading exp claim: %w", err)
	}
	if exp == nil {
		return nil
	}
	if !now.Before(exp.Time) {
		return fmt.Errorf("%w at %s", ErrTokenExpired, exp.Time.UTC().Format(time.RFC3339))
	}

	return nil
}

func parseUnverified(tokenString string) (jwt.MapClaims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("error parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
