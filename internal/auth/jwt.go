// Package auth identifies browser profiles and verifies credentials.
//
// PROFILE FLOW:
//  1. A request arrives without a valid profile cookie
//  2. The Profile middleware mints a new profile id (xid) and a signed JWT
//     whose subject is that id, and sets it as an HttpOnly cookie
//  3. Later requests carry the cookie; the middleware validates it and puts
//     the profile id in the request context
//  4. Handlers scope every storage read and write to that profile id
//
// The profile id plays the part of "this browser". It is not a login: who is
// signed in is recorded inside the profile's storage, not in the token.
//
// JWT STRUCTURE:
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Payload: {"sub":"<profileID>","iss":"robotics-league","exp":...}
//	- Signature: HMAC-SHA256 over header and payload
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "robotics-league"

// TokenService signs and verifies profile tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. Tokens from Generate live for ttl.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is the lifetime of tokens issued by Generate.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Generate signs a token for profileID using the configured lifetime.
func (s *TokenService) Generate(profileID string) (string, error) {
	return s.GenerateWithDuration(profileID, s.ttl)
}

// GenerateWithDuration signs a token that expires after d.
// A negative d yields an already-expired token.
func (s *TokenService) GenerateWithDuration(profileID string, d time.Duration) (string, error) {
	now := time.Now()

	c := jwt.RegisteredClaims{
		Subject:   profileID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		Issuer:    issuer,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, issuer, algorithm and expiry, and returns the
// profile id from the "sub" claim.
//
// jwt.WithValidMethods pins HS256 so a token claiming "alg":"none" (or an
// asymmetric algorithm keyed with our secret) is rejected.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	var c jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}
	return c.Subject, nil
}
