// Copyright (c) 2026 Katalog. All rights reserved.

// Package sec provides token verification for the external identity provider.
//
// # Architecture
//
// This package isolates security-sensitive code (JWT signing and verification)
// from the domain logic. Identity itself lives with the provider; the API only
// checks that a presented access token was issued for it and extracts claims.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrVerifierNotConfigured is returned when no signing secret was supplied.
var ErrVerifierNotConfigured = errors.New("auth: token verification is not configured")

// AuthClaims represents the payload embedded inside a provider access token.
//
// The catalog's write paths only need the caller's email, which is recorded
// on every submission.
type AuthClaims struct {
	jwt.RegisteredClaims

	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserID returns the provider's stable subject identifier.
func (c *AuthClaims) UserID() string {
	return c.Subject
}

// TokenService handles generation and verification of HS256 access tokens.
type TokenService struct {
	secret   []byte
	audience string
}

// NewTokenService creates a new TokenService for the given shared secret and
// expected audience. An empty secret yields a service whose every verification
// fails with [ErrVerifierNotConfigured].
func NewTokenService(secret, audience string) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		audience: audience,
	}
}

// Configured reports whether a signing secret is available.
func (service *TokenService) Configured() bool {
	return len(service.secret) > 0
}

// GenerateAccessToken creates a signed token for local tooling and tests.
func (service *TokenService) GenerateAccessToken(subject, email string, timeToLive time.Duration) (string, error) {
	if !service.Configured() {
		return "", ErrVerifierNotConfigured
	}

	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{service.audience},
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Email: email,
		Role:  "authenticated",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature, expiry and audience of a JWT string.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	if !service.Configured() {
		return nil, ErrVerifierNotConfigured
	}

	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	},
		jwt.WithAudience(service.audience),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	return claims, nil
}
