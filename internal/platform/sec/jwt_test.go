// Copyright (c) 2026 Katalog. All rights reserved.

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EarnestL/k-atalog/internal/platform/sec"
)

/*
TestTokenService_RoundTrip verifies that a generated token verifies with its claims intact.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := sec.NewTokenService("test-secret", "authenticated")

	token, err := service.GenerateAccessToken("user-1", "fan@example.com", time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "fan@example.com", claims.Email)
}

/*
TestTokenService_Rejects covers the verification failure modes.
*/
func TestTokenService_Rejects(t *testing.T) {
	issuer := sec.NewTokenService("test-secret", "authenticated")

	expired, err := issuer.GenerateAccessToken("user-1", "fan@example.com", -time.Minute)
	require.NoError(t, err)

	otherAudience, err := sec.NewTokenService("test-secret", "anon").GenerateAccessToken("user-1", "fan@example.com", time.Minute)
	require.NoError(t, err)

	wrongSecret, err := sec.NewTokenService("other-secret", "authenticated").GenerateAccessToken("user-1", "fan@example.com", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong_audience", otherAudience},
		{"wrong_secret", wrongSecret},
		{"garbage", "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.VerifyToken(tt.token)
			assert.Error(t, err)
		})
	}
}

/*
TestTokenService_Unconfigured ensures an empty secret never verifies anything.
*/
func TestTokenService_Unconfigured(t *testing.T) {
	service := sec.NewTokenService("", "authenticated")

	assert.False(t, service.Configured())

	_, err := service.VerifyToken("anything")
	assert.ErrorIs(t, err, sec.ErrVerifierNotConfigured)
}
