// Copyright (c) 2026 Katalog. All rights reserved.

package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EarnestL/k-atalog/internal/auth"
	"github.com/EarnestL/k-atalog/internal/platform/ctxutil"
	"github.com/EarnestL/k-atalog/internal/platform/sec"
)

/*
TestMe covers the configured, unconfigured and authenticated cases.
*/
func TestMe(t *testing.T) {
	t.Run("not_configured", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		auth.NewHandler(false).Routes().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		auth.NewHandler(true).Routes().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "Bearer", recorder.Header().Get("WWW-Authenticate"))
	})

	t.Run("authenticated", func(t *testing.T) {
		claims := &sec.AuthClaims{Email: "fan@example.com", Role: "authenticated"}
		claims.Subject = "user-1"

		request := httptest.NewRequest(http.MethodGet, "/me", nil)
		request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))

		recorder := httptest.NewRecorder()
		auth.NewHandler(true).Routes().ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.JSONEq(t, `{"data":{"user":{"id":"user-1","email":"fan@example.com","role":"authenticated"}}}`, recorder.Body.String())
	})
}
