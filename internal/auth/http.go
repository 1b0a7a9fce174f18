// Copyright (c) 2026 Katalog. All rights reserved.

// Package auth exposes the caller's identity as seen by the API.
//
// Accounts live with the external identity provider; this package never
// stores users. It only reports what a verified access token says.
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EarnestL/k-atalog/internal/platform/apperr"
	"github.com/EarnestL/k-atalog/internal/platform/respond"
	requestutil "github.com/EarnestL/k-atalog/internal/platform/request"
)

// Handler implements identity-related HTTP endpoints.
type Handler struct {
	configured bool
}

// NewHandler constructs a [Handler]. configured tells it whether token
// verification has a secret at all.
func NewHandler(configured bool) *Handler {
	return &Handler{configured: configured}
}

// Routes returns a [chi.Router] configured with identity routes.
//
// # Endpoints
//   - GET /me : The verified caller.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/me", handler.me)
	return router
}

// User is the identity projection returned to clients.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// MeResponse wraps [User] under a "user" key.
type MeResponse struct {
	User User `json:"user"`
}

/*
GET /api/v1/auth/me.

Response:
  - 200: MeResponse
  - 401: UNAUTHORIZED: No valid token
  - 503: SERVICE_UNAVAILABLE: Token verification not configured
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Claims(request)
	if claims == nil {
		if !handler.configured {
			respond.Error(writer, request, apperr.ServiceUnavailable("Authentication is not configured", nil))
			return
		}
		writer.Header().Set("WWW-Authenticate", "Bearer")
		respond.Error(writer, request, apperr.Unauthorized("Not authenticated"))
		return
	}

	respond.OK(writer, MeResponse{User: User{
		ID:    claims.UserID(),
		Email: claims.Email,
		Role:  claims.Role,
	}})
}
