// Copyright (c) 2026 Katalog. All rights reserved.

package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EarnestL/k-atalog/internal/platform/middleware"
	requestutil "github.com/EarnestL/k-atalog/internal/platform/request"
	"github.com/EarnestL/k-atalog/internal/platform/respond"
	"github.com/EarnestL/k-atalog/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for catalog browsing, search and
// contributions.
type Handler struct {
	service *Service
}

// NewHandler constructs a new catalog [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GroupPhotocardsResponse is one page of a group's photocards.
type GroupPhotocardsResponse struct {
	Photocards      []Photocard `json:"photocards"`
	TotalPhotocards int         `json:"totalPhotocards"`
}

// Routes returns a [chi.Router] with every catalog endpoint. It is mounted
// at the API root; write endpoints read the caller from the request context.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Browsing
	router.Route("/groups", func(groups chi.Router) {
		groups.Get("/", handler.listGroups)
		groups.Get("/{groupID}", handler.getGroup)
		groups.Get("/{groupID}/members", handler.listMembers)
		groups.Get("/{groupID}/members/{memberID}", handler.getMember)
		groups.Get("/{groupID}/members/{memberID}/photocards", handler.listMemberPhotocards)
	})

	router.Route("/photocards", func(photocards chi.Router) {
		photocards.Get("/", handler.listPhotocards)
		photocards.Get("/by-group/{groupID}", handler.listGroupPhotocards)

		// ## Contributions (Auth Required)
		photocards.Group(func(user chi.Router) {
			user.Use(middleware.RequireAuth)
			user.Post("/", handler.createPhotocard)
		})
	})

	// ## Search
	router.Get("/search", handler.search)
	router.Get("/search/all", handler.searchAll)

	// ## Submission History (Auth Required)
	router.With(middleware.RequireAuth).Get("/submissions", handler.listSubmissions)

	return router
}

// # Group Endpoints

/*
GET /api/v1/groups.

Response:
  - 200: []Group: Every group in source order
  - 503: SERVICE_UNAVAILABLE: Backend unreachable
*/
func (handler *Handler) listGroups(writer http.ResponseWriter, request *http.Request) {
	groups, err := handler.service.ListGroups(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, groups)
}

/*
GET /api/v1/groups/{groupID}.

Request:
  - groupID: string (Legacy id or storage id)

Response:
  - 200: Group
  - 400: VALIDATION_ERROR: Identifier too long
  - 404: NOT_FOUND: Group not found
*/
func (handler *Handler) getGroup(writer http.ResponseWriter, request *http.Request) {
	groupID, err := requestutil.Param(request, "groupID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	group, err := handler.service.GetGroup(request.Context(), groupID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, group)
}

// GET /api/v1/groups/{groupID}/members.
func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	groupID, err := requestutil.Param(request, "groupID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	members, err := handler.service.ListMembers(request.Context(), groupID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, members)
}

/*
GET /api/v1/groups/{groupID}/members/{memberID}.

Response:
  - 200: Member
  - 404: NOT_FOUND: Group or member not found
*/
func (handler *Handler) getMember(writer http.ResponseWriter, request *http.Request) {
	groupID, memberID, err := memberParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.service.GetMember(request.Context(), groupID, memberID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, member)
}

// GET /api/v1/groups/{groupID}/members/{memberID}/photocards.
func (handler *Handler) listMemberPhotocards(writer http.ResponseWriter, request *http.Request) {
	groupID, memberID, err := memberParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cards, err := handler.service.ListMemberPhotocards(request.Context(), groupID, memberID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, cards)
}

func memberParams(request *http.Request) (string, string, error) {
	groupID, err := requestutil.Param(request, "groupID")
	if err != nil {
		return "", "", err
	}
	memberID, err := requestutil.Param(request, "memberID")
	if err != nil {
		return "", "", err
	}
	return groupID, memberID, nil
}

// # Photocard Endpoints

// GET /api/v1/photocards.
func (handler *Handler) listPhotocards(writer http.ResponseWriter, request *http.Request) {
	cards, err := handler.service.ListPhotocards(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, cards)
}

/*
GET /api/v1/photocards/by-group/{groupID}.

Request:
  - groupID: string (Legacy id or storage id)
  - limit: int (default 40, max 200)
  - offset: int

Response:
  - 200: GroupPhotocardsResponse
  - 404: NOT_FOUND: Group not found
*/
func (handler *Handler) listGroupPhotocards(writer http.ResponseWriter, request *http.Request) {
	groupID, err := requestutil.Param(request, "groupID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, err := handler.service.ListGroupPhotocards(request.Context(), groupID, pagination.FromRequest(request, "limit", "offset"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, GroupPhotocardsResponse{Photocards: page.Items, TotalPhotocards: page.Total})
}

/*
POST /api/v1/photocards.

Description: Adds a photocard described by display names. The caller's
email is recorded on an accepted submission linked to the new card.

Request (Body):
  - PhotocardInput JSON object

Response:
  - 201: Photocard: Created card
  - 400: VALIDATION_ERROR: Invalid input data
  - 401: UNAUTHORIZED: Authentication required
  - 503: SERVICE_UNAVAILABLE: No persistent backend
*/
func (handler *Handler) createPhotocard(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input PhotocardInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	card, err := handler.service.CreatePhotocard(request.Context(), claims.Email, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, card)
}

// # Search Endpoints

/*
GET /api/v1/search.

Request:
  - q: string (Required, at most 500 characters)
  - pc_limit: int (Photocard page size, default 40)
  - pc_offset: int

Response:
  - 200: SearchResult
  - 400: VALIDATION_ERROR: Missing or oversized query
*/
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query().Get("q")

	result, err := handler.service.Search(request.Context(), query, pagination.FromRequest(request, "pc_limit", "pc_offset"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

// GET /api/v1/search/all.
func (handler *Handler) searchAll(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.SearchAll(request.Context(), pagination.FromRequest(request, "pc_limit", "pc_offset"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

// # Submission Endpoints

/*
GET /api/v1/submissions.

Response:
  - 200: []Submission: Newest first, at most 50
  - 401: UNAUTHORIZED: Authentication required
  - 503: SERVICE_UNAVAILABLE: No persistent backend
*/
func (handler *Handler) listSubmissions(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	submissions, err := handler.service.ListSubmissions(request.Context(), claims.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, submissions)
}
