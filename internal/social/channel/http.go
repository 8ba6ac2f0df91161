// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package channel

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/arjunmehra/vidtube/internal/platform/request"
	"github.com/arjunmehra/vidtube/internal/platform/respond"
	"github.com/arjunmehra/vidtube/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements the social-graph read endpoints.
type Handler struct {
	channelService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{channelService: service}
}

// Routes returns a [chi.Router] for the public channel endpoints.
//
// # Endpoints
//   - GET /{username} : Public channel profile (viewer-aware when authenticated).
//
// WatchHistory is mounted under the authenticated /users/me subtree by the
// API server.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{username}", handler.getChannelProfile)
	return router
}

/*
GetChannelProfile returns the public profile of a channel.

GET /api/v1/channels/{username}

Description: Case-insensitive channel resolution with subscription counts.
Anonymous viewers get is_subscribed=false; authenticated viewers get their
actual membership.

Response:
  - 200: Profile: Public channel projection
  - 400: ValidationError: Blank username
  - 404: NotFound: Unknown channel
*/
func (handler *Handler) getChannelProfile(writer http.ResponseWriter, request *http.Request) {
	viewerID := ""
	if claims := requestutil.Claims(request); claims != nil {
		viewerID = claims.UserID()
	}

	profile, err := handler.channelService.GetChannelProfile(
		request.Context(),
		viewerID,
		requestutil.Param(request, auth.FieldUsername),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
WatchHistory returns the authenticated member's watched videos in order.

GET /api/v1/users/me/history

Response:
  - 200: []VideoSummary: Ordered history with owner projections
  - 401: Unauthorized: Authentication required
*/
func (handler *Handler) WatchHistory(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	history, err := handler.channelService.GetWatchHistory(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, history)
}
