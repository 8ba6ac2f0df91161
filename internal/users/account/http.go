// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package account

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arjunmehra/vidtube/internal/media"
	"github.com/arjunmehra/vidtube/internal/platform/apperr"
	"github.com/arjunmehra/vidtube/internal/platform/constants"
	"github.com/arjunmehra/vidtube/internal/platform/middleware"
	requestutil "github.com/arjunmehra/vidtube/internal/platform/request"
	"github.com/arjunmehra/vidtube/internal/platform/respond"
	"github.com/arjunmehra/vidtube/internal/platform/validate"
	"github.com/arjunmehra/vidtube/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements account provisioning and profile HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] for the authenticated profile endpoints.
//
// # Endpoints
//   - GET   /        : Current user's profile.
//   - PATCH /        : Update display name and email.
//   - PATCH /avatar  : Replace avatar image (multipart).
//   - PATCH /cover   : Replace cover image (multipart).
//
// Register is mounted separately under the auth subtree by the API server.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.getProfile)
	router.Patch("/", handler.updateDetails)
	router.Patch("/avatar", handler.updateAvatar)
	router.Patch("/cover", handler.updateCover)

	return router
}

// # Request Payloads

type updateDetailsRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

/*
Register provisions a new account from a multipart form.

POST /api/v1/auth/register

Description: Accepts the textual fields plus an avatar file (required) and a
cover image file (optional), and runs the compensating registration saga.

Request:
  - Multipart fields: full_name, username, email, password
  - Multipart files: avatar (required), cover_image (optional)

Response:
  - 201: User: Created, sanitized profile
  - 400: ValidationError: All field violations reported together
  - 409: Conflict: Username or email already registered
  - 502: Upload: Media store failure
*/
func (handler *Handler) Register(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseMultipartForm(constants.MaxUploadMemory); err != nil {
		respond.Error(writer, request, validate.ErrInvalidForm)
		return
	}

	avatar, closeAvatar, err := fileFromForm(request, auth.FieldAvatar)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer closeAvatar()

	cover, closeCover, err := fileFromForm(request, auth.FieldCover)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer closeCover()

	user, err := handler.accountService.Register(request.Context(), RegisterInput{
		FullName: request.FormValue(auth.FieldFullName),
		Username: request.FormValue(auth.FieldUsername),
		Email:    request.FormValue(auth.FieldEmail),
		Password: request.FormValue(auth.FieldPassword),
	}, avatar, cover)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
GetProfile returns the authenticated user's own profile.

GET /api/v1/users/me

Response:
  - 200: User: Sanitized profile
  - 401: Unauthorized: Authentication required
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateDetails updates the display name and email of the current user.

PATCH /api/v1/users/me

Request:
  - Body: updateDetailsRequest (FullName, Email)

Response:
  - 200: User: Updated, sanitized profile
  - 409: Conflict: Email already registered
*/
func (handler *Handler) updateDetails(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateDetailsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.accountService.UpdateDetails(request.Context(), userID, input.FullName, input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateAvatar replaces the avatar image of the current user.

PATCH /api/v1/users/me/avatar

Request:
  - Multipart file: avatar

Response:
  - 200: User: Updated, sanitized profile
  - 502: Upload: Media store failure
*/
func (handler *Handler) updateAvatar(writer http.ResponseWriter, request *http.Request) {
	handler.replaceImage(writer, request, auth.FieldAvatar)
}

/*
UpdateCover replaces the cover image of the current user.

PATCH /api/v1/users/me/cover

Request:
  - Multipart file: cover_image

Response:
  - 200: User: Updated, sanitized profile
  - 502: Upload: Media store failure
*/
func (handler *Handler) updateCover(writer http.ResponseWriter, request *http.Request) {
	handler.replaceImage(writer, request, auth.FieldCover)
}

// replaceImage handles the shared multipart decode for both media slots.
func (handler *Handler) replaceImage(writer http.ResponseWriter, request *http.Request, slot string) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := request.ParseMultipartForm(constants.MaxUploadMemory); err != nil {
		respond.Error(writer, request, validate.ErrInvalidForm)
		return
	}

	file, closeFile, err := fileFromForm(request, slot)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer closeFile()

	var user *auth.User
	if slot == auth.FieldAvatar {
		user, err = handler.accountService.UpdateAvatar(request.Context(), userID, file)
	} else {
		user, err = handler.accountService.UpdateCover(request.Context(), userID, file)
	}

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Multipart Helpers

// fileFromForm extracts one uploaded file as a [media.FileUpload].
//
// A missing file is not an error here — requiredness is a service-level
// rule so that it lands in the same validation report as the text fields.
func fileFromForm(request *http.Request, field string) (*media.FileUpload, func(), error) {
	noop := func() {}

	file, header, err := request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, validate.ErrInvalidForm
	}

	if header.Size > constants.MaxImageBytes {
		_ = file.Close()
		return nil, noop, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   field,
			Message: "Image exceeds the maximum allowed size",
		})
	}

	upload := &media.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}

	return upload, func() { _ = file.Close() }, nil
}
