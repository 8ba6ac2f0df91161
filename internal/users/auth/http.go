// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

/*
HTTP delivery layer for the session lifecycle.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Issues the dual session cookies (access + refresh) and accepts
    tokens from either cookie or payload.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arjunmehra/vidtube/internal/platform/constants"
	"github.com/arjunmehra/vidtube/internal/platform/middleware"
	requestutil "github.com/arjunmehra/vidtube/internal/platform/request"
	"github.com/arjunmehra/vidtube/internal/platform/respond"
	"github.com/arjunmehra/vidtube/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements session-related HTTP endpoints.
type Handler struct {
	authService *Service

	// secureCookies mirrors config.SecureCookies(): true in production,
	// false in development so local HTTP clients keep their session.
	secureCookies bool
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service, secureCookies bool) *Handler {
	return &Handler{
		authService:   service,
		secureCookies: secureCookies,
	}
}

// Routes returns a [chi.Router] configured with session-specific routes.
//
// # Endpoints
//   - POST /login           : Authenticates and establishes a session.
//   - POST /refresh         : Rotates the refresh token.
//   - POST /logout          : Ends the session (authenticated).
//   - POST /change-password : Updates credentials (authenticated).
//
// Registration is owned by the account package and mounted alongside these
// routes by the API server.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, mints the access/refresh pair, and
injects both session cookies into the response.

Request:
  - Body: loginRequest (Login, Password)

Response:
  - 200: Session: Token pair and sanitized user profile
  - 401: InvalidCredentials: Unknown identity or wrong password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldLogin, input.Login)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Login:    input.Login,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldUser:         session.User,
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
		FieldTokenType:    "Bearer",
		FieldExpiresIn:    int64(AccessTokenTTL / time.Second),
	})
}

/*
Refresh rotates the session tokens.

POST /api/v1/auth/refresh

Description: Reads the refresh token from the session cookie (or the JSON
body for non-browser clients), exchanges it for a rotated pair, and updates
both cookies.

Response:
  - 200: Session: New token pair
  - 401: Unauthenticated / InvalidToken / TokenReuseDetected
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	presented := handler.extractRefreshToken(request)

	session, err := handler.authService.Refresh(request.Context(), presented)
	if err != nil {
		// A dead session is a dead session: make the client drop its cookies.
		handler.clearSessionCookies(writer)
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
		FieldTokenType:    "Bearer",
		FieldExpiresIn:    int64(AccessTokenTTL / time.Second),
	})
}

/*
Logout ends the current user session.

POST /api/v1/auth/logout

Description: Clears the stored refresh token for the authenticated identity
and removes the session cookies from the client. Idempotent.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookies(writer)
	respond.NoContent(writer)
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/auth/change-password

Description: Verifies the current password before applying the new one.

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Success: Password changed
  - 401: Unauthorized: Current password incorrect
  - 400: ValidationError: Weak or missing password
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(
		request.Context(),
		userID,
		input.CurrentPassword,
		input.NewPassword,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password changed successfully",
	})
}

// # Cookie Management

// setSessionCookies writes both http-only session cookies.
func (handler *Handler) setSessionCookies(writer http.ResponseWriter, session *LoginSession) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    session.AccessToken,
		Path:     constants.SessionCookiePath,
		Expires:  time.Now().Add(AccessTokenTTL),
		Secure:   handler.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.SessionCookiePath,
		Expires:  session.RefreshTokenExpiresAt,
		Secure:   handler.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookies expires both session cookies on the client.
func (handler *Handler) clearSessionCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     constants.SessionCookiePath,
			MaxAge:   -1,
			Secure:   handler.secureCookies,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// extractRefreshToken reads the refresh token from the cookie, falling back
// to the JSON body for API clients that do not use cookies.
func (handler *Handler) extractRefreshToken(request *http.Request) string {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err == nil {
		return input.RefreshToken
	}

	return ""
}
