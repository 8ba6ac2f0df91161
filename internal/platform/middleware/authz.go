// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/arjunmehra/vidtube/internal/platform/apperr"
	"github.com/arjunmehra/vidtube/internal/platform/constants"
	"github.com/arjunmehra/vidtube/internal/platform/ctxutil"
	"github.com/arjunmehra/vidtube/internal/platform/respond"
	"github.com/arjunmehra/vidtube/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the [sec.TokenService]
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	Verify(tokenStr string, kind sec.TokenKind) (*sec.SessionClaims, error)
}

// Authenticate extracts and verifies the access token from the request.
//
// # Flow
//  1. Look for 'Authorization: Bearer <token>', falling back to the
//     access_token cookie set by the session endpoints.
//  2. If neither is present, the request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier]; only tokens
//     of kind "access" are accepted here.
//  4. Inject [*sec.SessionClaims] into the request context for downstream use.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			tokenStr, ok := extractAccessToken(request)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if !ok {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, err := verifier.Verify(tokenStr, sec.KindAccess)
			if err != nil {
				respond.Error(writer, request, apperr.InvalidToken(err))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetAuthUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// extractAccessToken finds the bearer credential for the request.
//
// The Authorization header wins over the cookie so that API clients can
// override a stale browser session.
func extractAccessToken(request *http.Request) (string, bool) {
	authHeader := request.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return parts[1], true
		}
		return "", false
	}

	cookie, err := request.Cookie(constants.AccessTokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
