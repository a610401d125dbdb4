// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/shutterfeed/internal/logging"
	"github.com/tomtom215/shutterfeed/internal/social"
)

type contextKey string

// ClaimsContextKey holds the verified *Claims on an authenticated request.
const ClaimsContextKey contextKey = "claims"

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware verifies session tokens.
type Middleware struct {
	jwtManager  *JWTManager
	revocations RevocationStore
	writeError  ErrorWriter
}

// NewMiddleware creates the session middleware. writeError renders the
// Unauthorized errors it produces.
func NewMiddleware(jwtManager *JWTManager, revocations RevocationStore, writeError ErrorWriter) *Middleware {
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}
	return &Middleware{
		jwtManager:  jwtManager,
		revocations: revocations,
		writeError:  writeError,
	}
}

// Authenticate rejects requests without a valid, unrevoked session token.
// The verified account id becomes the viewer for the rest of the request.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			m.writeError(w, r, social.Unauthorized("Authentication required"))
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
			m.writeError(w, r, social.Unauthorized("Invalid or expired token"))
			return
		}

		if m.revocations != nil {
			revoked, err := m.revocations.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Token revocation check failed")
				m.writeError(w, r, social.Internal("Failed to verify session", err))
				return
			}
			if revoked {
				RevokedTokenRejectionsTotal.Inc()
				m.writeError(w, r, social.Unauthorized("Invalid or expired token"))
				return
			}
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		ctx = logging.ContextWithViewerID(ctx, claims.AccountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractToken returns the bearer token from the Authorization header, or the
// session cookie when no header is present.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			return ""
		}
		return cookie.Value
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ClaimsFromContext returns the verified claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// ViewerID returns the authenticated account id, or "" when unauthenticated.
func ViewerID(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.AccountID
	}
	return ""
}

// SetSessionCookie stores token in an HTTP-only cookie.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
