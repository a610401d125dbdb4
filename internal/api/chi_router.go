// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

// Package api implements the Shutterfeed REST API on a chi router: the
// response envelope, the mapping of domain errors to HTTP statuses, and one
// handler per endpoint.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/shutterfeed/internal/auth"
	"github.com/tomtom215/shutterfeed/internal/middleware"
)

// Router wires handlers and middleware into an http.Handler.
type Router struct {
	handler       *Handler
	middleware    *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. chiMW may be nil for the defaults.
func NewRouter(handler *Handler, authMW *auth.Middleware, chiMW *ChiMiddleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		middleware:    authMW,
		chiMiddleware: chiMW,
	}
}

// NewAuthMiddleware creates session middleware that renders failures with
// the API error envelope.
func NewAuthMiddleware(jwtManager *auth.JWTManager, revocations auth.RevocationStore) *auth.Middleware {
	return auth.NewMiddleware(jwtManager, revocations, writeError)
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rw := NewResponseWriter(w, r)
		rw.writeJSON(http.StatusNotFound, APIResponse{
			Error: &APIError{Code: ErrCodeNotFound, Message: "Route not found"},
			Meta:  rw.meta(),
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rw := NewResponseWriter(w, r)
		rw.writeJSON(http.StatusMethodNotAllowed, APIResponse{
			Error: &APIError{Code: "METHOD_NOT_ALLOWED", Message: "Method not allowed"},
			Meta:  rw.meta(),
		})
	})

	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		// Signup and login carry the stricter per-IP limit. Logout works
		// without a valid session.
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitAuth())
				r.Post("/signup", router.handler.Signup)
				r.Post("/login", router.handler.Login)
			})
			r.Post("/logout", router.handler.Logout)
			r.With(router.middleware.Authenticate).Get("/me", router.handler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(router.middleware.Authenticate)

			r.Get("/feed", router.handler.Feed)

			r.Post("/posts", router.handler.CreatePost)
			r.Route("/posts/{postID}", func(r chi.Router) {
				r.Get("/", router.handler.GetPost)
				r.Delete("/", router.handler.DeletePost)
				r.Post("/like", router.handler.LikePost)
				r.Delete("/like", router.handler.UnlikePost)
				r.Get("/likes", router.handler.ListLikers)
				r.Get("/comments", router.handler.ListComments)
				r.Post("/comments", router.handler.CreateComment)
				r.Delete("/comments/{commentID}", router.handler.DeleteComment)
			})

			r.Get("/users/search", router.handler.SearchUsers)
			r.Route("/users/{userID}", func(r chi.Router) {
				r.Get("/", router.handler.GetProfile)
				r.Get("/posts", router.handler.UserPosts)
				r.Post("/follow", router.handler.Follow)
				r.Delete("/follow", router.handler.Unfollow)
				r.Get("/followers", router.handler.Followers)
				r.Get("/following", router.handler.Following)
			})
		})
	})

	return r
}
