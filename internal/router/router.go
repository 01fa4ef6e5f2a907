// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// catalog administration API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"catalogadmin/internal/handlers"
	"catalogadmin/internal/metrics"
	"catalogadmin/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(categories *handlers.Categories, m *metrics.Collector, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Instrument(m))
	r.Use(middleware.SecureHeaders)

	// Health check and metrics, not rate limited.
	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api/categories", func(r chi.Router) {
		r.Use(limiter.Middleware)

		// Hierarchy views
		r.Get("/tree", categories.Tree)
		r.Get("/flat", categories.Flat)
		r.Get("/children", categories.Children)
		r.Get("/breadcrumb/{id}", categories.Breadcrumb)

		// Slugs and audit
		r.Get("/slug-check", categories.SlugCheck)
		r.Get("/slug-suggest", categories.SlugSuggest)
		r.Get("/changes", categories.Changes)

		// Structure
		r.Patch("/reorder", categories.Reorder)

		// Categories
		r.Get("/", categories.List)
		r.Post("/", categories.Create)
		r.Get("/{id}", categories.Get)
		r.Patch("/{id}", categories.Update)
		r.Delete("/{id}", categories.Delete)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
