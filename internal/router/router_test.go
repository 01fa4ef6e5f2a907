// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"catalogadmin/internal/catalog"
	"catalogadmin/internal/catalog/catalogtest"
	"catalogadmin/internal/handlers"
	"catalogadmin/internal/metrics"
	"catalogadmin/internal/middleware"
)

func newTestRouter(t *testing.T, limit int) chi.Router {
	t.Helper()
	views := &catalogtest.Views{}
	m := metrics.NewCollector()
	svc := catalog.NewService(&catalogtest.Repo{}, &catalogtest.Log{}, views, m, catalog.DefaultPaging)

	limiter := middleware.NewRateLimiter(limit, time.Minute)
	t.Cleanup(limiter.Stop)

	return New(handlers.NewCategories(svc, views, m), m, limiter)
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t, 100)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/api/categories/tree", http.StatusOK},
		{"GET", "/api/categories/flat", http.StatusOK},
		{"GET", "/api/categories/children", http.StatusOK},
		{"GET", "/api/categories/", http.StatusOK},
		{"GET", "/api/categories/changes", http.StatusOK},
		{"GET", "/api/categories/slug-check?slug=shoes", http.StatusOK},
		{"GET", "/api/categories/slug-suggest?base=Shoes", http.StatusOK},
		{"GET", "/api/categories/00000000-0000-0000-0000-000000000001", http.StatusNotFound},
		{"GET", "/api/categories/breadcrumb/00000000-0000-0000-0000-000000000001", http.StatusNotFound},
		{"DELETE", "/api/categories/00000000-0000-0000-0000-000000000001?policy=move-up", http.StatusNotFound},
		{"PUT", "/api/categories/tree", http.StatusMethodNotAllowed},
		{"GET", "/admin", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("status: got %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAPIResponsesCarrySecurityHeaders(t *testing.T) {
	r := newTestRouter(t, 100)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/categories/tree", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options: got %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control: got %q", got)
	}
}

func TestAPIIsRateLimited(t *testing.T) {
	r := newTestRouter(t, 1)

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/api/categories/tree", nil))
		if w.Code != want {
			t.Fatalf("request %d: got %d, want %d", i+1, w.Code, want)
		}
	}

	// Health checks sit outside the limited group.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health: got %d, want 200", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, 100)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/categories/tree", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, name := range []string{"catalog_http_requests_total", "catalog_view_cache_misses_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
