// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API of the category administration
// service. Handlers decode and validate requests, call the catalog service
// and map its errors onto status codes. Hierarchy views are served through
// the versioned view cache.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"catalogadmin/internal/cache"
	"catalogadmin/internal/catalog"
	"catalogadmin/internal/hierarchy"
	"catalogadmin/internal/metrics"
	"catalogadmin/internal/models"
)

// ViewCache stores encoded views under a catalog version.
// *cache.ViewCache implements it.
type ViewCache interface {
	Version(ctx context.Context) (int64, error)
	Get(ctx context.Context, view, params string) ([]byte, bool)
	Set(ctx context.Context, version int64, view, params string, body []byte)
}

// Categories groups the category API handlers.
type Categories struct {
	svc     *catalog.Service
	views   ViewCache
	metrics *metrics.Collector
}

// NewCategories creates the category handlers.
func NewCategories(svc *catalog.Service, views ViewCache, m *metrics.Collector) *Categories {
	return &Categories{svc: svc, views: views, metrics: m}
}

type categoryResponse struct {
	*models.Category
	Invalidate []string `json:"invalidate"`
}

type reorderResponse struct {
	Updated    int      `json:"updated"`
	Invalidate []string `json:"invalidate"`
}

type deleteResponse struct {
	*catalog.DeleteResult
	Invalidate []string `json:"invalidate"`
}

// --- Hierarchy views ---

// Tree serves GET /api/categories/tree?root=&hide_empty=.
func (h *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	root, err := queryID(q, "root")
	if err != nil {
		writeError(w, r, err)
		return
	}
	hideEmpty, err := queryBool(q, "hide_empty")
	if err != nil {
		writeError(w, r, err)
		return
	}

	params := url.Values{
		"root":       {idParam(root)},
		"hide_empty": {strconv.FormatBool(hideEmpty)},
	}
	h.serveView(w, r, cache.ViewTree, params, func(ctx context.Context) (any, error) {
		return h.svc.Tree(ctx, root, hideEmpty)
	})
}

// Flat serves GET /api/categories/flat?root=&expanded=&collapsed=.
// Without expanded every node is open unless listed in collapsed; with it,
// only the listed nodes are open.
func (h *Categories) Flat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	root, err := queryID(q, "root")
	if err != nil {
		writeError(w, r, err)
		return
	}
	expanded, err := queryIDs(q, "expanded")
	if err != nil {
		writeError(w, r, err)
		return
	}
	collapsed, err := queryIDs(q, "collapsed")
	if err != nil {
		writeError(w, r, err)
		return
	}

	onlyListed := q.Has("expanded")
	params := url.Values{
		"root":      {idParam(root)},
		"expanded":  {idsParam(expanded)},
		"collapsed": {idsParam(collapsed)},
		"only":      {strconv.FormatBool(onlyListed)},
	}
	h.serveView(w, r, cache.ViewFlat, params, func(ctx context.Context) (any, error) {
		state := hierarchy.AllExpanded()
		if onlyListed {
			state = hierarchy.OnlyExpanded(expanded...)
		}
		rows, err := h.svc.FlatList(ctx, root, state.Collapse(collapsed...))
		if err != nil {
			return nil, err
		}
		return map[string]any{"rows": rows}, nil
	})
}

// Children serves GET /api/categories/children?parent=&page=&page_size=.
func (h *Categories) Children(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	parent, err := queryID(q, "parent")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, size, err := paging(q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	params := url.Values{
		"parent":    {idParam(parent)},
		"page":      {strconv.Itoa(page)},
		"page_size": {strconv.Itoa(size)},
	}
	h.serveView(w, r, cache.ViewChildren, params, func(ctx context.Context) (any, error) {
		return h.svc.Children(ctx, parent, page, size)
	})
}

// Breadcrumb serves GET /api/categories/breadcrumb/{id}.
func (h *Categories) Breadcrumb(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	crumbs, err := h.svc.Breadcrumb(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"crumbs": crumbs})
}

// List serves GET /api/categories/?search=&status=&page=&page_size=.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, size, err := paging(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f := models.ListFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Status: models.Status(strings.TrimSpace(q.Get("status"))),
	}

	params := url.Values{
		"search":    {f.Search},
		"status":    {string(f.Status)},
		"page":      {strconv.Itoa(page)},
		"page_size": {strconv.Itoa(size)},
	}
	h.serveView(w, r, cache.ViewList, params, func(ctx context.Context) (any, error) {
		return h.svc.List(ctx, f, page, size)
	})
}

// Get serves GET /api/categories/{id}.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// --- Mutations ---

// Create serves POST /api/categories/.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, committed, err := h.svc.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{Category: c, Invalidate: stale(w, committed)})
}

// Update serves PATCH /api/categories/{id}. A parent_id moves the
// category; null moves it to the root level.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, committed, err := h.svc.Update(r.Context(), id, req.update())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{Category: c, Invalidate: stale(w, committed)})
}

// Reorder serves PATCH /api/categories/reorder.
func (h *Categories) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	b, committed, err := h.svc.Reorder(r.Context(), req.MovedID, req.TargetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reorderResponse{Updated: len(b.Updates), Invalidate: stale(w, committed)})
}

// Delete serves DELETE /api/categories/{id}?policy=delete-all|move-up.
// The policy is required.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	policy, err := hierarchy.ParseDeletePolicy(r.URL.Query().Get("policy"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, committed, err := h.svc.Delete(r.Context(), id, policy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{DeleteResult: res, Invalidate: stale(w, committed)})
}

// --- Slugs and audit ---

// SlugCheck serves GET /api/categories/slug-check?slug=&exclude_id=.
func (h *Categories) SlugCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	exclude, err := queryID(q, "exclude_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	check, err := h.svc.CheckSlug(r.Context(), q.Get("slug"), exclude)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

// SlugSuggest serves GET /api/categories/slug-suggest?base=&exclude_id=.
func (h *Categories) SlugSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	exclude, err := queryID(q, "exclude_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.svc.SuggestSlug(r.Context(), q.Get("base"), exclude)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"slug": s})
}

// Changes serves GET /api/categories/changes?limit=.
func (h *Categories) Changes(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query(), "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := h.svc.RecentChanges(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": entries})
}

// serveView answers a read from the view cache, or computes it with load
// and stores the encoded result under the version read before loading. A
// mutation that commits while load runs bumps the version, so that entry
// is never served. While a committed mutation has not reached the version
// the cache is bypassed in both directions.
func (h *Categories) serveView(w http.ResponseWriter, r *http.Request, view string, params url.Values, load func(context.Context) (any, error)) {
	ctx := r.Context()
	key := params.Encode()

	current := h.svc.ViewsCurrent(ctx)
	if current {
		if body, ok := h.views.Get(ctx, view, key); ok {
			h.metrics.CacheLookup(view, true)
			writeRaw(w, http.StatusOK, body)
			return
		}
	}
	h.metrics.CacheLookup(view, false)

	var (
		version int64
		verr    error
	)
	if current {
		version, verr = h.views.Version(ctx)
	}

	data, err := load(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := json.Marshal(data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch {
	case !current:
	case verr != nil:
		slog.Warn("view cache version unavailable", "view", view, "error", verr)
	default:
		h.views.Set(ctx, version, view, key, body)
	}
	writeRaw(w, http.StatusOK, body)
}

func paging(q url.Values) (page, size int, err error) {
	if page, err = queryInt(q, "page"); err != nil {
		return 0, 0, err
	}
	if size, err = queryInt(q, "page_size"); err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

// idParam renders an optional id for a cache key.
func idParam(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// idsParam renders an id set for a cache key, independent of order.
func idsParam(ids []uuid.UUID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = id.String()
	}
	slices.Sort(s)
	return strings.Join(slices.Compact(s), ",")
}
