// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalogtest provides in-memory stand-ins for the catalog service's
// collaborators, for use in tests.
package catalogtest

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"catalogadmin/internal/hierarchy"
	"catalogadmin/internal/models"
	"catalogadmin/internal/store"
)

// Repo is an in-memory catalog repository. Structural batches go through
// Batch.Apply, the same semantics the SQL store implements. Rows may be
// seeded or inspected directly between calls.
type Repo struct {
	mu   sync.Mutex
	Rows []models.Category

	// Err, when set, fails every call.
	Err error

	// WriteErr, when set, fails the column write of Update after any move
	// has been applied, as a unique violation from a concurrent writer
	// would. Nothing is kept.
	WriteErr error
}

func (m *Repo) find(id uuid.UUID) int {
	return slices.IndexFunc(m.Rows, func(c models.Category) bool { return c.ID == id })
}

func (m *Repo) owner(slug string, exclude *uuid.UUID) *models.Category {
	for _, c := range m.Rows {
		if strings.EqualFold(c.Slug, slug) && (exclude == nil || c.ID != *exclude) {
			cp := c
			return &cp
		}
	}
	return nil
}

// Group returns the sibling group under parent in display order.
func (m *Repo) Group(parent *uuid.UUID) []models.Category {
	var out []models.Category
	for _, c := range m.Rows {
		if sameParent(c.ParentID, parent) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b models.Category) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), strings.Compare(a.Name, b.Name))
	})
	return out
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *Repo) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	i := m.find(id)
	if i < 0 {
		return nil, models.ErrNotFound
	}
	c := m.Rows[i]
	return &c, nil
}

func (m *Repo) All(context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.Rows), nil
}

func (m *Repo) Create(_ context.Context, c *models.Category, explicitOrder bool) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if c.ParentID != nil && m.find(*c.ParentID) < 0 {
		return nil, models.ErrInvalidParent
	}
	if o := m.owner(c.Slug, nil); o != nil {
		return nil, &models.SlugConflictError{Slug: c.Slug, Conflict: o}
	}

	next := len(m.Group(c.ParentID))
	order := next
	if explicitOrder {
		order = min(max(c.SortOrder, 0), next)
		for i := range m.Rows {
			if sameParent(m.Rows[i].ParentID, c.ParentID) && m.Rows[i].SortOrder >= order {
				m.Rows[i].SortOrder++
			}
		}
	}

	created := *c
	created.ID = uuid.New()
	created.SortOrder = order
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.Rows = append(m.Rows, created)
	return &created, nil
}

func (m *Repo) Update(_ context.Context, id uuid.UUID, u models.CategoryUpdate, plan hierarchy.PlanFunc) (*models.Category, *hierarchy.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, nil, m.Err
	}
	if m.find(id) < 0 {
		return nil, nil, models.ErrNotFound
	}
	if u.Slug != nil {
		if o := m.owner(*u.Slug, &id); o != nil {
			return nil, nil, &models.SlugConflictError{Slug: *u.Slug, Conflict: o}
		}
	}

	// Work on a copy so a failure leaves Rows untouched.
	rows := make([]models.Category, len(m.Rows))
	copy(rows, m.Rows)
	var batch *hierarchy.Batch
	if plan != nil {
		b, err := plan(hierarchy.NewSnapshot(rows))
		if err != nil {
			return nil, nil, err
		}
		rows = b.Apply(rows)
		batch = b
	}

	if m.WriteErr != nil && !u.Empty() {
		return nil, nil, m.WriteErr
	}

	var c *models.Category
	for i := range rows {
		if rows[i].ID == id {
			c = &rows[i]
		}
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Slug != nil {
		c.Slug = *u.Slug
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
	if u.IsFeatured != nil {
		c.IsFeatured = *u.IsFeatured
	}
	if u.ProductCount != nil {
		c.ProductCount = *u.ProductCount
	}
	m.Rows = rows
	out := *c
	return &out, batch, nil
}

func (m *Repo) ListPage(_ context.Context, f models.ListFilter, limit, offset int) ([]models.Category, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	q := strings.ToLower(f.Search)
	var match []models.Category
	for _, c := range m.Rows {
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) && !strings.Contains(strings.ToLower(c.Slug), q) {
			continue
		}
		switch f.Status {
		case models.StatusActive:
			if !c.IsActive {
				continue
			}
		case models.StatusInactive:
			if c.IsActive {
				continue
			}
		case models.StatusFeatured:
			if !c.IsFeatured {
				continue
			}
		}
		match = append(match, c)
	}
	slices.SortFunc(match, func(a, b models.Category) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), strings.Compare(a.Name, b.Name))
	})
	return window(match, limit, offset), len(match), nil
}

func (m *Repo) Children(_ context.Context, parentID *uuid.UUID, limit, offset int) ([]models.FolderRow, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	level := m.Group(parentID)
	rows := []models.FolderRow{}
	for _, c := range window(level, limit, offset) {
		rows = append(rows, models.FolderRow{
			ID:            c.ID,
			Name:          c.Name,
			Slug:          c.Slug,
			IsActive:      c.IsActive,
			Description:   c.Description,
			ChildrenCount: len(m.Group(&c.ID)),
		})
	}
	return rows, len(level), nil
}

func (m *Repo) SlugOwner(_ context.Context, slug string, excludeID *uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.owner(slug, excludeID), nil
}

func (m *Repo) SlugsWithPrefix(_ context.Context, base string, excludeID *uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []string{}
	for _, c := range m.Rows {
		s := strings.ToLower(c.Slug)
		if strings.HasPrefix(s, strings.ToLower(base)) && (excludeID == nil || c.ID != *excludeID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Repo) Restructure(_ context.Context, plan hierarchy.PlanFunc) (*hierarchy.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	b, err := plan(hierarchy.NewSnapshot(m.Rows))
	if err != nil {
		return nil, err
	}
	m.Rows = b.Apply(m.Rows)
	return b, nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	return items[offset:min(offset+limit, len(items))]
}

// Log keeps change log entries in memory.
type Log struct {
	mu      sync.Mutex
	entries []store.ChangeLogEntry
}

func (r *Log) Log(_ context.Context, action string, id uuid.UUID, affected int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, store.ChangeLogEntry{
		ID:         int64(len(r.entries) + 1),
		Action:     action,
		CategoryID: id,
		Affected:   affected,
		LoggedAt:   time.Now(),
	})
}

func (r *Log) Recent(_ context.Context, limit int) ([]store.ChangeLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.entries)
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Actions lists the logged actions, oldest first.
func (r *Log) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

// Views is an in-memory versioned view cache.
type Views struct {
	mu      sync.Mutex
	version int64
	entries map[string][]byte

	// Sets counts successful Set calls.
	Sets int

	// InvalidateErr, when set, fails Invalidate without touching the
	// version or the stored entries.
	InvalidateErr error
}

func viewKey(version int64, view, params string) string {
	return strconv.FormatInt(version, 10) + ":" + view + ":" + params
}

func (v *Views) Version(context.Context) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version, nil
}

func (v *Views) Get(_ context.Context, view, params string) ([]byte, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	body, ok := v.entries[viewKey(v.version, view, params)]
	return body, ok
}

func (v *Views) Set(_ context.Context, version int64, view, params string, body []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.entries == nil {
		v.entries = make(map[string][]byte)
	}
	v.entries[viewKey(version, view, params)] = body
	v.Sets++
}

func (v *Views) Invalidate(context.Context) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.InvalidateErr != nil {
		return 0, v.InvalidateErr
	}
	v.version++
	clear(v.entries)
	return v.version, nil
}
