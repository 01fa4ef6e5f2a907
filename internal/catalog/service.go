// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog orchestrates the category hierarchy: it reads committed
// rows from the store, derives trees, flat lists and folder pages from them,
// routes structural mutations through the planners, and signals every
// committed change to the view cache and the change log.
package catalog

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"catalogadmin/internal/hierarchy"
	"catalogadmin/internal/metrics"
	"catalogadmin/internal/models"
	"catalogadmin/internal/store"
)

// Repository is the persistence the service needs. *store.CategoryStore
// implements it.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	All(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category, explicitOrder bool) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, u models.CategoryUpdate, plan hierarchy.PlanFunc) (*models.Category, *hierarchy.Batch, error)
	ListPage(ctx context.Context, f models.ListFilter, limit, offset int) ([]models.Category, int, error)
	Children(ctx context.Context, parentID *uuid.UUID, limit, offset int) ([]models.FolderRow, int, error)
	SlugOwner(ctx context.Context, slug string, excludeID *uuid.UUID) (*models.Category, error)
	SlugsWithPrefix(ctx context.Context, base string, excludeID *uuid.UUID) ([]string, error)
	Restructure(ctx context.Context, plan hierarchy.PlanFunc) (*hierarchy.Batch, error)
}

// ChangeLog records committed mutations. *store.ChangeLogStore implements it.
type ChangeLog interface {
	Log(ctx context.Context, action string, categoryID uuid.UUID, affected int)
	Recent(ctx context.Context, limit int) ([]store.ChangeLogEntry, error)
}

// Invalidator retires cached views and returns the new catalog version.
// *cache.ViewCache implements it.
type Invalidator interface {
	Invalidate(ctx context.Context) (int64, error)
}

// Paging bounds the page sizes of the folder view and the flat listing.
type Paging struct {
	Default int
	Max     int
}

// DefaultPaging is used when NewService gets a zero Paging.
var DefaultPaging = Paging{Default: 20, Max: 100}

// Service is the entry point for every category read and mutation.
type Service struct {
	repo    Repository
	changes ChangeLog
	views   Invalidator
	metrics *metrics.Collector
	paging  Paging

	// viewsStale is set while a committed mutation has not reached the
	// view cache version.
	viewsStale atomic.Bool
}

// NewService wires the service to its collaborators.
func NewService(repo Repository, changes ChangeLog, views Invalidator, m *metrics.Collector, paging Paging) *Service {
	if paging.Default < 1 || paging.Max < paging.Default {
		paging = DefaultPaging
	}
	return &Service{repo: repo, changes: changes, views: views, metrics: m, paging: paging}
}

// Committed describes the effect of a successful mutation. Version is the
// catalog version after invalidation; it is 0 when nothing changed or the
// cache could not be reached. In the latter case cached views are bypassed
// until a later bump succeeds, see ViewsCurrent.
type Committed struct {
	Version  int64
	Affected int
}

// Changed reports whether the mutation wrote anything.
func (c Committed) Changed() bool {
	return c.Affected > 0
}

// commit records a successful mutation and signals it.
func (s *Service) commit(ctx context.Context, action string, id uuid.UUID, affected int) Committed {
	s.metrics.Mutation(action, nil)
	return s.signal(ctx, action, id, affected)
}

// signal runs after rows have been committed to Postgres: it writes the
// change log and bumps the view cache version. Neither can undo the
// mutation, so a failed bump marks the cached views stale instead.
func (s *Service) signal(ctx context.Context, action string, id uuid.UUID, affected int) Committed {
	if affected == 0 {
		return Committed{}
	}

	s.changes.Log(ctx, action, id, affected)

	version, err := s.views.Invalidate(ctx)
	if err != nil {
		slog.Warn("view cache invalidation failed", "action", action, "category_id", id, "error", err)
		s.viewsStale.Store(true)
		return Committed{Affected: affected}
	}
	s.viewsStale.Store(false)
	return Committed{Version: version, Affected: affected}
}

// ViewsCurrent reports whether cached views may be served. After a failed
// invalidation it retries the bump on every call and returns false until
// one succeeds, so readers compute views from Postgres in the meantime.
func (s *Service) ViewsCurrent(ctx context.Context) bool {
	if !s.viewsStale.Load() {
		return true
	}
	if _, err := s.views.Invalidate(ctx); err != nil {
		return false
	}
	s.viewsStale.Store(false)
	slog.Info("view cache invalidation recovered")
	return true
}

// fail records a failed mutation and passes the error through.
func (s *Service) fail(action string, err error) error {
	s.metrics.Mutation(action, err)
	return err
}

// restructure applies a planner and records the rows it wrote.
func (s *Service) restructure(ctx context.Context, plan hierarchy.PlanFunc) (*hierarchy.Batch, error) {
	b, err := s.repo.Restructure(ctx, plan)
	if err != nil {
		return nil, err
	}
	s.recordBatch(b)
	return b, nil
}

func (s *Service) recordBatch(b *hierarchy.Batch) {
	if b == nil {
		return
	}
	s.metrics.Batch(len(b.Updates), len(b.Deletes), b.Reparented())
}

// RecentChanges returns the newest change log entries. limit is clamped to
// the listing bounds.
func (s *Service) RecentChanges(ctx context.Context, limit int) ([]store.ChangeLogEntry, error) {
	_, limit = s.page(1, limit)
	return s.changes.Recent(ctx, limit)
}

// page normalizes paging input: page starts at 1, size falls back to the
// default and is capped at the maximum.
func (s *Service) page(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = s.paging.Default
	}
	return page, min(size, s.paging.Max)
}
