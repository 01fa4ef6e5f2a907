// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"catalogadmin/internal/hierarchy"
	"catalogadmin/internal/markdown"
	"catalogadmin/internal/models"
)

// Tree is the nested view of the catalog.
type Tree struct {
	Nodes    []*models.TreeNode           `json:"nodes"`
	Warnings []hierarchy.IntegrityWarning `json:"warnings"`
}

// FolderPage is one page of one level of the folder view.
type FolderPage struct {
	Items      []models.FolderRow `json:"items"`
	TotalCount int                `json:"total_count"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}

// ListPage is one page of the flat, hierarchy-independent listing.
type ListPage struct {
	Items      []models.Category `json:"items"`
	TotalCount int               `json:"total_count"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
}

// Get returns a single category.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.repo.FindByID(ctx, id)
}

// Tree builds the nested tree below root (nil for the whole catalog) from
// committed rows. With hideEmpty, branches without any active category that
// has products are dropped. Rows that could not be attached under their
// parent are still returned, as roots, and reported as warnings. Warnings
// are logged and counted each time the tree is computed; a cached tree
// replays them in its body only.
func (s *Service) Tree(ctx context.Context, root *uuid.UUID, hideEmpty bool) (*Tree, error) {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if root != nil && !contains(rows, *root) {
		return nil, models.ErrNotFound
	}

	nodes, warnings := hierarchy.Build(rows, root)
	for _, w := range warnings {
		slog.Warn("category hierarchy integrity",
			"kind", w.Kind,
			"category_id", w.CategoryID,
			"parent_id", w.ParentID,
			"message", w.Message,
		)
		s.metrics.IntegrityWarning(w.Kind)
	}
	if warnings == nil {
		warnings = []hierarchy.IntegrityWarning{}
	}

	if hideEmpty {
		nodes = hierarchy.Prune(nodes)
	}
	return &Tree{Nodes: nodes, Warnings: warnings}, nil
}

// FlatList projects the tree below root into depth-annotated rows, showing
// children only of expanded nodes.
func (s *Service) FlatList(ctx context.Context, root *uuid.UUID, state *hierarchy.ExpandState) ([]models.FlatRow, error) {
	tree, err := s.Tree(ctx, root, false)
	if err != nil {
		return nil, err
	}
	return hierarchy.Flatten(tree.Nodes, state), nil
}

// Children returns one page of the level below parentID (nil for the
// roots), ordered by sort order then name, with descriptions rendered to
// HTML.
func (s *Service) Children(ctx context.Context, parentID *uuid.UUID, page, size int) (*FolderPage, error) {
	if parentID != nil {
		if _, err := s.repo.FindByID(ctx, *parentID); err != nil {
			return nil, err
		}
	}

	page, size = s.page(page, size)
	items, total, err := s.repo.Children(ctx, parentID, size, (page-1)*size)
	if err != nil {
		return nil, err
	}

	for i := range items {
		html, err := markdown.ToHTML(items[i].Description)
		if err != nil {
			slog.Warn("render category description", "category_id", items[i].ID, "error", err)
			continue
		}
		items[i].DescriptionHTML = html
	}
	return &FolderPage{Items: items, TotalCount: total, Page: page, PageSize: size}, nil
}

// Breadcrumb returns the root-first path to id, id included.
func (s *Service) Breadcrumb(ctx context.Context, id uuid.UUID) ([]models.Crumb, error) {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	snap := hierarchy.NewSnapshot(rows)
	if _, ok := snap.Get(id); !ok {
		return nil, models.ErrNotFound
	}

	path := snap.Ancestors(id)
	crumbs := make([]models.Crumb, 0, len(path))
	for _, c := range path {
		crumbs = append(crumbs, models.Crumb{ID: c.ID, Name: c.Name})
	}
	return crumbs, nil
}

// List returns one page of the flat listing filtered by search text and
// status. An empty status means all.
func (s *Service) List(ctx context.Context, f models.ListFilter, page, size int) (*ListPage, error) {
	if f.Status == "" {
		f.Status = models.StatusAll
	}
	if !f.Status.Valid() {
		return nil, models.NewValidationError("status", "must be one of all, active, inactive, featured")
	}

	page, size = s.page(page, size)
	items, total, err := s.repo.ListPage(ctx, f, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	return &ListPage{Items: items, TotalCount: total, Page: page, PageSize: size}, nil
}

func contains(rows []models.Category, id uuid.UUID) bool {
	for i := range rows {
		if rows[i].ID == id {
			return true
		}
	}
	return false
}
