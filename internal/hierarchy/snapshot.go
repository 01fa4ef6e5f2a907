// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package hierarchy holds the pure algorithms over the category tree:
// building a nested tree from flat rows, projecting a tree into a
// depth-annotated list, and planning reorder, move, and delete batches.
//
// Nothing here touches the database. Every function works on an immutable
// Snapshot of committed rows and returns values the store applies in a
// single transaction.
package hierarchy

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"catalogadmin/internal/models"
)

// Snapshot is a read-only, indexed view of every category row.
type Snapshot struct {
	byID     map[uuid.UUID]*models.Category
	children map[uuid.UUID][]*models.Category // parent ID (uuid.Nil for roots) → sorted children
	size     int
}

// NewSnapshot indexes rows. The slice is copied; later changes to rows do
// not leak into the snapshot.
func NewSnapshot(rows []models.Category) *Snapshot {
	s := &Snapshot{
		byID:     make(map[uuid.UUID]*models.Category, len(rows)),
		children: make(map[uuid.UUID][]*models.Category),
		size:     len(rows),
	}

	own := make([]models.Category, len(rows))
	copy(own, rows)
	for i := range own {
		c := &own[i]
		s.byID[c.ID] = c
		key := parentKey(c.ParentID)
		s.children[key] = append(s.children[key], c)
	}
	for _, group := range s.children {
		sortSiblings(group)
	}
	return s
}

// Len returns the number of rows in the snapshot.
func (s *Snapshot) Len() int { return s.size }

// Get returns the category with the given ID.
func (s *Snapshot) Get(id uuid.UUID) (*models.Category, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// Siblings returns the complete sibling group under parent in display
// order. The returned slice is a fresh copy the caller may modify.
func (s *Snapshot) Siblings(parent *uuid.UUID) []*models.Category {
	return slices.Clone(s.children[parentKey(parent)])
}

// IsDescendant reports whether node lies strictly below ancestor. The walk
// is bounded by the snapshot size so corrupt data cannot loop forever.
func (s *Snapshot) IsDescendant(node, ancestor uuid.UUID) bool {
	cur, ok := s.byID[node]
	for steps := 0; ok && cur.ParentID != nil && steps <= s.size; steps++ {
		if *cur.ParentID == ancestor {
			return true
		}
		cur, ok = s.byID[*cur.ParentID]
	}
	return false
}

// Ancestors returns the path from the root down to id, inclusive.
func (s *Snapshot) Ancestors(id uuid.UUID) []*models.Category {
	var path []*models.Category
	cur, ok := s.byID[id]
	for steps := 0; ok && steps <= s.size; steps++ {
		path = append(path, cur)
		if cur.ParentID == nil {
			break
		}
		cur, ok = s.byID[*cur.ParentID]
	}
	slices.Reverse(path)
	return path
}

// Subtree returns id and all of its descendants in post-order, so every
// node appears after all of its children.
func (s *Snapshot) Subtree(id uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	seen := make(map[uuid.UUID]bool)

	var walk func(uuid.UUID)
	walk = func(n uuid.UUID) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, child := range s.children[n] {
			walk(child.ID)
		}
		out = append(out, n)
	}
	if _, ok := s.byID[id]; ok {
		walk(id)
	}
	return out
}

// parentKey maps a nullable parent to a map key; roots share uuid.Nil.
func parentKey(p *uuid.UUID) uuid.UUID {
	if p == nil {
		return uuid.Nil
	}
	return *p
}

// sortSiblings orders a sibling group by SortOrder, then Name, then ID so
// ties are deterministic.
func sortSiblings(group []*models.Category) {
	slices.SortStableFunc(group, func(a, b *models.Category) int {
		if a.SortOrder != b.SortOrder {
			return a.SortOrder - b.SortOrder
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
