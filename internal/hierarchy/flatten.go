// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"github.com/google/uuid"

	"catalogadmin/internal/models"
)

// ExpandState is the caller's expand/collapse choice per node. Nodes without
// an explicit entry use the default. It lives with the caller and is never
// stored server-side.
type ExpandState struct {
	explicit map[uuid.UUID]bool
	def      bool
}

// AllExpanded returns a state in which every node is expanded unless
// collapsed explicitly.
func AllExpanded() *ExpandState {
	return &ExpandState{explicit: make(map[uuid.UUID]bool), def: true}
}

// OnlyExpanded returns a state in which exactly the given nodes are expanded.
func OnlyExpanded(ids ...uuid.UUID) *ExpandState {
	e := &ExpandState{explicit: make(map[uuid.UUID]bool, len(ids))}
	for _, id := range ids {
		e.set(id, true)
	}
	return e
}

// Collapse marks ids as collapsed. On a nil state it starts from
// AllExpanded, so the result is always the state to keep using.
func (e *ExpandState) Collapse(ids ...uuid.UUID) *ExpandState {
	if e == nil {
		e = AllExpanded()
	}
	for _, id := range ids {
		e.set(id, false)
	}
	return e
}

// Toggle flips the expand state of a single node. A nil state has nowhere
// to record the choice, so Toggle leaves it expanding everything.
func (e *ExpandState) Toggle(id uuid.UUID) {
	if e == nil {
		return
	}
	e.set(id, !e.IsExpanded(id))
}

func (e *ExpandState) set(id uuid.UUID, expanded bool) {
	if e.explicit == nil {
		e.explicit = make(map[uuid.UUID]bool)
	}
	e.explicit[id] = expanded
}

// IsExpanded reports whether the node's children are shown. A nil state
// expands everything.
func (e *ExpandState) IsExpanded(id uuid.UUID) bool {
	if e == nil {
		return true
	}
	if v, ok := e.explicit[id]; ok {
		return v
	}
	return e.def
}

// Flatten walks the forest depth-first, pre-order, emitting a node's
// children right after it only when the node is expanded. Depth counts from
// the nodes passed in, which are depth 0.
func Flatten(nodes []*models.TreeNode, state *ExpandState) []models.FlatRow {
	rows := []models.FlatRow{}
	var walk func([]*models.TreeNode, int)
	walk = func(level []*models.TreeNode, depth int) {
		for _, n := range level {
			expanded := state.IsExpanded(n.ID)
			rows = append(rows, models.FlatRow{
				ID:          n.ID,
				Name:        n.Name,
				Slug:        n.Slug,
				ParentID:    cloneID(n.ParentID),
				Depth:       depth,
				SortOrder:   n.SortOrder,
				IsActive:    n.IsActive,
				IsExpanded:  expanded,
				HasChildren: len(n.Children) > 0,
			})
			if expanded {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(nodes, 0)
	return rows
}
