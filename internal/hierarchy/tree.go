// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"fmt"

	"github.com/google/uuid"

	"catalogadmin/internal/models"
)

// Integrity warning kinds.
const (
	WarningOrphan = "orphan"
	WarningCycle  = "cycle"
)

// IntegrityWarning flags a row that could not be placed under its declared
// parent. The row is still part of the tree, promoted to a root.
type IntegrityWarning struct {
	Kind       string     `json:"kind"`
	CategoryID uuid.UUID  `json:"category_id"`
	ParentID   *uuid.UUID `json:"parent_id"`
	Message    string     `json:"message"`
}

// Build assembles the nested tree below rootParentID (nil for the whole
// catalog). Rows are grouped by parent in one pass and each node is attached
// exactly once in a second pass. Sibling order is SortOrder, then Name.
//
// When building the whole catalog, rows whose parent does not exist and rows
// caught in a parent cycle are promoted to roots and reported as warnings.
func Build(rows []models.Category, rootParentID *uuid.UUID) ([]*models.TreeNode, []IntegrityWarning) {
	snap := NewSnapshot(rows)

	b := &builder{snap: snap, placed: make(map[uuid.UUID]bool, len(rows))}
	if rootParentID != nil {
		return b.level(*rootParentID, 0), nil
	}

	var roots []*models.TreeNode
	var promoted []*models.Category
	for _, c := range snap.Siblings(nil) {
		roots = append(roots, b.node(c, 0))
	}

	// Orphans: the declared parent is missing from the snapshot.
	for _, c := range snap.byID {
		if c.ParentID == nil {
			continue
		}
		if _, ok := snap.byID[*c.ParentID]; !ok {
			promoted = append(promoted, c)
		}
	}
	sortSiblings(promoted)
	for _, c := range promoted {
		b.warn(WarningOrphan, c, fmt.Sprintf("parent %s of category %q does not exist", *c.ParentID, c.Name))
		roots = append(roots, b.node(c, 0))
	}

	// Anything still unplaced is only reachable through a parent cycle.
	var cyclic []*models.Category
	for _, c := range snap.byID {
		if !b.placed[c.ID] {
			cyclic = append(cyclic, c)
		}
	}
	sortSiblings(cyclic)
	for _, c := range cyclic {
		if b.placed[c.ID] {
			continue
		}
		b.warn(WarningCycle, c, fmt.Sprintf("category %q is part of a parent cycle", c.Name))
		roots = append(roots, b.node(c, 0))
	}

	if roots == nil {
		roots = []*models.TreeNode{}
	}
	return roots, b.warnings
}

type builder struct {
	snap     *Snapshot
	placed   map[uuid.UUID]bool
	warnings []IntegrityWarning
}

func (b *builder) level(parent uuid.UUID, depth int) []*models.TreeNode {
	nodes := []*models.TreeNode{}
	for _, c := range b.snap.children[parent] {
		if b.placed[c.ID] {
			continue
		}
		nodes = append(nodes, b.node(c, depth))
	}
	return nodes
}

func (b *builder) node(c *models.Category, depth int) *models.TreeNode {
	b.placed[c.ID] = true

	n := &models.TreeNode{Category: *c, Depth: depth}
	n.Children = b.level(c.ID, depth+1)
	n.ChildrenCount = len(n.Children)
	n.HasChildren = n.ChildrenCount > 0
	n.DescendantsActive = c.HasContent()
	for _, child := range n.Children {
		n.DescendantCount += child.DescendantCount + 1
		n.DescendantsActive = n.DescendantsActive || child.DescendantsActive
	}
	return n
}

func (b *builder) warn(kind string, c *models.Category, msg string) {
	b.warnings = append(b.warnings, IntegrityWarning{
		Kind:       kind,
		CategoryID: c.ID,
		ParentID:   cloneID(c.ParentID),
		Message:    msg,
	})
}

// Prune returns a copy of the forest without branches that show nothing:
// every kept node has DescendantsActive set.
func Prune(nodes []*models.TreeNode) []*models.TreeNode {
	out := []*models.TreeNode{}
	for _, n := range nodes {
		if !n.DescendantsActive {
			continue
		}
		cp := *n
		cp.Children = Prune(n.Children)
		out = append(out, &cp)
	}
	return out
}

// FromFlat rebuilds a nested forest from flattened rows. Rows must be in
// pre-order with depths that step down by at most one level at a time and
// parent IDs that match the enclosing row.
func FromFlat(rows []models.FlatRow) ([]*models.TreeNode, error) {
	roots := []*models.TreeNode{}
	var stack []*models.TreeNode

	for i, r := range rows {
		if r.Depth < 0 || r.Depth > len(stack) {
			return nil, fmt.Errorf("row %d (%s): depth %d after depth %d", i, r.ID, r.Depth, len(stack)-1)
		}
		stack = stack[:r.Depth]

		n := &models.TreeNode{
			Category: models.Category{
				ID:        r.ID,
				Name:      r.Name,
				Slug:      r.Slug,
				ParentID:  cloneID(r.ParentID),
				SortOrder: r.SortOrder,
				IsActive:  r.IsActive,
			},
			Children:    []*models.TreeNode{},
			Depth:       r.Depth,
			HasChildren: r.HasChildren,
		}

		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			parent := stack[len(stack)-1]
			if r.ParentID == nil || *r.ParentID != parent.ID {
				return nil, fmt.Errorf("row %d (%s): parent does not match enclosing row %s", i, r.ID, parent.ID)
			}
			parent.Children = append(parent.Children, n)
			parent.ChildrenCount = len(parent.Children)
		}
		stack = append(stack, n)
	}
	return roots, nil
}
