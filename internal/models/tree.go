// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// TreeNode is a category with its children attached. Children is never nil.
type TreeNode struct {
	Category

	Children          []*TreeNode `json:"children"`
	Depth             int         `json:"depth"`
	HasChildren       bool        `json:"has_children"`
	DescendantCount   int         `json:"descendant_count"`
	DescendantsActive bool        `json:"descendants_active"`
}

// FlatRow is one line of a flattened, depth-annotated tree.
type FlatRow struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Depth       int        `json:"depth"`
	SortOrder   int        `json:"order"`
	IsActive    bool       `json:"is_active"`
	IsExpanded  bool       `json:"is_expanded"`
	HasChildren bool       `json:"has_children"`
}
