// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"fmt"

	"github.com/google/uuid"

	"catalogadmin/internal/models"
)

// DeletePolicy decides what happens to the descendants of a deleted category.
type DeletePolicy int

const (
	// DeleteAll removes the category and its whole subtree.
	DeleteAll DeletePolicy = iota + 1
	// MoveUp hands the category's children to its own parent.
	MoveUp
)

// String returns the wire name of the policy.
func (p DeletePolicy) String() string {
	switch p {
	case DeleteAll:
		return "delete-all"
	case MoveUp:
		return "move-up"
	}
	return fmt.Sprintf("DeletePolicy(%d)", int(p))
}

// ParseDeletePolicy maps a wire name onto a policy.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch s {
	case "delete-all":
		return DeleteAll, nil
	case "move-up":
		return MoveUp, nil
	}
	return 0, models.NewValidationError("policy", `must be "delete-all" or "move-up"`)
}

// PlanDeletion computes the batch that removes id under policy.
//
// DeleteAll lists the subtree leaves-first so no row is deleted while a
// child still points at it. MoveUp appends the children, in their current
// order, after the category's remaining siblings and renumbers that merged
// group before deleting the now childless category. In both cases the
// sibling group the category leaves ends up numbered 0..n-1.
func PlanDeletion(s *Snapshot, id uuid.UUID, policy DeletePolicy) (*Batch, error) {
	node, ok := s.Get(id)
	if !ok {
		return nil, models.ErrNotFound
	}

	b := &Batch{}
	remaining := without(s.Siblings(node.ParentID), id)

	switch policy {
	case DeleteAll:
		b.renumber(remaining, node.ParentID, nil)
		b.Deletes = s.Subtree(id)

	case MoveUp:
		children := s.Siblings(&id)
		adopt := make(map[uuid.UUID]bool, len(children))
		for _, c := range children {
			adopt[c.ID] = true
		}
		b.renumber(append(remaining, children...), node.ParentID, adopt)
		b.Deletes = []uuid.UUID{id}

	default:
		return nil, models.NewValidationError("policy", fmt.Sprintf("unknown policy %s", policy))
	}
	return b, nil
}
