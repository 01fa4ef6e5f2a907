// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"slices"

	"github.com/google/uuid"

	"catalogadmin/internal/models"
)

// PlanReorder places movedID next to targetID: the moved node adopts the
// target's parent and takes the target's index in that sibling group, with
// the rest of the group shifting around it (splice, not swap). The whole
// group is renumbered 0..n-1. If the node changed parent, the group it left
// is compacted as well.
//
// The sibling group always comes from the snapshot, never from whatever
// subset a client happened to be displaying.
func PlanReorder(s *Snapshot, movedID, targetID uuid.UUID) (*Batch, error) {
	if movedID == targetID {
		return &Batch{}, nil
	}

	target, ok := s.Get(targetID)
	if !ok {
		return nil, models.ErrTargetNotFound
	}
	moved, ok := s.Get(movedID)
	if !ok {
		return nil, models.ErrNotFound
	}

	newParent := target.ParentID
	if err := checkParent(s, movedID, newParent); err != nil {
		return nil, err
	}

	original := s.Siblings(newParent)
	at := indexOf(original, targetID)

	seq := without(original, movedID)
	if at > len(seq) {
		at = len(seq)
	}
	seq = slices.Insert(seq, at, moved)

	b := &Batch{}
	b.renumber(seq, newParent, map[uuid.UUID]bool{movedID: true})
	if !sameParent(moved.ParentID, newParent) {
		b.renumber(without(s.Siblings(moved.ParentID), movedID), moved.ParentID, nil)
	}
	return b, nil
}

// PlanMove re-parents id under newParent (nil for root), appending it to the
// end of the new sibling group and compacting the group it left. Moving a
// node to the parent it already has is a no-op.
func PlanMove(s *Snapshot, id uuid.UUID, newParent *uuid.UUID) (*Batch, error) {
	node, ok := s.Get(id)
	if !ok {
		return nil, models.ErrNotFound
	}
	if err := checkParent(s, id, newParent); err != nil {
		return nil, err
	}
	if sameParent(node.ParentID, newParent) {
		return &Batch{}, nil
	}

	group := append(s.Siblings(newParent), node)

	b := &Batch{}
	b.renumber(group, newParent, map[uuid.UUID]bool{id: true})
	b.renumber(without(s.Siblings(node.ParentID), id), node.ParentID, nil)
	return b, nil
}

// checkParent rejects a parent that does not exist or that is the node
// itself or one of its descendants.
func checkParent(s *Snapshot, id uuid.UUID, parent *uuid.UUID) error {
	if parent == nil {
		return nil
	}
	if _, ok := s.Get(*parent); !ok {
		return models.ErrInvalidParent
	}
	if *parent == id || s.IsDescendant(*parent, id) {
		return models.ErrCycleRejected
	}
	return nil
}
