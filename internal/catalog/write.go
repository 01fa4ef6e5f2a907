// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"catalogadmin/internal/hierarchy"
	"catalogadmin/internal/models"
	"catalogadmin/internal/slug"
	"catalogadmin/internal/store"
)

// CreateInput describes a new category. An empty Slug is derived from the
// name, with a numeric suffix when the plain form is taken. A nil SortOrder
// appends the category to its sibling group.
type CreateInput struct {
	Name         string
	Slug         string
	Description  string
	ParentID     *uuid.UUID
	SortOrder    *int
	IsActive     bool
	IsFeatured   bool
	ProductCount int
}

// DeleteResult counts what a deletion touched.
type DeleteResult struct {
	Deleted    int `json:"deleted"`
	Reparented int `json:"reparented"`
	Affected   int `json:"affected_count"`
}

// Create validates and inserts a category.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Category, Committed, error) {
	fe := fieldErrors{}
	c := &models.Category{
		Name:         cleanName(fe, in.Name),
		Description:  in.Description,
		ParentID:     in.ParentID,
		IsActive:     in.IsActive,
		IsFeatured:   in.IsFeatured,
		ProductCount: in.ProductCount,
	}
	checkDescription(fe, in.Description)
	checkProductCount(fe, in.ProductCount)
	if in.SortOrder != nil {
		if *in.SortOrder < 0 {
			fe.add("order", "must not be negative")
		}
		c.SortOrder = *in.SortOrder
	}

	generated := in.Slug == ""
	if generated {
		c.Slug = slug.Generate(c.Name)
		if c.Slug == "" && c.Name != "" {
			fe.add("slug", "cannot be derived from the name; provide one")
		}
	} else {
		c.Slug = cleanSlug(fe, in.Slug)
	}
	if err := fe.err(); err != nil {
		return nil, Committed{}, s.fail(store.ActionCreate, err)
	}

	if generated {
		free, err := s.SuggestSlug(ctx, c.Slug, nil)
		if err != nil {
			return nil, Committed{}, s.fail(store.ActionCreate, err)
		}
		c.Slug = free
	}

	created, err := s.repo.Create(ctx, c, in.SortOrder != nil)
	if err != nil {
		return nil, Committed{}, s.fail(store.ActionCreate, err)
	}
	return created, s.commit(ctx, store.ActionCreate, created.ID, 1), nil
}

// Update changes the fields present in u. A new parent is applied through
// the move planner, which appends the category to its new sibling group.
// The move and the field writes commit together or not at all; a missing
// category is reported before a taken slug.
func (s *Service) Update(ctx context.Context, id uuid.UUID, u models.CategoryUpdate) (*models.Category, Committed, error) {
	action := store.ActionUpdate
	if u.Moves() {
		action = store.ActionMove
	}

	fe := fieldErrors{}
	if u.Name != nil {
		name := cleanName(fe, *u.Name)
		u.Name = &name
	}
	if u.Slug != nil {
		sl := cleanSlug(fe, *u.Slug)
		u.Slug = &sl
	}
	if u.Description != nil {
		checkDescription(fe, *u.Description)
	}
	if u.ProductCount != nil {
		checkProductCount(fe, *u.ProductCount)
	}
	if err := fe.err(); err != nil {
		return nil, Committed{}, s.fail(action, err)
	}

	var plan hierarchy.PlanFunc
	if u.Moves() {
		parent := u.ParentID
		if u.MoveToRoot {
			parent = nil
		}
		plan = func(snap *hierarchy.Snapshot) (*hierarchy.Batch, error) {
			return hierarchy.PlanMove(snap, id, parent)
		}
	}

	c, b, err := s.repo.Update(ctx, id, u, plan)
	if err != nil {
		return nil, Committed{}, s.fail(action, err)
	}
	s.recordBatch(b)

	affected := 0
	if b != nil {
		affected = len(b.Updates)
	}
	if !u.Empty() {
		affected = max(affected, 1)
	}
	return c, s.commit(ctx, action, id, affected), nil
}

// Reorder drops movedID onto targetID: the moved category takes the
// target's parent and position and the sibling group is renumbered.
func (s *Service) Reorder(ctx context.Context, movedID, targetID uuid.UUID) (*hierarchy.Batch, Committed, error) {
	b, err := s.restructure(ctx, func(snap *hierarchy.Snapshot) (*hierarchy.Batch, error) {
		return hierarchy.PlanReorder(snap, movedID, targetID)
	})
	if err != nil {
		return nil, Committed{}, s.fail(store.ActionReorder, err)
	}
	return b, s.commit(ctx, store.ActionReorder, movedID, len(b.Updates)), nil
}

// Delete removes id under policy. DeleteAll removes the whole subtree;
// MoveUp hands the children to id's parent first.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, policy hierarchy.DeletePolicy) (*DeleteResult, Committed, error) {
	b, err := s.restructure(ctx, func(snap *hierarchy.Snapshot) (*hierarchy.Batch, error) {
		return hierarchy.PlanDeletion(snap, id, policy)
	})
	if err != nil {
		return nil, Committed{}, s.fail(store.ActionDelete, err)
	}

	res := &DeleteResult{Deleted: len(b.Deletes), Reparented: b.Reparented()}
	res.Affected = res.Deleted + res.Reparented
	return res, s.commit(ctx, store.ActionDelete, id, res.Affected), nil
}

// IsClientError reports whether err is one the caller can fix by changing
// its input, as opposed to a storage failure.
func IsClientError(err error) bool {
	for _, target := range []error{
		models.ErrDuplicateSlug,
		models.ErrInvalidParent,
		models.ErrNotFound,
		models.ErrTargetNotFound,
		models.ErrCycleRejected,
		models.ErrValidationFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
