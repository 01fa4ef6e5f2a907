// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"catalogadmin/internal/hierarchy"
	"catalogadmin/internal/models"
)

// testTree creates a private root with a uniquely slugged subtree and
// removes it when the test finishes.
func testTree(t *testing.T, s *CategoryStore) (root *models.Category, slugPrefix string) {
	t.Helper()
	ctx := context.Background()
	slugPrefix = "it-" + uuid.NewString()[:8]

	root, err := s.Create(ctx, &models.Category{Name: "Root " + slugPrefix, Slug: slugPrefix, IsActive: true}, false)
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	t.Cleanup(func() {
		_, err := s.Restructure(context.Background(), func(snap *hierarchy.Snapshot) (*hierarchy.Batch, error) {
			return hierarchy.PlanDeletion(snap, root.ID, hierarchy.DeleteAll)
		})
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			t.Errorf("cleanup: %v", err)
		}
	})
	return root, slugPrefix
}

func TestCategoryStoreCreateAndRead(t *testing.T) {
	s := NewCategoryStore(testPool(t))
	ctx := context.Background()
	root, prefix := testTree(t, s)

	a, err := s.Create(ctx, &models.Category{Name: "A", Slug: prefix + "-a", ParentID: &root.ID}, false)
	if err != nil {
		t.Fatalf("create A: %v", err)
	}
	b, err := s.Create(ctx, &models.Category{Name: "B", Slug: prefix + "-b", ParentID: &root.ID}, false)
	if err != nil {
		t.Fatalf("create B: %v", err)
	}
	if a.SortOrder != 0 || b.SortOrder != 1 {
		t.Errorf("orders: got A=%d B=%d, want 0 and 1", a.SortOrder, b.SortOrder)
	}

	// Explicit position 0 pushes the others down.
	first, err := s.Create(ctx, &models.Category{Name: "First", Slug: prefix + "-first", ParentID: &root.ID, SortOrder: 0}, true)
	if err != nil {
		t.Fatalf("create First: %v", err)
	}
	if first.SortOrder != 0 {
		t.Errorf("First order: got %d, want 0", first.SortOrder)
	}

	items, total, err := s.Children(ctx, &root.ID, 10, 0)
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("children: got %d (total %d), want 3", len(items), total)
	}
	if items[0].Name != "First" || items[1].Name != "A" || items[2].Name != "B" {
		t.Errorf("children order: got %s, %s, %s", items[0].Name, items[1].Name, items[2].Name)
	}

	got, err := s.FindByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.SortOrder != 1 {
		t.Errorf("A order after insert at 0: got %d, want 1", got.SortOrder)
	}
}

func TestCategoryStoreDuplicateSlugIsCaseInsensitive(t *testing.T) {
	s := NewCategoryStore(testPool(t))
	ctx := context.Background()
	root, prefix := testTree(t, s)

	_, err := s.Create(ctx, &models.Category{Name: "Dup", Slug: prefix + "-DUP", ParentID: &root.ID}, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = s.Create(ctx, &models.Category{Name: "Dup 2", Slug: prefix + "-dup", ParentID: &root.ID}, false)
	if !errors.Is(err, models.ErrDuplicateSlug) {
		t.Fatalf("got %v, want ErrDuplicateSlug", err)
	}
}

func TestCategoryStoreRejectsMissingParent(t *testing.T) {
	s := NewCategoryStore(testPool(t))
	missing := uuid.New()

	_, err := s.Create(context.Background(), &models.Category{Name: "X", Slug: "it-missing-" + missing.String()[:8], ParentID: &missing}, false)
	if !errors.Is(err, models.ErrInvalidParent) {
		t.Fatalf("got %v, want ErrInvalidParent", err)
	}
}

// Concurrent reorders inside one group must serialize and leave the group
// numbered 0..n-1.
func TestCategoryStoreConcurrentReorders(t *testing.T) {
	s := NewCategoryStore(testPool(t))
	ctx := context.Background()
	root, prefix := testTree(t, s)

	var ids []uuid.UUID
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		c, err := s.Create(ctx, &models.Category{Name: name, Slug: prefix + "-" + name, ParentID: &root.ID}, false)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, c.ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for i := range ids {
		wg.Add(1)
		go func(moved, target uuid.UUID) {
			defer wg.Done()
			_, err := s.Restructure(ctx, func(snap *hierarchy.Snapshot) (*hierarchy.Batch, error) {
				return hierarchy.PlanReorder(snap, moved, target)
			})
			errs <- err
		}(ids[i], ids[(i+2)%len(ids)])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("reorder: %v", err)
		}
	}

	items, _, err := s.Children(ctx, &root.ID, 10, 0)
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	seen := make(map[int]bool)
	for _, it := range items {
		c, err := s.FindByID(ctx, it.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		seen[c.SortOrder] = true
	}
	for i := range ids {
		if !seen[i] {
			t.Errorf("order %d missing after concurrent reorders", i)
		}
	}
}

func TestCategoryStoreMoveUpDeletion(t *testing.T) {
	s := NewCategoryStore(testPool(t))
	ctx := context.Background()
	root, prefix := testTree(t, s)

	a, _ := s.Create(ctx, &models.Category{Name: "A", Slug: prefix + "-a", ParentID: &root.ID}, false)
	_, _ = s.Create(ctx, &models.Category{Name: "B", Slug: prefix + "-b", ParentID: &root.ID}, false)
	_, _ = s.Create(ctx, &models.Category{Name: "A1", Slug: prefix + "-a1", ParentID: &a.ID}, false)
	_, _ = s.Create(ctx, &models.Category{Name: "A2", Slug: prefix + "-a2", ParentID: &a.ID}, false)

	b, err := s.Restructure(ctx, func(snap *hierarchy.Snapshot) (*hierarchy.Batch, error) {
		return hierarchy.PlanDeletion(snap, a.ID, hierarchy.MoveUp)
	})
	if err != nil {
		t.Fatalf("Restructure: %v", err)
	}
	if b.Reparented() != 2 || len(b.Deletes) != 1 {
		t.Errorf("batch: reparented=%d deleted=%d", b.Reparented(), len(b.Deletes))
	}

	items, _, err := s.Children(ctx, &root.ID, 10, 0)
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	var got []string
	for _, it := range items {
		got = append(got, it.Name)
	}
	if len(got) != 3 || got[0] != "B" || got[1] != "A1" || got[2] != "A2" {
		t.Errorf("Root children: got %v, want [B A1 A2]", got)
	}
}
