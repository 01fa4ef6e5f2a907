// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/google/uuid"

	"catalogadmin/internal/models"
)

func TestPlanReorder_WithinGroup(t *testing.T) {
	tests := []struct {
		name           string
		moved, target  string
		wantA          []string
		wantUpdateSize int
	}{
		{"A2 onto A1", "A2", "A1", []string{"A2", "A1"}, 2},
		{"A1 onto A2", "A1", "A2", []string{"A2", "A1"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := scenario()
			b, err := PlanReorder(f.snapshot(), f.id(tt.moved), f.id(tt.target))
			if err != nil {
				t.Fatalf("PlanReorder: %v", err)
			}
			if len(b.Updates) != tt.wantUpdateSize {
				t.Errorf("updates: got %d, want %d", len(b.Updates), tt.wantUpdateSize)
			}
			if len(b.Deletes) != 0 {
				t.Errorf("reorder must not delete, got %v", b.Deletes)
			}

			rows := b.Apply(f.rows)
			if got := childNames(f, rows, ptr(f.id("A"))); !slices.Equal(got, tt.wantA) {
				t.Errorf("A children: got %v, want %v", got, tt.wantA)
			}
			assertContiguous(t, rows)
		})
	}
}

func TestPlanReorder_Splice(t *testing.T) {
	f := newFixture().
		add("A", "", 0).
		add("B", "", 1).
		add("C", "", 2).
		add("D", "", 3)

	tests := []struct {
		moved, target string
		want          []string
	}{
		{"A", "C", []string{"B", "C", "A", "D"}},
		{"D", "B", []string{"A", "D", "B", "C"}},
		{"A", "D", []string{"B", "C", "D", "A"}},
		{"D", "A", []string{"D", "A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.moved+"->"+tt.target, func(t *testing.T) {
			b, err := PlanReorder(f.snapshot(), f.id(tt.moved), f.id(tt.target))
			if err != nil {
				t.Fatalf("PlanReorder: %v", err)
			}
			rows := b.Apply(f.rows)
			if got := childNames(f, rows, nil); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			assertContiguous(t, rows)
		})
	}
}

func TestPlanReorder_AcrossParents(t *testing.T) {
	f := scenario()
	b, err := PlanReorder(f.snapshot(), f.id("B"), f.id("A1"))
	if err != nil {
		t.Fatalf("PlanReorder: %v", err)
	}
	if b.Reparented() != 1 {
		t.Errorf("Reparented: got %d, want 1", b.Reparented())
	}

	rows := b.Apply(f.rows)
	if got := childNames(f, rows, ptr(f.id("A"))); !slices.Equal(got, []string{"B", "A1", "A2"}) {
		t.Errorf("A children: got %v", got)
	}
	if got := childNames(f, rows, ptr(f.id("Root"))); !slices.Equal(got, []string{"A"}) {
		t.Errorf("Root children: got %v", got)
	}
	assertContiguous(t, rows)
	assertAcyclic(t, rows)
}

func TestPlanReorder_Errors(t *testing.T) {
	f := scenario()

	tests := []struct {
		name          string
		moved, target uuid.UUID
		want          error
	}{
		{"onto own child", f.id("A"), f.id("A1"), models.ErrCycleRejected},
		{"onto grandchild", f.id("Root"), f.id("A2"), models.ErrCycleRejected},
		{"unknown target", f.id("A"), uuid.New(), models.ErrTargetNotFound},
		{"unknown moved", uuid.New(), f.id("A"), models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := PlanReorder(f.snapshot(), tt.moved, tt.target)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if b != nil {
				t.Errorf("a rejected plan must not return a batch")
			}
		})
	}
}

func TestPlanReorder_SameNode(t *testing.T) {
	f := scenario()
	b, err := PlanReorder(f.snapshot(), f.id("A"), f.id("A"))
	if err != nil {
		t.Fatalf("PlanReorder: %v", err)
	}
	if !b.Empty() {
		t.Errorf("dropping a node on itself should be a no-op, got %+v", b)
	}
}

// Random reorders must keep every sibling group contiguous and the parent
// graph acyclic, and must reject exactly the drops that would create a cycle.
func TestPlanReorder_Properties(t *testing.T) {
	f := scenario().
		add("B1", "B", 0).
		add("B2", "B", 1).
		add("B1a", "B1", 0).
		add("C", "", 1).
		add("C1", "C", 0)

	labels := make([]string, 0, len(f.ids))
	for n := range f.ids {
		labels = append(labels, n)
	}
	slices.Sort(labels)

	rng := rand.New(rand.NewSource(42))
	rows := f.rows
	for i := 0; i < 500; i++ {
		moved := f.id(labels[rng.Intn(len(labels))])
		target := f.id(labels[rng.Intn(len(labels))])

		snap := NewSnapshot(rows)
		b, err := PlanReorder(snap, moved, target)
		if errors.Is(err, models.ErrCycleRejected) {
			tc, _ := snap.Get(target)
			if tc.ParentID == nil || (*tc.ParentID != moved && !snap.IsDescendant(*tc.ParentID, moved)) {
				t.Fatalf("step %d: rejected a safe drop of %s onto %s", i, f.nameOf(moved), f.nameOf(target))
			}
			continue
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}

		rows = b.Apply(rows)
		assertContiguous(t, rows)
		assertAcyclic(t, rows)

		if moved != target {
			after := NewSnapshot(rows)
			mc, _ := after.Get(moved)
			tc, _ := after.Get(target)
			if !sameParent(mc.ParentID, tc.ParentID) {
				t.Fatalf("step %d: moved node did not join the target's group", i)
			}
		}
	}
}

func TestPlanMove(t *testing.T) {
	f := scenario()
	b, err := PlanMove(f.snapshot(), f.id("A1"), ptr(f.id("B")))
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}

	rows := b.Apply(f.rows)
	if got := childNames(f, rows, ptr(f.id("B"))); !slices.Equal(got, []string{"A1"}) {
		t.Errorf("B children: got %v", got)
	}
	if got := childNames(f, rows, ptr(f.id("A"))); !slices.Equal(got, []string{"A2"}) {
		t.Errorf("A children: got %v", got)
	}
	assertContiguous(t, rows)
}

func TestPlanMove_ToRoot(t *testing.T) {
	f := scenario()
	b, err := PlanMove(f.snapshot(), f.id("A2"), nil)
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}

	rows := b.Apply(f.rows)
	if got := childNames(f, rows, nil); !slices.Equal(got, []string{"Root", "A2"}) {
		t.Errorf("roots: got %v", got)
	}
	assertContiguous(t, rows)
}

func TestPlanMove_Rejects(t *testing.T) {
	f := scenario()

	tests := []struct {
		name   string
		id     uuid.UUID
		parent *uuid.UUID
		want   error
	}{
		{"under itself", f.id("A"), ptr(f.id("A")), models.ErrCycleRejected},
		{"under descendant", f.id("Root"), ptr(f.id("A1")), models.ErrCycleRejected},
		{"missing parent", f.id("A"), ptr(uuid.New()), models.ErrInvalidParent},
		{"missing node", uuid.New(), nil, models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PlanMove(f.snapshot(), tt.id, tt.parent); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPlanMove_SameParent(t *testing.T) {
	f := scenario()
	b, err := PlanMove(f.snapshot(), f.id("A1"), ptr(f.id("A")))
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}
	if !b.Empty() {
		t.Errorf("expected no-op, got %+v", b)
	}
}
