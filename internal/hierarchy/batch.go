// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"github.com/google/uuid"

	"catalogadmin/internal/models"
)

// Update is one row write in a batch. ParentID is only written when
// SetParent is true; SortOrder is always written.
type Update struct {
	ID        uuid.UUID  `json:"id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	SetParent bool       `json:"set_parent"`
	SortOrder int        `json:"order"`
}

// Batch is the unit of work produced by a planner. The store applies every
// update, then every delete in slice order, inside one transaction.
type Batch struct {
	Updates []Update    `json:"updates"`
	Deletes []uuid.UUID `json:"deletes"`
}

// PlanFunc computes a batch from a consistent snapshot.
type PlanFunc func(*Snapshot) (*Batch, error)

// Empty reports whether applying the batch would change nothing.
func (b *Batch) Empty() bool {
	return b == nil || (len(b.Updates) == 0 && len(b.Deletes) == 0)
}

// Reparented counts rows whose parent the batch rewrites.
func (b *Batch) Reparented() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, u := range b.Updates {
		if u.SetParent {
			n++
		}
	}
	return n
}

// Apply returns a copy of rows with the batch applied. The store does the
// same thing in SQL; this is what the tests and in-memory callers use.
func (b *Batch) Apply(rows []models.Category) []models.Category {
	if b.Empty() {
		out := make([]models.Category, len(rows))
		copy(out, rows)
		return out
	}

	updates := make(map[uuid.UUID]Update, len(b.Updates))
	for _, u := range b.Updates {
		updates[u.ID] = u
	}
	deleted := make(map[uuid.UUID]bool, len(b.Deletes))
	for _, id := range b.Deletes {
		deleted[id] = true
	}

	out := make([]models.Category, 0, len(rows))
	for _, c := range rows {
		if deleted[c.ID] {
			continue
		}
		if u, ok := updates[c.ID]; ok {
			c.SortOrder = u.SortOrder
			if u.SetParent {
				c.ParentID = u.ParentID
			}
		}
		out = append(out, c)
	}
	return out
}

// renumber assigns order = index across group. Members listed in adopt get
// their parent rewritten to parent; everyone else is only written when the
// order actually changes.
func (b *Batch) renumber(group []*models.Category, parent *uuid.UUID, adopt map[uuid.UUID]bool) {
	for i, c := range group {
		switch {
		case adopt[c.ID]:
			b.Updates = append(b.Updates, Update{
				ID:        c.ID,
				ParentID:  cloneID(parent),
				SetParent: true,
				SortOrder: i,
			})
		case c.SortOrder != i:
			b.Updates = append(b.Updates, Update{ID: c.ID, SortOrder: i})
		}
	}
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// without returns group minus the category with the given ID.
func without(group []*models.Category, id uuid.UUID) []*models.Category {
	out := group[:0:0]
	for _, c := range group {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func indexOf(group []*models.Category, id uuid.UUID) int {
	for i, c := range group {
		if c.ID == id {
			return i
		}
	}
	return -1
}
