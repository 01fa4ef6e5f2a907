// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node in the catalog hierarchy. Categories sharing the same
// ParentID form a sibling group ordered by SortOrder.
type Category struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description"`
	ParentID     *uuid.UUID `json:"parent_id"`
	SortOrder    int        `json:"order"`
	IsActive     bool       `json:"is_active"`
	IsFeatured   bool       `json:"is_featured"`
	ProductCount int        `json:"product_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Virtual field populated by store methods.
	ChildrenCount int `json:"children_count"`
}

// HasContent reports whether the category itself shows anything to
// shoppers: it must be active and have products filed under it.
func (c *Category) HasContent() bool {
	return c.IsActive && c.ProductCount > 0
}

// CategoryUpdate carries a partial update. Nil fields are left unchanged.
// ParentID is only honoured by the service, which routes it through the
// move planner; the store never writes parent or order from here.
type CategoryUpdate struct {
	Name         *string
	Slug         *string
	Description  *string
	IsActive     *bool
	IsFeatured   *bool
	ProductCount *int

	ParentID   *uuid.UUID
	MoveToRoot bool
}

// Empty reports whether the update changes no column.
func (u CategoryUpdate) Empty() bool {
	return u.Name == nil && u.Slug == nil && u.Description == nil &&
		u.IsActive == nil && u.IsFeatured == nil && u.ProductCount == nil
}

// Moves reports whether the update asks for a new parent.
func (u CategoryUpdate) Moves() bool {
	return u.ParentID != nil || u.MoveToRoot
}

// Status filters the flat category listing.
type Status string

const (
	StatusAll      Status = "all"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusFeatured Status = "featured"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAll, StatusActive, StatusInactive, StatusFeatured:
		return true
	}
	return false
}

// ListFilter narrows the flat, hierarchy-independent listing.
type ListFilter struct {
	Search string
	Status Status
}

// FolderRow is one entry of a folder-view level.
type FolderRow struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	IsActive        bool      `json:"is_active"`
	ChildrenCount   int       `json:"children_count"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"description_html,omitempty"`
}

// Crumb is one step of a breadcrumb path.
type Crumb struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// SlugCheck is the answer to a slug availability query.
type SlugCheck struct {
	Slug      string    `json:"slug"`
	Available bool      `json:"available"`
	Conflict  *Category `json:"conflict,omitempty"`
}
