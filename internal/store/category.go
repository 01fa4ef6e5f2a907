// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"catalogadmin/internal/hierarchy"
	"catalogadmin/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, sort_order, is_active, is_featured, product_count, created_at, updated_at`

const (
	sqlFindByID = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	sqlAll = `SELECT ` + categoryColumns + ` FROM categories ORDER BY sort_order, name`

	sqlParentExists = `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`

	sqlSlugOwner = `SELECT ` + categoryColumns + ` FROM categories
		WHERE LOWER(slug) = LOWER($1) AND ($2::uuid IS NULL OR id <> $2)
		LIMIT 1`

	sqlSlugsWithPrefix = `SELECT LOWER(slug) FROM categories
		WHERE LOWER(slug) LIKE LOWER($1) || '%' AND ($2::uuid IS NULL OR id <> $2)`

	sqlNextSortOrder = `SELECT COALESCE(MAX(sort_order) + 1, 0) FROM categories
		WHERE parent_id IS NOT DISTINCT FROM $1`

	sqlShiftSiblings = `UPDATE categories SET sort_order = sort_order + 1, updated_at = NOW()
		WHERE parent_id IS NOT DISTINCT FROM $1 AND sort_order >= $2`

	sqlInsertCategory = `INSERT INTO categories
		(name, slug, description, parent_id, sort_order, is_active, is_featured, product_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + categoryColumns

	sqlCountChildren = `SELECT COUNT(*) FROM categories WHERE parent_id IS NOT DISTINCT FROM $1`

	sqlChildren = `SELECT c.id, c.name, c.slug, c.is_active, c.description,
		       (SELECT COUNT(*) FROM categories k WHERE k.parent_id = c.id) AS children_count
		FROM categories c
		WHERE c.parent_id IS NOT DISTINCT FROM $1
		ORDER BY c.sort_order, c.name
		LIMIT $2 OFFSET $3`

	sqlSetOrder = `UPDATE categories SET sort_order = $2, updated_at = NOW() WHERE id = $1`

	sqlSetParentAndOrder = `UPDATE categories SET parent_id = $2, sort_order = $3, updated_at = NOW() WHERE id = $1`

	sqlDeleteCategory = `DELETE FROM categories WHERE id = $1`
)

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.ParentID, &c.SortOrder, &c.IsActive, &c.IsFeatured,
		&c.ProductCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByID retrieves a category by ID. Returns models.ErrNotFound on a miss.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return findByID(ctx, s.db, id)
}

func findByID(ctx context.Context, q querier, id uuid.UUID) (*models.Category, error) {
	c, err := scanCategory(q.QueryRow(ctx, sqlFindByID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// All returns every category row. Tree reads build on top of it.
func (s *CategoryStore) All(ctx context.Context) ([]models.Category, error) {
	return loadAll(ctx, s.db)
}

func loadAll(ctx context.Context, q querier) ([]models.Category, error) {
	rows, err := q.Query(ctx, sqlAll)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Create inserts a new category under its parent and returns the stored row.
//
// Without explicitOrder the category goes to the end of its sibling group.
// With explicitOrder, c.SortOrder is clamped to the group and every sibling
// at or after it moves down by one. The whole thing runs under the
// structure lock so two creates cannot pick the same position.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category, explicitOrder bool) (*models.Category, error) {
	var created *models.Category
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockStructure(ctx, tx); err != nil {
			return err
		}

		if c.ParentID != nil {
			var exists bool
			if err := tx.QueryRow(ctx, sqlParentExists, *c.ParentID).Scan(&exists); err != nil {
				return fmt.Errorf("check parent: %w", err)
			}
			if !exists {
				return models.ErrInvalidParent
			}
		}

		owner, err := slugOwner(ctx, tx, c.Slug, nil)
		if err != nil {
			return err
		}
		if owner != nil {
			return &models.SlugConflictError{Slug: c.Slug, Conflict: owner}
		}

		var next int
		if err := tx.QueryRow(ctx, sqlNextSortOrder, c.ParentID).Scan(&next); err != nil {
			return fmt.Errorf("next sort order: %w", err)
		}
		order := next
		if explicitOrder {
			order = min(max(c.SortOrder, 0), next)
			if order < next {
				if _, err := tx.Exec(ctx, sqlShiftSiblings, c.ParentID, order); err != nil {
					return fmt.Errorf("shift siblings: %w", err)
				}
			}
		}

		created, err = scanCategory(tx.QueryRow(ctx, sqlInsertCategory,
			c.Name, c.Slug, c.Description, c.ParentID, order,
			c.IsActive, c.IsFeatured, c.ProductCount,
		))
		if err != nil {
			return fmt.Errorf("create category: %w", slugViolation(err, c.Slug))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies a partial update of the non-structural columns and, when
// plan is non-nil, the move batch it produces, all in one transaction. The
// row must exist before the slug is checked. A move takes the structure lock
// and plans against a snapshot read under it, so a slug conflict or a failed
// column write rolls the move back too. Planner errors are returned
// unwrapped. The batch is nil when plan is nil.
func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, u models.CategoryUpdate, plan hierarchy.PlanFunc) (*models.Category, *hierarchy.Batch, error) {
	if u.Empty() && plan == nil {
		c, err := s.FindByID(ctx, id)
		return c, nil, err
	}

	var (
		out   *models.Category
		batch *hierarchy.Batch
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if plan != nil {
			if err := lockStructure(ctx, tx); err != nil {
				return err
			}
		}

		current, err := findByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if u.Slug != nil {
			owner, err := slugOwner(ctx, tx, *u.Slug, &id)
			if err != nil {
				return err
			}
			if owner != nil {
				return &models.SlugConflictError{Slug: *u.Slug, Conflict: owner}
			}
		}

		if plan != nil {
			rows, err := loadAll(ctx, tx)
			if err != nil {
				return err
			}
			b, err := plan(hierarchy.NewSnapshot(rows))
			if err != nil {
				return err
			}
			if err := applyBatch(ctx, tx, b); err != nil {
				return err
			}
			batch = b
		}

		switch {
		case !u.Empty():
			query, args := updateQuery(id, u)
			c, err := scanCategory(tx.QueryRow(ctx, query, args...))
			if errors.Is(err, pgx.ErrNoRows) {
				return models.ErrNotFound
			}
			if err != nil {
				slug := ""
				if u.Slug != nil {
					slug = *u.Slug
				}
				return fmt.Errorf("update category: %w", slugViolation(err, slug))
			}
			out = c
		case !batch.Empty():
			c, err := findByID(ctx, tx, id)
			if err != nil {
				return err
			}
			out = c
		default:
			out = current
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, batch, nil
}

// updateQuery builds the UPDATE for the fields present in u.
func updateQuery(id uuid.UUID, u models.CategoryUpdate) (string, []any) {
	var sets []string
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Slug != nil {
		add("slug", *u.Slug)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}
	if u.IsFeatured != nil {
		add("is_featured", *u.IsFeatured)
	}
	if u.ProductCount != nil {
		add("product_count", *u.ProductCount)
	}
	sets = append(sets, "updated_at = NOW()")

	return `UPDATE categories SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + categoryColumns, args
}

// ListPage returns one page of the flat listing plus the total number of
// matching rows. Order is sort_order, then name; hierarchy is ignored.
func (s *CategoryStore) ListPage(ctx context.Context, f models.ListFilter, limit, offset int) ([]models.Category, int, error) {
	where, args := listWhere(f)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	n := len(args)
	query := `SELECT ` + categoryColumns + ` FROM categories` + where +
		` ORDER BY sort_order, name LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := s.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories page: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, total, rows.Err()
}

// listWhere builds the WHERE clause of the flat listing.
func listWhere(f models.ListFilter) (string, []any) {
	var conds []string
	var args []any

	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(q))+"%")
		p := "$" + strconv.Itoa(len(args))
		conds = append(conds, "(LOWER(name) LIKE "+p+" OR LOWER(slug) LIKE "+p+")")
	}

	switch f.Status {
	case models.StatusActive:
		conds = append(conds, "is_active")
	case models.StatusInactive:
		conds = append(conds, "NOT is_active")
	case models.StatusFeatured:
		conds = append(conds, "is_featured")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Children returns one level of the folder view plus the size of that level.
// A nil parent lists the roots.
func (s *CategoryStore) Children(ctx context.Context, parentID *uuid.UUID, limit, offset int) ([]models.FolderRow, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, sqlCountChildren, parentID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count children: %w", err)
	}

	rows, err := s.db.Query(ctx, sqlChildren, parentID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	items := []models.FolderRow{}
	for rows.Next() {
		var r models.FolderRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Slug, &r.IsActive, &r.Description, &r.ChildrenCount); err != nil {
			return nil, 0, fmt.Errorf("scan child: %w", err)
		}
		items = append(items, r)
	}
	return items, total, rows.Err()
}

// SlugOwner returns the category that owns slug case-insensitively, ignoring
// excludeID. Returns nil if the slug is free.
func (s *CategoryStore) SlugOwner(ctx context.Context, slug string, excludeID *uuid.UUID) (*models.Category, error) {
	return slugOwner(ctx, s.db, slug, excludeID)
}

func slugOwner(ctx context.Context, q querier, slug string, excludeID *uuid.UUID) (*models.Category, error) {
	c, err := scanCategory(q.QueryRow(ctx, sqlSlugOwner, slug, excludeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find slug owner: %w", err)
	}
	return c, nil
}

// SlugsWithPrefix returns every lowercased slug starting with base, ignoring
// excludeID. The suggestion search runs against this set.
func (s *CategoryStore) SlugsWithPrefix(ctx context.Context, base string, excludeID *uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(ctx, sqlSlugsWithPrefix, escapeLike(base), excludeID)
	if err != nil {
		return nil, fmt.Errorf("list slugs: %w", err)
	}
	defer rows.Close()

	slugs := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan slug: %w", err)
		}
		slugs = append(slugs, v)
	}
	return slugs, rows.Err()
}

// Restructure runs a planner against a snapshot read inside a transaction
// holding the structure lock, applies the resulting batch (updates first,
// then deletes in order) and commits. Either every write lands or none do.
// Planner errors abort the transaction and are returned unwrapped.
func (s *CategoryStore) Restructure(ctx context.Context, plan hierarchy.PlanFunc) (*hierarchy.Batch, error) {
	var batch *hierarchy.Batch
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockStructure(ctx, tx); err != nil {
			return err
		}

		rows, err := loadAll(ctx, tx)
		if err != nil {
			return err
		}

		b, err := plan(hierarchy.NewSnapshot(rows))
		if err != nil {
			return err
		}
		if err := applyBatch(ctx, tx, b); err != nil {
			return err
		}
		batch = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func applyBatch(ctx context.Context, tx pgx.Tx, b *hierarchy.Batch) error {
	if b.Empty() {
		return nil
	}
	for _, u := range b.Updates {
		var err error
		if u.SetParent {
			_, err = tx.Exec(ctx, sqlSetParentAndOrder, u.ID, u.ParentID, u.SortOrder)
		} else {
			_, err = tx.Exec(ctx, sqlSetOrder, u.ID, u.SortOrder)
		}
		if err != nil {
			return fmt.Errorf("apply update %s: %w", u.ID, err)
		}
	}
	for _, id := range b.Deletes {
		if _, err := tx.Exec(ctx, sqlDeleteCategory, id); err != nil {
			return fmt.Errorf("delete category %s: %w", id, err)
		}
	}
	return nil
}
