// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// seedNode is one category of the development catalog.
type seedNode struct {
	name     string
	slug     string
	products int
	children []seedNode
}

var seedCatalog = []seedNode{
	{name: "Apparel", slug: "apparel", children: []seedNode{
		{name: "Men", slug: "men", children: []seedNode{
			{name: "Shirts", slug: "men-shirts", products: 24},
			{name: "Shoes", slug: "men-shoes", products: 12},
		}},
		{name: "Women", slug: "women", children: []seedNode{
			{name: "Dresses", slug: "dresses", products: 31},
			{name: "Shoes", slug: "women-shoes", products: 18},
		}},
	}},
	{name: "Electronics", slug: "electronics", children: []seedNode{
		{name: "Phones", slug: "phones", products: 9},
		{name: "Laptops", slug: "laptops", products: 7},
		{name: "Accessories", slug: "accessories"},
	}},
	{name: "Home & Garden", slug: "home-garden"},
}

// Seed populates the database with a small development catalog. It does
// nothing if any category exists already.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	inserted := 0
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var insert func(nodes []seedNode, parent *uuid.UUID) error
		insert = func(nodes []seedNode, parent *uuid.UUID) error {
			for i, n := range nodes {
				var id uuid.UUID
				err := tx.QueryRow(ctx, `
					INSERT INTO categories (name, slug, parent_id, sort_order, product_count, is_featured)
					VALUES ($1, $2, $3, $4, $5, $6)
					RETURNING id
				`, n.name, n.slug, parent, i, n.products, parent == nil).Scan(&id)
				if err != nil {
					return fmt.Errorf("seed insert %s: %w", n.slug, err)
				}
				inserted++
				if err := insert(n.children, &id); err != nil {
					return err
				}
			}
			return nil
		}
		return insert(seedCatalog, nil)
	})
	if err != nil {
		return err
	}

	slog.Info("database seeded with sample catalog", "categories", inserted)
	return nil
}
