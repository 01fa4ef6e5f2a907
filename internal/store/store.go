// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists categories and their change log in PostgreSQL.
// Every store talks to the database through the DB interface, which a
// *pgxpool.Pool satisfies in production and pgxmock satisfies in tests.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"catalogadmin/internal/models"
)

// DB is the subset of *pgxpool.Pool the stores use.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querier is what both a pool and a transaction offer.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// structureLockKey identifies the advisory lock that serializes every
// mutation touching parent_id or sort_order.
const structureLockKey int64 = 0x63617467

// slugIndex is the unique index on LOWER(slug), created by the first migration.
const slugIndex = "idx_categories_slug_lower"

const sqlLockStructure = `SELECT pg_advisory_xact_lock($1)`

// lockStructure blocks until this transaction owns the structure lock. The
// lock is released automatically on commit or rollback.
func lockStructure(ctx context.Context, q querier) error {
	if _, err := q.Exec(ctx, sqlLockStructure, structureLockKey); err != nil {
		return fmt.Errorf("lock category structure: %w", err)
	}
	return nil
}

// inTx runs fn inside a transaction, committing when fn succeeds and
// rolling back otherwise.
func inTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// slugViolation converts a unique violation on the slug index, raised when
// a concurrent writer claimed the slug between check and write, into a
// SlugConflictError. Other errors pass through unchanged.
func slugViolation(err error, slug string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == slugIndex {
		return &models.SlugConflictError{Slug: slug}
	}
	return err
}
