// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// change_log.go records committed catalog mutations in the database for
// audit and debugging purposes. Each entry captures which category was
// touched, how, and how many rows the mutation affected.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Change log actions.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionMove    = "move"
	ActionReorder = "reorder"
	ActionDelete  = "delete"
)

// ChangeLogStore handles category change log operations.
type ChangeLogStore struct {
	db DB
}

// NewChangeLogStore creates a new ChangeLogStore.
func NewChangeLogStore(db DB) *ChangeLogStore {
	return &ChangeLogStore{db: db}
}

const (
	sqlInsertChange = `INSERT INTO category_change_log (action, category_id, affected)
		VALUES ($1, $2, $3)`

	sqlRecentChanges = `SELECT id, action, category_id, affected, logged_at
		FROM category_change_log
		ORDER BY logged_at DESC, id DESC
		LIMIT $1`
)

// Log records a committed mutation. Logging is best-effort: a failure is
// reported through slog and never reaches the caller.
func (s *ChangeLogStore) Log(ctx context.Context, action string, categoryID uuid.UUID, affected int) {
	_, err := s.db.Exec(ctx, sqlInsertChange, action, categoryID, affected)
	if err != nil {
		slog.Warn("failed to log category change",
			"action", action,
			"category_id", categoryID,
			"affected", affected,
			"error", err,
		)
		return
	}
	slog.Debug("category change logged",
		"action", action,
		"category_id", categoryID,
		"affected", affected,
	)
}

// Recent returns the most recent change log entries, newest first.
func (s *ChangeLogStore) Recent(ctx context.Context, limit int) ([]ChangeLogEntry, error) {
	rows, err := s.db.Query(ctx, sqlRecentChanges, limit)
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	entries := []ChangeLogEntry{}
	for rows.Next() {
		var e ChangeLogEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.CategoryID, &e.Affected, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("scan change log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ChangeLogEntry represents a single committed mutation.
type ChangeLogEntry struct {
	ID         int64     `json:"id"`
	Action     string    `json:"action"`
	CategoryID uuid.UUID `json:"category_id"`
	Affected   int       `json:"affected"`
	LoggedAt   time.Time `json:"logged_at"`
}
