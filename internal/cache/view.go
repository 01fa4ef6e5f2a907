// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// view.go provides a Valkey-backed cache for serialized category views
// (tree, flat list, folder level, listing page).
//
// Every entry key embeds the catalog version, a counter that each committed
// mutation increments. Bumping the version makes every older entry
// unreachable at once; the old keys are swept right after the bump or
// simply expire.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// versionKey holds the current catalog version.
	versionKey = "catalog:version"

	// viewKeyPrefix is the Valkey key prefix for cached views.
	viewKeyPrefix = "catalog:view:"

	// DefaultViewTTL is how long a serialized view stays cached.
	DefaultViewTTL = 5 * time.Minute
)

// View names, also sent to clients as the list of views to refetch.
const (
	ViewTree     = "tree"
	ViewFlat     = "flat"
	ViewChildren = "children"
	ViewList     = "list"
)

// AllViews lists every cached view. A mutation invalidates all of them.
var AllViews = []string{ViewTree, ViewFlat, ViewChildren, ViewList}

// ViewCache manages versioned view caching in Valkey.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViewCache creates a new view cache backed by the given Valkey client.
func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	if ttl == 0 {
		ttl = DefaultViewTTL
	}
	return &ViewCache{client: client, ttl: ttl}
}

// Version returns the current catalog version. A catalog that was never
// mutated is at version 0.
func (vc *ViewCache) Version(ctx context.Context) (int64, error) {
	v, err := vc.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// viewKey builds the key for a view at a given version. params must be a
// canonical encoding of the view's inputs.
func viewKey(version int64, view, params string) string {
	return viewKeyPrefix + strconv.FormatInt(version, 10) + ":" + view + ":" + params
}

// Get retrieves a cached view at the current version. Valkey errors count
// as misses.
func (vc *ViewCache) Get(ctx context.Context, view, params string) ([]byte, bool) {
	version, err := vc.Version(ctx)
	if err != nil {
		slog.Warn("view cache version error", "error", err)
		return nil, false
	}

	val, err := vc.client.Get(ctx, viewKey(version, view, params)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("view cache get error", "view", view, "error", err)
		return nil, false
	}
	slog.Debug("view cache hit", "view", view, "version", version)
	return val, true
}

// Set stores a view computed at version. If the catalog has moved on in the
// meantime the entry is written under the old version and is never read.
func (vc *ViewCache) Set(ctx context.Context, version int64, view, params string, body []byte) {
	if err := vc.client.Set(ctx, viewKey(version, view, params), body, vc.ttl).Err(); err != nil {
		slog.Warn("view cache set error", "view", view, "error", err)
	}
}

// Invalidate bumps the catalog version, which retires every cached view,
// and returns the new version. Entries of older versions are then deleted.
func (vc *ViewCache) Invalidate(ctx context.Context) (int64, error) {
	version, err := vc.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return 0, err
	}
	vc.sweep(ctx, version)
	slog.Debug("view cache invalidated", "version", version)
	return version, nil
}

// sweep removes cached views older than version by scanning for the prefix.
func (vc *ViewCache) sweep(ctx context.Context, version int64) {
	var cursor uint64
	var deleted int
	current := viewKeyPrefix + strconv.FormatInt(version, 10) + ":"
	for {
		keys, nextCursor, err := vc.client.Scan(ctx, cursor, viewKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("view cache scan error", "error", err)
			return
		}
		stale := keys[:0]
		for _, k := range keys {
			if !strings.HasPrefix(k, current) {
				stale = append(stale, k)
			}
		}
		if len(stale) > 0 {
			if err := vc.client.Del(ctx, stale...).Err(); err != nil {
				slog.Warn("view cache bulk delete error", "error", err)
			}
			deleted += len(stale)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("view cache swept", "deleted", deleted)
	}
}
