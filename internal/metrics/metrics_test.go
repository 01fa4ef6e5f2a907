// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value reads the current value of a counter.
func value(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector()
	b := NewCollector()

	a.Mutation("create", nil)

	assert.Equal(t, 1.0, value(t, a.Mutations.WithLabelValues("create", "ok")))
	assert.Equal(t, 0.0, value(t, b.Mutations.WithLabelValues("create", "ok")))
}

func TestMutationOutcome(t *testing.T) {
	c := NewCollector()
	c.Mutation("reorder", nil)
	c.Mutation("reorder", errors.New("boom"))
	c.Mutation("reorder", errors.New("boom"))

	assert.Equal(t, 1.0, value(t, c.Mutations.WithLabelValues("reorder", "ok")))
	assert.Equal(t, 2.0, value(t, c.Mutations.WithLabelValues("reorder", "error")))
}

func TestBatchAndCache(t *testing.T) {
	c := NewCollector()
	c.Batch(3, 2, 1)
	c.CacheLookup("tree", true)
	c.CacheLookup("tree", false)
	c.CacheLookup("tree", false)
	c.IntegrityWarning("orphan")

	assert.Equal(t, 3.0, value(t, c.BatchRows.WithLabelValues("updated")))
	assert.Equal(t, 2.0, value(t, c.BatchRows.WithLabelValues("deleted")))
	assert.Equal(t, 1.0, value(t, c.BatchRows.WithLabelValues("reparented")))
	assert.Equal(t, 1.0, value(t, c.CacheHits.WithLabelValues("tree")))
	assert.Equal(t, 2.0, value(t, c.CacheMisses.WithLabelValues("tree")))
	assert.Equal(t, 1.0, value(t, c.IntegrityWarnings.WithLabelValues("orphan")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	c.Mutation("delete", nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), `catalog_mutations_total{action="delete",outcome="ok"} 1`))
}
