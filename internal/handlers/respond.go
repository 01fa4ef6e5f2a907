// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"

	"catalogadmin/internal/cache"
	"catalogadmin/internal/catalog"
	"catalogadmin/internal/models"
)

// VersionHeader carries the catalog version after a mutation.
const VersionHeader = "X-Catalog-Version"

// Error codes of the JSON error envelope.
const (
	CodeDuplicateSlug    = "DUPLICATE_SLUG"
	CodeInvalidParent    = "INVALID_PARENT"
	CodeNotFound         = "NOT_FOUND"
	CodeTargetNotFound   = "TARGET_NOT_FOUND"
	CodeCycleRejected    = "CYCLE_REJECTED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInternal         = "INTERNAL"
)

// apiError is the body of {"error": {...}}.
type apiError struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Conflict *models.Category  `json:"conflict,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// writeJSON encodes data as the response body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeRaw writes an already encoded JSON body.
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError maps err onto a status code and the JSON error envelope.
// Anything that is not a client error is logged and reported as INTERNAL
// without its message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *models.ValidationError
		sc *models.SlugConflictError
	)
	status := http.StatusInternalServerError
	body := apiError{Code: CodeInternal, Message: "internal server error"}

	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		body = apiError{Code: CodeValidationFailed, Message: err.Error(), Fields: ve.Fields}
	case errors.As(err, &sc):
		status = http.StatusConflict
		body = apiError{Code: CodeDuplicateSlug, Message: err.Error(), Conflict: sc.Conflict}
	case errors.Is(err, models.ErrDuplicateSlug):
		status = http.StatusConflict
		body = apiError{Code: CodeDuplicateSlug, Message: err.Error()}
	case errors.Is(err, models.ErrInvalidParent):
		status = http.StatusUnprocessableEntity
		body = apiError{Code: CodeInvalidParent, Message: err.Error()}
	case errors.Is(err, models.ErrTargetNotFound):
		status = http.StatusNotFound
		body = apiError{Code: CodeTargetNotFound, Message: err.Error()}
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
		body = apiError{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, models.ErrCycleRejected):
		status = http.StatusConflict
		body = apiError{Code: CodeCycleRejected, Message: err.Error()}
	default:
		slog.Error("category request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"error", err,
		)
	}

	writeJSON(w, status, errorEnvelope{Error: body})
}

// stale sets the version header for a committed mutation and returns the
// views the client should refetch.
func stale(w http.ResponseWriter, c catalog.Committed) []string {
	if c.Version > 0 {
		w.Header().Set(VersionHeader, strconv.FormatInt(c.Version, 10))
	}
	if !c.Changed() {
		return []string{}
	}
	return cache.AllViews
}
