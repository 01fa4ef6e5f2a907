// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"catalogadmin/internal/catalog"
	"catalogadmin/internal/models"
)

// maxBodyBytes caps request bodies. Category payloads are small.
const maxBodyBytes = 64 << 10

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type createRequest struct {
	Name         string     `json:"name" validate:"required,max=200"`
	Slug         string     `json:"slug" validate:"max=200"`
	Description  string     `json:"description" validate:"max=2000"`
	ParentID     *uuid.UUID `json:"parent_id"`
	Order        *int       `json:"order" validate:"omitempty,min=0"`
	IsActive     *bool      `json:"is_active"`
	IsFeatured   bool       `json:"is_featured"`
	ProductCount int        `json:"product_count" validate:"min=0"`
}

func (req createRequest) input() catalog.CreateInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return catalog.CreateInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		ParentID:     req.ParentID,
		SortOrder:    req.Order,
		IsActive:     active,
		IsFeatured:   req.IsFeatured,
		ProductCount: req.ProductCount,
	}
}

// optionalParent tells an absent parent_id apart from an explicit null,
// which moves the category to the root level.
type optionalParent struct {
	Set bool
	ID  *uuid.UUID
}

func (p *optionalParent) UnmarshalJSON(data []byte) error {
	p.Set = true
	if bytes.Equal(data, []byte("null")) {
		p.ID = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	p.ID = &id
	return nil
}

type updateRequest struct {
	Name         *string        `json:"name" validate:"omitempty,max=200"`
	Slug         *string        `json:"slug" validate:"omitempty,max=200"`
	Description  *string        `json:"description" validate:"omitempty,max=2000"`
	ParentID     optionalParent `json:"parent_id"`
	IsActive     *bool          `json:"is_active"`
	IsFeatured   *bool          `json:"is_featured"`
	ProductCount *int           `json:"product_count" validate:"omitempty,min=0"`
}

func (req updateRequest) update() models.CategoryUpdate {
	u := models.CategoryUpdate{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		IsActive:     req.IsActive,
		IsFeatured:   req.IsFeatured,
		ProductCount: req.ProductCount,
	}
	if req.ParentID.Set {
		u.ParentID = req.ParentID.ID
		u.MoveToRoot = req.ParentID.ID == nil
	}
	return u
}

type reorderRequest struct {
	MovedID  uuid.UUID `json:"moved_id" validate:"required"`
	TargetID uuid.UUID `json:"target_id" validate:"required"`
}

// decodeJSON reads a single JSON object into dst and validates it.
// Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return models.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return validateStruct(dst)
}

// validateStruct runs the struct tags and converts failures into a
// ValidationError keyed by JSON field name.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		if _, ok := fields[e.Field()]; !ok {
			fields[e.Field()] = formatFieldError(e)
		}
	}
	return &models.ValidationError{Fields: fields}
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return "is invalid"
	}
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, models.NewValidationError("id", "must be a UUID")
	}
	return id, nil
}

// queryID parses an optional UUID query parameter. An empty value is nil.
func queryID(q url.Values, key string) (*uuid.UUID, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, models.NewValidationError(key, "must be a UUID")
	}
	return &id, nil
}

// queryIDs parses a comma separated list of UUIDs.
func queryIDs(q url.Values, key string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(q.Get(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, models.NewValidationError(key, "must be a comma separated list of UUIDs")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// queryInt parses an optional non-negative integer. An empty value is 0.
func queryInt(q url.Values, key string) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, models.NewValidationError(key, "must be a non-negative integer")
	}
	return n, nil
}

func queryBool(q url.Values, key string) (bool, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, models.NewValidationError(key, "must be true or false")
	}
	return b, nil
}
