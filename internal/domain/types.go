package domain

import (
	"encoding/json"
	"strings"
)

// SortOrder is either asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// ListQuery is the UI-derived query of a list screen. It is never persisted.
type ListQuery struct {
	Page      int               `json:"page"`
	PerPage   int               `json:"perPage"`
	Search    string            `json:"search"`
	SortBy    string            `json:"sort_by,omitempty"`
	SortOrder SortOrder         `json:"sort_order,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
}

// NewListQuery returns the defaults a screen mounts with.
func NewListQuery(perPage int) ListQuery {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return ListQuery{Page: DefaultPage, PerPage: perPage, Filters: map[string]string{}}
}

// Clone copies the query including its filter map.
func (q ListQuery) Clone() ListQuery {
	out := q
	out.Filters = make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		out.Filters[k] = v
	}
	return out
}

// Normalize clamps page/perPage and drops an invalid sort order.
func (q ListQuery) Normalize(maxPerPage int) ListQuery {
	if maxPerPage < 1 {
		maxPerPage = MaxPerPage
	}
	out := q.Clone()
	if out.Page < 1 {
		out.Page = DefaultPage
	}
	if out.PerPage < 1 {
		out.PerPage = DefaultPerPage
	}
	if out.PerPage > maxPerPage {
		out.PerPage = maxPerPage
	}
	out.Search = strings.TrimSpace(out.Search)
	switch SortOrder(strings.ToLower(string(out.SortOrder))) {
	case SortAsc:
		out.SortOrder = SortAsc
	case SortDesc:
		out.SortOrder = SortDesc
	default:
		out.SortOrder = ""
	}
	return out
}

// PageMeta mirrors the server's pagination metadata.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// PageResult is one fetched page. Every fetch replaces the previous one.
type PageResult[T any] struct {
	Data []T             `json:"data"`
	Meta PageMeta        `json:"meta"`
	Info json.RawMessage `json:"info,omitempty"`
}
