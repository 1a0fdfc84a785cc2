package listing

import (
	"net/url"
	"strconv"
	"strings"

	"backoffice/internal/domain"
)

// QuerySpec whitelists what a screen accepts from the outside.
type QuerySpec struct {
	Filters     []string
	SortFields  []string
	DefaultSort string
	DefaultDir  domain.SortOrder
	PerPage     int
	MaxPerPage  int
}

// ParseQuery builds a ListQuery from request parameters. Unknown filters and
// sort fields are ignored, page and limit are clamped.
func ParseQuery(values url.Values, spec QuerySpec) domain.ListQuery {
	q := domain.NewListQuery(spec.PerPage)
	if spec.DefaultSort != "" {
		q.SortBy = spec.DefaultSort
		q.SortOrder = spec.DefaultDir
	}

	if page, err := strconv.Atoi(strings.TrimSpace(values.Get("page"))); err == nil && page >= 1 {
		q.Page = page
	}
	limitRaw := values.Get("limit")
	if limitRaw == "" {
		limitRaw = values.Get("per_page")
	}
	if limit, err := strconv.Atoi(strings.TrimSpace(limitRaw)); err == nil && limit >= 1 {
		q.PerPage = limit
	}
	q.Search = strings.TrimSpace(values.Get("search"))

	if sortBy := strings.ToLower(strings.TrimSpace(values.Get("sort_by"))); sortBy != "" && contains(spec.SortFields, sortBy) {
		q.SortBy = sortBy
		q.SortOrder = ""
	}
	if dir := domain.SortOrder(strings.ToLower(strings.TrimSpace(values.Get("sort_order")))); dir == domain.SortAsc || dir == domain.SortDesc {
		q.SortOrder = dir
	}

	for _, f := range spec.Filters {
		if v := strings.TrimSpace(values.Get(f)); v != "" {
			q.Filters[f] = v
		}
	}
	return q.Normalize(spec.MaxPerPage)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
