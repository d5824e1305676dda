package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultLimit applies when a list request omits the limit parameter.
	DefaultLimit = 20
	// MaxLimit caps how many rows a single page can return.
	MaxLimit = 100
)

// Params carries validated page/limit values for offset pagination.
type Params struct {
	Page  int
	Limit int
}

// FromQuery parses page and limit from the query string, clamping to
// sane bounds. Bad or missing values fall back to defaults.
func FromQuery(values url.Values) Params {
	p := Params{Page: 1, Limit: DefaultLimit}

	if raw := values.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			p.Page = page
		}
	}
	if raw := values.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			p.Limit = limit
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes the pagination envelope returned alongside list results.
type Meta struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// BuildMeta derives the page metadata from the total row count.
func BuildMeta(p Params, total int64) Meta {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Meta{
		Page:        p.Page,
		Limit:       p.Limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     p.Page < totalPages,
		HasPrevious: p.Page > 1 && total > 0,
	}
}
