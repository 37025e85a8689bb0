// File: internal/common/pagination.go
package common

import "math"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a validated page/perPage pair.
type PageRequest struct {
	Page    int
	PerPage int
}

// Offset is the number of rows to skip. It saturates instead of overflowing.
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.PerPage < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PerPage {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PerPage
}

// PastEnd reports whether the page starts after the last of total rows.
func (p PageRequest) PastEnd(total int64) bool {
	if p.PerPage < 1 {
		return true
	}
	lastPage := (total + int64(p.PerPage) - 1) / int64(p.PerPage)
	return int64(p.Page-1) >= lastPage
}

// Limit is the maximum number of rows on the page.
func (p PageRequest) Limit() int {
	return p.PerPage
}

// NewPageMeta computes totalPages = ceil(total / perPage).
func NewPageMeta(total int64, p PageRequest) PageMeta {
	totalPages := 0
	if p.PerPage > 0 {
		totalPages = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return PageMeta{
		Total:      total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: totalPages,
	}
}
