package shared

import (
	"math"
	"strconv"
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, limit, total int) Pagination {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	pages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// ParsePage reads a page query value, falling back to 1 when absent or not a
// positive integer.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// ParseLimit reads a limit query value, falling back to 10 when absent or not
// a positive integer. No upper bound is applied.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 10
	}
	return n
}

// Offset returns the row offset for the given page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}
