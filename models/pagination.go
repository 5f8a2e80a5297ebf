package models

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Normalized returns p with defaults applied: page < 1 becomes 1 and an
// out-of-range size becomes DefaultPageSize or MaxPageSize.
func (p Page) Normalized() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset is the number of items before the page. It saturates at
// math.MaxInt64 so an absurd page number still reads past the end.
func (p Page) Offset() int64 {
	p = p.Normalized()
	before, size := int64(p.Number-1), int64(p.Size)
	if before > math.MaxInt64/size {
		return math.MaxInt64
	}
	return before * size
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// NewPagination computes totalPages = ceil(total/size).
func NewPagination(p Page, total int64) Pagination {
	size := int64(p.Size)
	return Pagination{
		Page:       p.Number,
		PageSize:   p.Size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}
}
