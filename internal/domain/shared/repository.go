package shared

// PageRequest selects one page of a listing. Page numbers start at 1.
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest clamps page and size to sane values.
func NewPageRequest(page, pageSize int) PageRequest {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page PageRequest) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := int(total) / page.PageSize
	if int(total)%page.PageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: totalPages,
		HasPrev:    page.Page > 1,
		HasNext:    page.Page < totalPages,
	}
}
