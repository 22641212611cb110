package service

import "go-inventory-api/internal/repository"

type Pagination struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

func NewPagination(q repository.PageQuery, total int64) Pagination {
	q = q.Normalize()
	pages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return Pagination{
		CurrentPage:  q.Page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: q.Limit,
		HasNext:      q.Page < pages,
		HasPrev:      q.Page > 1,
	}
}
