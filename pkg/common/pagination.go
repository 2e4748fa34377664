package common

import (
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PaginationParams is a 1-based page request
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// ExtractPaginationParams reads page and page_size. Junk falls back to
// page 1 of 20; page_size is capped at 100.
func ExtractPaginationParams(r *http.Request) PaginationParams {
	q := r.URL.Query()
	return PaginationParams{
		Page:     positiveInt(q.Get("page"), 1),
		PageSize: min(positiveInt(q.Get("page_size"), defaultPageSize), maxPageSize),
	}
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Bounds returns the half-open [start, end) slice of a collection of
// length total that this page covers
func (p PaginationParams) Bounds(total int) (int, int) {
	start := min((p.Page-1)*p.PageSize, total)
	return start, min(start+p.PageSize, total)
}

// PaginationInfo describes where a page sits in the collection
type PaginationInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func BuildPaginationMeta(page, pageSize, total int) *PaginationInfo {
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return &PaginationInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
		HasPrev:    page > 1,
	}
}

// PaginatedResult is the body of a paged list endpoint
type PaginatedResult struct {
	Items      interface{}     `json:"items"`
	Pagination *PaginationInfo `json:"pagination"`
}

func NewPaginatedResult(items interface{}, page, pageSize, total int) *PaginatedResult {
	return &PaginatedResult{
		Items:      items,
		Pagination: BuildPaginationMeta(page, pageSize, total),
	}
}
