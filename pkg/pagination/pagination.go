// Package pagination models page requests and page results for list endpoints.
package pagination

import (
	"net/url"
	"strconv"
)

// PageRequest selects a 1-based page of results.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize clamps the request into the bounds of cfg.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	r.PageSize = min(r.PageSize, cfg.MaxPageSize)
}

// Offset is the number of rows preceding the page.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// FromQuery reads page and page_size from query values and normalizes them.
func FromQuery(values url.Values, cfg Config) PageRequest {
	page, _ := strconv.Atoi(values.Get("page"))
	size, _ := strconv.Atoi(values.Get("page_size"))

	req := PageRequest{Page: page, PageSize: size}
	req.Normalize(cfg)
	return req
}

// PageResult is one page of items with totals.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult computes TotalPages (at least 1) and never returns nil Data.
func NewPageResult[T any](data []T, total int, req PageRequest) PageResult[T] {
	if data == nil {
		data = []T{}
	}

	pages := 1
	if req.PageSize > 0 && total > 0 {
		pages = (total + req.PageSize - 1) / req.PageSize
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: pages,
	}
}
