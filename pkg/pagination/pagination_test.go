package pagination_test

import (
	"net/url"
	"testing"

	"github.com/JaimeStill/beacon/pkg/pagination"
)

var cfg = pagination.Config{DefaultPageSize: 25, MaxPageSize: 100}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		query    string
		page     int
		pageSize int
		offset   int
	}{
		{"", 1, 25, 0},
		{"page=3&page_size=10", 3, 10, 20},
		{"page=-1&page_size=500", 1, 100, 0},
		{"page=abc", 1, 25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.FromQuery(values, cfg)

			if req.Page != tt.page || req.PageSize != tt.pageSize {
				t.Errorf("got page %d size %d, want %d/%d", req.Page, req.PageSize, tt.page, tt.pageSize)
			}
			if req.Offset() != tt.offset {
				t.Errorf("Offset = %d, want %d", req.Offset(), tt.offset)
			}
		})
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		total int
		size  int
		want  int
	}{
		{0, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 25, 4},
	}

	for _, tt := range tests {
		r := pagination.NewPageResult[string](nil, tt.total, pagination.PageRequest{Page: 1, PageSize: tt.size})
		if r.TotalPages != tt.want {
			t.Errorf("total %d size %d: TotalPages = %d, want %d", tt.total, tt.size, r.TotalPages, tt.want)
		}
		if r.Data == nil {
			t.Error("Data is nil")
		}
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_PAGE_MAX", "10")

	c := pagination.Config{DefaultPageSize: 20}
	if err := c.Finalize(&pagination.ConfigEnv{MaxPageSize: "TEST_PAGE_MAX"}); err == nil {
		t.Error("expected error when default exceeds max")
	}
}
