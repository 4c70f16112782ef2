// Package listutil parses paging query parameters for JSON list endpoints.
package listutil

import (
	"net/url"
	"strconv"
)

// DefaultPerPage is used when per_page is missing or unparsable.
const DefaultPerPage = 50

// MaxPerPage caps per_page; a week of sessions for a busy gym fits in one page.
const MaxPerPage = 500

// PageParams carries the requested page.
type PageParams struct {
	Page    int // 1-indexed page number
	PerPage int // rows per page
}

// PageInfo is the paging metadata returned alongside list items.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
	Next       int // next page number, 0 on the last page
}

// ParsePageParams extracts page and per_page from URL query values.
// PRE: none
// POST: Page >= 1 and 1 <= PerPage <= MaxPerPage
func ParsePageParams(q url.Values) PageParams {
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(q.Get("per_page"))
	if err != nil || perPage < 1 {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: min(perPage, MaxPerPage)}
}

// NewPageInfo computes paging metadata for total rows.
// PRE: total >= 0
// POST: Page is clamped to [1, TotalPages]; TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	page = min(max(page, 1), totalPages)
	info := PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
	if page < totalPages {
		info.Next = page + 1
	}
	return info
}

// Offset returns the SQL OFFSET for the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}
