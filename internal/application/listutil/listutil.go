// Package listutil pages in-memory result lists for the console's tables.
package listutil

import (
	"net/url"
	"slices"
	"strconv"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed
	PerPage int
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 25

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 25, 50, 100}

// ParsePageParams extracts page and per_page from URL query values.
// PRE: none
// POST: returns valid PageParams with defaults applied
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !slices.Contains(PerPageOptions, perPage) {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: Page is clamped to [1, TotalPages]; TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	page = min(max(page, 1), totalPages)
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Paginate returns the slice of items on the requested page.
// PRE: none
// POST: the returned slice shares storage with items
func Paginate[T any](items []T, p PageParams) ([]T, PageInfo) {
	info := NewPageInfo(p.Page, p.PerPage, len(items))
	return items[info.Offset():info.EndRow()], info
}

// Offset returns the index of the first row on the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number, or 0 for an empty list.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the current page.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// HasPrevious reports whether a page precedes the current one.
func (p PageInfo) HasPrevious() bool { return p.Page > 1 }

// HasNext reports whether a page follows the current one.
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }

// PageNumbers returns at most 5 page numbers centered on the current page.
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := max(p.Page-maxButtons/2, 1)
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = max(end-maxButtons+1, 1)
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination reports whether the list spans more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}
