package listutil

import (
	"net/url"
	"slices"
	"testing"
)

// TestParsePageParams verifies parsing and defaults of page and per_page.
func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name        string
		q           url.Values
		wantPage    int
		wantPerPage int
	}{
		{"defaults", url.Values{}, 1, DefaultPerPage},
		{"valid", url.Values{"page": {"3"}, "per_page": {"50"}}, 3, 50},
		{"per_page not offered", url.Values{"per_page": {"7"}}, 1, DefaultPerPage},
		{"negative page", url.Values{"page": {"-2"}}, 1, DefaultPerPage},
		{"garbage", url.Values{"page": {"x"}, "per_page": {"y"}}, 1, DefaultPerPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePageParams(tt.q)
			if p.Page != tt.wantPage || p.PerPage != tt.wantPerPage {
				t.Errorf("got %+v, want page %d per_page %d", p, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

// TestNewPageInfo verifies page clamping and row bounds.
func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		perPage    int
		total      int
		wantPages  int
		wantPage   int
		wantStart  int
		wantEnd    int
		wantOffset int
	}{
		{"first", 1, 25, 85, 4, 1, 1, 25, 0},
		{"second", 2, 25, 85, 4, 2, 26, 50, 25},
		{"last", 4, 25, 85, 4, 4, 76, 85, 75},
		{"beyond total", 10, 25, 85, 4, 4, 76, 85, 75},
		{"empty", 1, 25, 0, 1, 1, 0, 0, 0},
		{"exact fit", 1, 10, 10, 1, 1, 1, 10, 0},
		{"zero per page", 1, 0, 3, 1, 1, 1, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.perPage, tt.total)
			if pi.TotalPages != tt.wantPages {
				t.Errorf("TotalPages: got %d, want %d", pi.TotalPages, tt.wantPages)
			}
			if pi.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", pi.Page, tt.wantPage)
			}
			if pi.StartRow() != tt.wantStart {
				t.Errorf("StartRow: got %d, want %d", pi.StartRow(), tt.wantStart)
			}
			if pi.EndRow() != tt.wantEnd {
				t.Errorf("EndRow: got %d, want %d", pi.EndRow(), tt.wantEnd)
			}
			if pi.Offset() != tt.wantOffset {
				t.Errorf("Offset: got %d, want %d", pi.Offset(), tt.wantOffset)
			}
		})
	}
}

// TestPaginate verifies the page slice and the navigation flags.
func TestPaginate(t *testing.T) {
	cards := []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "A10", "A11", "A12"}

	got, info := Paginate(cards, PageParams{Page: 2, PerPage: 10})
	if !slices.Equal(got, []string{"A11", "A12"}) {
		t.Errorf("page 2: got %v", got)
	}
	if !info.HasPrevious() || info.HasNext() {
		t.Errorf("page 2 of 2: HasPrevious=%v HasNext=%v", info.HasPrevious(), info.HasNext())
	}

	got, info = Paginate(cards, PageParams{Page: 1, PerPage: 10})
	if len(got) != 10 || got[0] != "A1" || info.HasPrevious() || !info.HasNext() {
		t.Errorf("page 1: got %v (%+v)", got, info)
	}

	empty, info := Paginate([]string(nil), PageParams{Page: 3, PerPage: 10})
	if len(empty) != 0 || info.Page != 1 {
		t.Errorf("empty: got %v (%+v)", empty, info)
	}
}

// TestPageNumbers verifies the page number window.
func TestPageNumbers(t *testing.T) {
	tests := []struct {
		name string
		page int
		tot  int
		want []int
	}{
		{"3 pages at 1", 1, 3, []int{1, 2, 3}},
		{"10 pages at 1", 1, 10, []int{1, 2, 3, 4, 5}},
		{"10 pages at 5", 5, 10, []int{3, 4, 5, 6, 7}},
		{"10 pages at 10", 10, 10, []int{6, 7, 8, 9, 10}},
		{"1 page", 1, 1, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPageInfo(tt.page, 10, tt.tot*10).PageNumbers()
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// TestShowPagination verifies pagination visibility.
func TestShowPagination(t *testing.T) {
	if NewPageInfo(1, 25, 25).ShowPagination() {
		t.Error("should not show pagination when total == perPage")
	}
	if !NewPageInfo(1, 25, 26).ShowPagination() {
		t.Error("should show pagination when total > perPage")
	}
}
