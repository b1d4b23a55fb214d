// Package query filters and paginates the route catalog. Every function is
// pure and synchronous; it is called on every directory transition.
package query

import (
	"strings"

	"github.com/ziadkadry99/transitdir/internal/catalog"
)

// DefaultPageSize is the number of routes on one directory page.
const DefaultPageSize = 20

// State is the user-supplied query.
type State struct {
	Search   string
	Category catalog.Category // empty means no filter
	Page     int              // 1-based
}

// Result is the view-model for one page of the directory.
type Result struct {
	Items        []catalog.Route
	Page         int
	TotalPages   int
	TotalMatches int
	PageSize     int
}

// Empty reports whether nothing matched the query.
func (r Result) Empty() bool { return r.TotalMatches == 0 }

// HasPrev reports whether a previous page exists.
func (r Result) HasPrev() bool { return r.Page > 1 }

// HasNext reports whether a next page exists.
func (r Result) HasNext() bool { return r.Page < r.TotalPages }

// Normalize trims and case-folds a search term.
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Matches reports whether route matches the normalized term on its number,
// plain-text details or any stop. An empty term matches everything.
func Matches(route catalog.Route, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(route.Number), term) ||
		strings.Contains(strings.ToLower(route.Summary()), term) {
		return true
	}
	for _, stop := range route.Stops {
		if strings.Contains(strings.ToLower(stop), term) {
			return true
		}
	}
	return false
}

// Filter returns the routes matching the search term and then the category.
func Filter(cat *catalog.Catalog, search string, category catalog.Category) []catalog.Route {
	term := Normalize(search)
	var out []catalog.Route
	cat.Each(func(r catalog.Route) bool {
		if !Matches(r, term) {
			return true
		}
		if category != "" && r.Category != category {
			return true
		}
		out = append(out, r)
		return true
	})
	return out
}

// TotalPages returns ceil(matches/pageSize), never less than 1.
func TotalPages(matches, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pages := (matches + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Clamp bounds page to [1, totalPages].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// FilterAndPaginate applies the search, the category filter and the page
// window. The requested page is clamped to the available range and the
// clamped value is reported in the result.
func FilterAndPaginate(cat *catalog.Catalog, state State, pageSize int) Result {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	matches := Filter(cat, state.Search, state.Category)
	total := TotalPages(len(matches), pageSize)
	page := Clamp(state.Page, total)

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(matches) {
		start = len(matches)
	}
	if end > len(matches) {
		end = len(matches)
	}

	items := make([]catalog.Route, end-start)
	copy(items, matches[start:end])

	return Result{
		Items:        items,
		Page:         page,
		TotalPages:   total,
		TotalMatches: len(matches),
		PageSize:     pageSize,
	}
}
