// Package directory owns the directory UI state and turns user input into
// query results and selections.
package directory

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/ziadkadry99/transitdir/internal/catalog"
	"github.com/ziadkadry99/transitdir/internal/query"
)

// ErrRouteNotFound is returned when an activated route is not in the catalog.
var ErrRouteNotFound = errors.New("route not found")

// Selector receives the route the user activated.
type Selector interface {
	Open(route catalog.Route, returnFocus string)
}

// State is the directory state. It is ephemeral and lives in the URL.
type State struct {
	Search   string
	Category catalog.Category
	Page     int
}

// ParseState decodes a state from query parameters q, category and page.
// Missing or malformed values fall back to their zero state.
func ParseState(v url.Values) State {
	s := State{
		Search:   v.Get("q"),
		Category: catalog.Category(strings.TrimSpace(v.Get("category"))),
		Page:     1,
	}
	if p, err := strconv.Atoi(v.Get("page")); err == nil {
		s.Page = p
	}
	return s
}

// Values encodes the state as query parameters, omitting defaults.
func (s State) Values() url.Values {
	v := url.Values{}
	if s.Search != "" {
		v.Set("q", s.Search)
	}
	if s.Category != "" {
		v.Set("category", string(s.Category))
	}
	if s.Page > 1 {
		v.Set("page", strconv.Itoa(s.Page))
	}
	return v
}

// Encode returns the state as a query string, or "" for the default state.
func (s State) Encode() string {
	return s.Values().Encode()
}

// Controller drives the directory. Every transition re-derives the visible
// page through the query package and adopts the clamped page it reports.
type Controller struct {
	catalog  *catalog.Catalog
	pageSize int
	selector Selector

	state State
	view  query.Result
}

// New returns a controller at the initial state: no search, no category,
// page 1.
func New(cat *catalog.Catalog, pageSize int, selector Selector) *Controller {
	if pageSize < 1 {
		pageSize = query.DefaultPageSize
	}
	c := &Controller{
		catalog:  cat,
		pageSize: pageSize,
		selector: selector,
		state:    State{Page: 1},
	}
	c.refresh()
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// View returns the page derived from the current state.
func (c *Controller) View() query.Result { return c.view }

// Restore adopts s and clamps its page.
func (c *Controller) Restore(s State) {
	c.state = s
	c.refresh()
}

// SetSearch replaces the search term and returns to page 1.
func (c *Controller) SetSearch(term string) {
	c.state.Search = term
	c.state.Page = 1
	c.refresh()
}

// SetCategory toggles the category filter: selecting the active category
// clears it. The page returns to 1.
func (c *Controller) SetCategory(cat catalog.Category) {
	if cat == c.state.Category {
		c.state.Category = ""
	} else {
		c.state.Category = cat
	}
	c.state.Page = 1
	c.refresh()
}

// ClearCategory removes the category filter and returns to page 1.
func (c *Controller) ClearCategory() {
	c.state.Category = ""
	c.state.Page = 1
	c.refresh()
}

// NextPage advances one page; it is a no-op on the last page.
func (c *Controller) NextPage() {
	c.state.Page = query.Clamp(c.state.Page+1, c.view.TotalPages)
	c.refresh()
}

// PrevPage goes back one page; it is a no-op on the first page.
func (c *Controller) PrevPage() {
	c.state.Page = query.Clamp(c.state.Page-1, c.view.TotalPages)
	c.refresh()
}

// Activate forwards the route with the given ID to the selector.
// returnFocus names the element to refocus when the detail view closes.
func (c *Controller) Activate(id int, returnFocus string) (catalog.Route, error) {
	route, ok := c.catalog.Get(id)
	if !ok {
		return catalog.Route{}, ErrRouteNotFound
	}
	if c.selector != nil {
		c.selector.Open(route, returnFocus)
	}
	return route, nil
}

// Preview applies transition to a copy of the controller and returns the
// resulting state. The receiver is left untouched and nothing is selected.
func (c *Controller) Preview(transition func(*Controller)) State {
	cp := *c
	cp.selector = nil
	transition(&cp)
	return cp.state
}

func (c *Controller) refresh() {
	c.view = query.FilterAndPaginate(c.catalog, query.State{
		Search:   c.state.Search,
		Category: c.state.Category,
		Page:     c.state.Page,
	}, c.pageSize)
	c.state.Page = c.view.Page
}
