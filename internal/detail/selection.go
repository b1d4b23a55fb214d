// Package detail holds the selected route and renders its detail dialog.
package detail

import (
	"sync"

	"github.com/ziadkadry99/transitdir/internal/catalog"
)

// KeyEscape is the key that closes an open dialog.
const KeyEscape = "Escape"

// Selection is the route shown in the dialog together with the element that
// had focus when it opened.
type Selection struct {
	Route       catalog.Route
	ReturnFocus string
}

// View holds at most one selection.
type View struct {
	mu      sync.Mutex
	current *Selection
}

// NewView returns a view with nothing selected.
func NewView() *View {
	return &View{}
}

// Open replaces any current selection with route.
func (v *View) Open(route catalog.Route, returnFocus string) {
	sel := &Selection{Route: route, ReturnFocus: returnFocus}
	v.mu.Lock()
	v.current = sel
	v.mu.Unlock()
}

// Close clears the selection and returns the element to refocus.
// ok is false when nothing was open.
func (v *View) Close() (returnFocus string, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return "", false
	}
	returnFocus = v.current.ReturnFocus
	v.current = nil
	return returnFocus, true
}

// HandleKey closes the dialog on Escape. Other keys are ignored.
func (v *View) HandleKey(key string) (returnFocus string, closed bool) {
	if key != KeyEscape {
		return "", false
	}
	return v.Close()
}

// Current returns a copy of the selection, or nil.
func (v *View) Current() *Selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return nil
	}
	sel := *v.current
	return &sel
}

// IsOpen reports whether a route is selected.
func (v *View) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current != nil
}
