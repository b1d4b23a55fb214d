package catalog

import "strings"

// Category is a transit-mode tag used for icon lookup and filtering.
type Category string

const (
	CategoryBRTS      Category = "brts"
	CategoryPeopleBus Category = "people-bus"
	CategoryLocalBus  Category = "local-bus"
	CategoryChinchi   Category = "chinchi"
	CategoryEVBus     Category = "EV-bus"
)

// categories is the closed set in display order.
var categories = []Category{
	CategoryBRTS,
	CategoryPeopleBus,
	CategoryLocalBus,
	CategoryChinchi,
	CategoryEVBus,
}

// Categories returns every known category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Known reports whether c belongs to the closed category set.
func (c Category) Known() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// FallbackLabel captions routes whose category is not in the closed set.
const FallbackLabel = "ROUTE"

// Label is the button caption for c: the first hyphen becomes a space and
// the result is upper-cased.
func (c Category) Label() string {
	return strings.ToUpper(strings.Replace(string(c), "-", " ", 1))
}

// DisplayLabel is Label for known categories and FallbackLabel otherwise.
func (c Category) DisplayLabel() string {
	if !c.Known() {
		return FallbackLabel
	}
	return c.Label()
}

// Fare is a whole-unit fare that may be unknown.
type Fare struct {
	amount int
	known  bool
}

// KnownFare returns a fare with the given amount. Negative amounts are
// treated as unknown.
func KnownFare(amount int) Fare {
	if amount < 0 {
		return Fare{}
	}
	return Fare{amount: amount, known: true}
}

// UnknownFare returns a fare with no amount.
func UnknownFare() Fare { return Fare{} }

// fareFrom resolves an optional raw fare.
func fareFrom(raw *int) Fare {
	if raw == nil {
		return UnknownFare()
	}
	return KnownFare(*raw)
}

// Known reports whether the fare amount was supplied.
func (f Fare) Known() bool { return f.known }

// Amount returns the fare and whether it is known.
func (f Fare) Amount() (int, bool) { return f.amount, f.known }

// Display returns the amount to show, 0 when unknown.
func (f Fare) Display() int {
	if !f.known {
		return 0
	}
	return f.amount
}

// Route is one immutable record of the catalog.
type Route struct {
	ID       int
	Category Category
	Number   string
	Fare     Fare
	Details  string
	Stops    []string

	summary string
}

// Summary returns Details as plain text, the form shown on cards and
// matched by search.
func (r Route) Summary() string {
	if r.summary == "" && r.Details != "" {
		return plainText(r.Details)
	}
	return r.summary
}

// StopCount returns the number of stops on the route.
func (r Route) StopCount() int { return len(r.Stops) }

// record is the on-disk shape of a route.
type record struct {
	Type    string   `yaml:"type" json:"type"`
	Number  string   `yaml:"number" json:"number"`
	Fare    *int     `yaml:"fare,omitempty" json:"fare,omitempty"`
	Details string   `yaml:"details" json:"details"`
	Stops   []string `yaml:"stops" json:"stops"`
}

func (r record) route(id int) Route {
	stops := make([]string, len(r.Stops))
	copy(stops, r.Stops)
	return Route{
		ID:       id,
		Category: Category(strings.TrimSpace(r.Type)),
		Number:   r.Number,
		Fare:     fareFrom(r.Fare),
		Details:  r.Details,
		Stops:    stops,
	}
}
