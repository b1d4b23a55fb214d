// Package catalog holds the static, read-only list of transit routes shown
// by the directory.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a catalog file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrNoFiles is returned by LoadGlob when the pattern matches nothing.
var ErrNoFiles = errors.New("no catalog files matched")

//go:embed data/routes.yaml
var defaultData []byte

// Catalog is an ordered, immutable collection of routes.
type Catalog struct {
	routes []Route
}

// New builds a catalog from routes, assigning 1-based IDs by position.
func New(routes []Route) *Catalog {
	out := make([]Route, len(routes))
	for i, r := range routes {
		r.ID = i + 1
		stops := make([]string, len(r.Stops))
		copy(stops, r.Stops)
		r.Stops = stops
		r.summary = plainText(r.Details)
		out[i] = r
	}
	return &Catalog{routes: out}
}

// Len returns the number of routes.
func (c *Catalog) Len() int { return len(c.routes) }

// All returns a copy of the routes in catalog order.
func (c *Catalog) All() []Route {
	out := make([]Route, len(c.routes))
	copy(out, c.routes)
	return out
}

// Each calls fn for every route in order, stopping early when fn returns false.
func (c *Catalog) Each(fn func(Route) bool) {
	for _, r := range c.routes {
		if !fn(r) {
			return
		}
	}
}

// Get returns the route with the given ID.
func (c *Catalog) Get(id int) (Route, bool) {
	if id < 1 || id > len(c.routes) {
		return Route{}, false
	}
	return c.routes[id-1], true
}

// Unknown returns the routes whose category has no known mapping. They still
// render, with the fallback icon.
func (c *Catalog) Unknown() []Route {
	var out []Route
	for _, r := range c.routes {
		if !r.Category.Known() {
			out = append(out, r)
		}
	}
	return out
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Parse(defaultData, FormatYAML)
}

// Parse decodes a list of route records.
func Parse(data []byte, format Format) (*Catalog, error) {
	records, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	routes := make([]Route, len(records))
	for i, rec := range records {
		routes[i] = rec.route(i + 1)
	}
	return New(routes), nil
}

func decode(data []byte, format Format) ([]record, error) {
	var records []record
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decoding json catalog: %w", err)
		}
	case FormatYAML, "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&records); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding yaml catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	return records, nil
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported catalog file %s", path)
	}
}

// LoadFile reads a single catalog file.
func LoadFile(path string) (*Catalog, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data, format)
}

// LoadGlob reads every file in fsys matching pattern (doublestar syntax, so
// "routes/**/*.yaml" works) and concatenates them in lexical path order.
func LoadGlob(fsys fs.FS, pattern string) (*Catalog, error) {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("matching %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, pattern)
	}
	sort.Strings(matches)

	var records []record
	for _, path := range matches {
		format, err := FormatForPath(path)
		if err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("reading catalog %s: %w", path, err)
		}
		recs, err := decode(data, format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		records = append(records, recs...)
	}

	routes := make([]Route, len(records))
	for i, rec := range records {
		routes[i] = rec.route(i + 1)
	}
	return New(routes), nil
}

// Load resolves a catalog source: empty means the bundled catalog, a path
// containing glob metacharacters is matched relative to the current
// directory, anything else is read as a single file.
func Load(source string) (*Catalog, error) {
	switch {
	case source == "":
		return Default()
	case strings.ContainsAny(source, "*?[{"):
		base, pattern := doublestar.SplitPattern(filepath.ToSlash(source))
		return LoadGlob(os.DirFS(base), pattern)
	default:
		return LoadFile(source)
	}
}
