package catalog

// FallbackIcon is the neutral icon shown for categories with no mapping.
const FallbackIcon = "/images/route.svg"

var iconMapping = map[Category]string{
	CategoryBRTS:      "/images/peoplebus.svg",
	CategoryPeopleBus: "/images/pbus.svg",
	CategoryLocalBus:  "/images/bus1.svg",
	CategoryChinchi:   "/images/tuk.svg",
	CategoryEVBus:     "/images/ebus.svg",
}

// IconFor returns the display asset for c.
func IconFor(c Category) (string, bool) {
	icon, ok := iconMapping[c]
	return icon, ok
}

// IconOrFallback returns the display asset for c, or FallbackIcon when the
// category has none.
func IconOrFallback(c Category) string {
	if icon, ok := IconFor(c); ok {
		return icon
	}
	return FallbackIcon
}

// Icons returns every mapped icon followed by the fallback. The offline
// manifest uses it to precache artwork.
func Icons() []string {
	out := make([]string, 0, len(categories)+1)
	for _, c := range categories {
		out = append(out, iconMapping[c])
	}
	return append(out, FallbackIcon)
}
