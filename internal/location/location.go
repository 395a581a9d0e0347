// Package location turns raw event location strings into display values.
package location

import (
	"net/url"
	"strings"

	"github.com/lacite-app/eventfeed/internal/event"
)

var mapsHostMarkers = []string{
	"google.com/maps",
	"maps.google.",
	"goo.gl/maps",
	"maps.app.goo.gl",
}

// Normalize produces a display address plus an optional map URL. Google
// Maps links keep the original string as the map URL and surface the
// URL-decoded q= parameter as the address; anything else is treated
// verbatim as an address.
func Normalize(raw string) event.FormattedLocation {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return event.FormattedLocation{}
	}

	if !isMapsURL(trimmed) {
		return event.FormattedLocation{Address: trimmed}
	}

	address := trimmed
	if parsed, err := url.Parse(trimmed); err == nil {
		if q := strings.TrimSpace(parsed.Query().Get("q")); q != "" {
			address = q
		}
	}

	return event.FormattedLocation{Address: address, MapURL: trimmed}
}

func isMapsURL(value string) bool {
	lowered := strings.ToLower(value)
	for _, marker := range mapsHostMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
