// Package langurl keeps content URLs pointing at the organization's domain
// consistent with the active language. English content lives under
// www.egliselacite.com and French content under fr.egliselacite.com; legacy
// and malformed paths collapse to the canonical events listing.
package langurl

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/lacite-app/eventfeed/internal/event"
)

const (
	rootDomain         = "egliselacite.com"
	eventDetailsMarker = "/event-details/"
	canonicalPath      = "/events2"
)

// shortSlugPattern matches a 10-20 character alphanumeric segment directly
// under the root. Pages at such paths are a known 404 class on the site.
// The pattern is a heuristic: a legitimately short slug in that length
// range would be misclassified too.
var shortSlugPattern = regexp.MustCompile(`^/[A-Za-z0-9]{10,20}/?$`)

// Domain returns the canonical host for a language.
func Domain(lang event.Language) string {
	if lang == event.LangFrench {
		return "fr." + rootDomain
	}
	return "www." + rootDomain
}

// CanonicalEventsURL is the safe fallback listing page for a language.
func CanonicalEventsURL(lang event.Language) string {
	return "https://" + Domain(lang) + canonicalPath
}

// Rewrite maps a content URL to the host matching lang. It is pure and
// total: URLs outside the organization's domain pass through unchanged, and
// any internal failure yields the canonical events URL. Rewrite is
// idempotent for a fixed language.
func Rewrite(raw string, lang event.Language) string {
	rewritten, ok := rewrite(raw, lang)
	if !ok {
		return CanonicalEventsURL(lang)
	}
	return rewritten
}

func rewrite(raw string, lang event.Language) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(parsed.Hostname())
	if !organizationHost(host) {
		return trimmed, true
	}

	if idx := strings.Index(parsed.Path, eventDetailsMarker); idx >= 0 {
		slug := detailsSlug(parsed.Path[idx+len(eventDetailsMarker):])
		if slug == "" {
			return "", false
		}
		return "https://" + Domain(lang) + eventDetailsMarker + slug, true
	}

	// Legacy calendar paths are known-dead.
	if strings.Contains(parsed.Path, "/calendar") {
		return CanonicalEventsURL(lang), true
	}

	if shortSlugPattern.MatchString(parsed.Path) {
		return CanonicalEventsURL(lang), true
	}

	if parsed.Scheme == "" {
		return "", false
	}
	parsed.Host = Domain(lang)
	return parsed.String(), true
}

// IsInvalidSlugPath reports whether a URL's path matches the invalid
// short-slug signature.
func IsInvalidSlugPath(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return shortSlugPattern.MatchString(parsed.Path)
}

func organizationHost(host string) bool {
	return host == rootDomain || strings.HasSuffix(host, "."+rootDomain)
}

// detailsSlug isolates the slug segment: everything up to the next path
// separator or query marker.
func detailsSlug(rest string) string {
	slug := rest
	if idx := strings.IndexAny(slug, "/?#"); idx >= 0 {
		slug = slug[:idx]
	}
	return strings.TrimSpace(slug)
}
