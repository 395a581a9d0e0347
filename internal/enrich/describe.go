// Package enrich derives display fields from HTML-ish event descriptions:
// a human-readable formatted rendering, attachment links, and an optional
// details URL kept consistent with the active language.
package enrich

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/lacite-app/eventfeed/internal/event"
	"github.com/lacite-app/eventfeed/internal/langurl"
)

// Result is everything Describe derives from one raw description.
type Result struct {
	FormattedDescription string
	Attachments          []event.Attachment
	DetailsURL           string
}

var (
	anchorPattern   = regexp.MustCompile(`(?is)<a\s[^>]*href\s*=\s*["']([^"']+)["'][^>]*>(.*?)</a>`)
	bareURLPattern  = regexp.MustCompile(`https?://[^\s<>"')]+`)
	driveURLPattern = regexp.MustCompile(`https?://drive\.google\.com/[^\s<>"')]+`)
	docsURLPattern  = regexp.MustCompile(`https?://docs\.google\.com/[^\s<>"')]+`)

	tablePattern = regexp.MustCompile(`(?is)<table[^>]*>(.*?)</table>`)
	rowPattern   = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	cellPattern  = regexp.MustCompile(`(?is)<t[dh][^>]*>(.*?)</t[dh]>`)

	headingPattern = regexp.MustCompile(`(?is)<h[1-6][^>]*>(.*?)</h[1-6]>`)
	boldPattern    = regexp.MustCompile(`(?is)<(?:b|strong)[^>]*>(.*?)</(?:b|strong)>`)
	italicPattern  = regexp.MustCompile(`(?is)<(?:i|em)[^>]*>(.*?)</(?:i|em)>`)
	breakPattern   = regexp.MustCompile(`(?i)<br\s*/?>`)
	closePPattern  = regexp.MustCompile(`(?i)</p\s*>`)
	openPPattern   = regexp.MustCompile(`(?i)<p[^>]*>`)
	itemPattern    = regexp.MustCompile(`(?i)<li[^>]*>`)
	closeLiPattern = regexp.MustCompile(`(?i)</li\s*>`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)

	collapsePattern = regexp.MustCompile(`\n{3,}`)

	boldLabelPattern  = regexp.MustCompile(`(?i)<(?:b|strong)[^>]*>\s*([^<:]{1,40}?)\s*:\s*</(?:b|strong)>\s*([^<\r\n]+)`)
	plainLabelPattern = regexp.MustCompile(`(?m)^[ \t]*([A-Za-zÀ-ÿ][A-Za-zÀ-ÿ0-9 '-]{0,30}?)[ \t]*:[ \t]+(\S[^\r\n]*)$`)

	detailsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)details\s*:?\s*(?:</?(?:b|strong|span)[^>]*>\s*)*:?\s*(https?://[^\s<>"')]+)`),
		regexp.MustCompile(`(?i)details\s*:?\s*(?:</?(?:b|strong|span)[^>]*>\s*)*<a[^>]*href\s*=\s*["'](https?://[^"']+)["']`),
	}
)

// Describe decodes and formats a raw description, collects its attachment
// links, and extracts the details URL rewritten for lang.
func Describe(description string, lang event.Language) Result {
	if strings.TrimSpace(description) == "" {
		return Result{}
	}

	decoded := html.UnescapeString(description)
	decoded = strings.ReplaceAll(decoded, "\r\n", "\n")

	return Result{
		FormattedDescription: formatText(decoded),
		Attachments:          ExtractAttachmentLinks(decoded),
		DetailsURL:           extractDetailsURL(decoded, lang),
	}
}

func formatText(decoded string) string {
	out := tablePattern.ReplaceAllStringFunc(decoded, renderTable)

	out = anchorPattern.ReplaceAllStringFunc(out, func(match string) string {
		parts := anchorPattern.FindStringSubmatch(match)
		href := strings.TrimSpace(parts[1])
		text := collapseSpace(stripTags(parts[2]))
		if text == "" || text == href {
			return href
		}
		return text + " (" + href + ")"
	})

	keyValues := extractKeyValues(out)

	out = headingPattern.ReplaceAllString(out, "\n\n*$1*\n\n")
	out = boldPattern.ReplaceAllString(out, "*$1*")
	out = italicPattern.ReplaceAllString(out, "_$1_")
	out = breakPattern.ReplaceAllString(out, "\n")
	out = closePPattern.ReplaceAllString(out, "\n")
	out = openPPattern.ReplaceAllString(out, "")
	out = itemPattern.ReplaceAllString(out, "• ")
	out = closeLiPattern.ReplaceAllString(out, "\n")
	out = stripTags(out)
	out = collapsePattern.ReplaceAllString(out, "\n\n")
	out = strings.TrimSpace(out)

	if len(keyValues) > 0 {
		block := strings.Join(keyValues, "\n")
		if out == "" {
			return block
		}
		return block + "\n\n" + out
	}
	return out
}

func renderTable(table string) string {
	rows := rowPattern.FindAllStringSubmatch(table, -1)
	if len(rows) == 0 {
		return "\n"
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := cellPattern.FindAllStringSubmatch(row[1], -1)
		values := make([]string, 0, len(cells))
		for _, cell := range cells {
			values = append(values, collapseSpace(stripTags(cell[1])))
		}
		if len(values) == 0 {
			continue
		}
		lines = append(lines, strings.Join(values, " | "))
	}
	return "\n" + strings.Join(lines, "\n") + "\n"
}

// extractKeyValues surfaces "Label: value" pairs as a leading block. Labels
// come from bold/strong prefixes or from raw lines; the details link is
// handled separately and excluded here.
func extractKeyValues(text string) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0, 4)

	add := func(label, value string) {
		label = collapseSpace(label)
		value = collapseSpace(stripTags(value))
		if label == "" || value == "" || strings.EqualFold(label, "details") {
			return
		}
		key := strings.ToLower(label)
		if _, exists := seen[key]; exists {
			return
		}
		seen[key] = struct{}{}
		values = append(values, label+": "+value)
	}

	for _, match := range boldLabelPattern.FindAllStringSubmatch(text, -1) {
		add(match[1], match[2])
	}

	plain := stripTags(breakPattern.ReplaceAllString(text, "\n"))
	for _, match := range plainLabelPattern.FindAllStringSubmatch(plain, -1) {
		add(match[1], match[2])
	}
	return values
}

// ExtractAttachmentLinks collects every anchor href plus any bare URL not
// already captured, deduplicated by exact URL. Bare links get a hostname
// fallback title.
func ExtractAttachmentLinks(decoded string) []event.Attachment {
	seen := make(map[string]struct{})
	attachments := make([]event.Attachment, 0, 4)

	add := func(title, raw string) {
		cleaned := cleanURL(raw)
		if cleaned == "" {
			return
		}
		if _, exists := seen[cleaned]; exists {
			return
		}
		seen[cleaned] = struct{}{}
		if title == "" {
			title = linkTitle(cleaned)
		}
		attachments = append(attachments, event.Attachment{Title: title, URL: cleaned})
	}

	for _, match := range anchorPattern.FindAllStringSubmatch(decoded, -1) {
		add(collapseSpace(stripTags(match[2])), match[1])
	}

	for _, pattern := range []*regexp.Regexp{bareURLPattern, driveURLPattern, docsURLPattern} {
		for _, found := range pattern.FindAllString(decoded, -1) {
			add("", found)
		}
	}

	if len(attachments) == 0 {
		return nil
	}
	return attachments
}

func extractDetailsURL(decoded string, lang event.Language) string {
	for _, pattern := range detailsPatterns {
		match := pattern.FindStringSubmatch(decoded)
		if match == nil {
			continue
		}
		rewritten := langurl.Rewrite(cleanURL(match[1]), lang)
		if langurl.IsInvalidSlugPath(rewritten) {
			return langurl.CanonicalEventsURL(lang)
		}
		return rewritten
	}
	return ""
}

func cleanURL(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimRight(value, `.,;)"'`)
	if value == "" {
		return ""
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return ""
	}
	return value
}

func linkTitle(cleaned string) string {
	parsed, err := url.Parse(cleaned)
	if err != nil {
		return cleaned
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	if host == "" {
		return cleaned
	}
	return "Link to " + host
}

func stripTags(value string) string {
	return tagPattern.ReplaceAllString(value, "")
}

func collapseSpace(value string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(value)), " ")
}
