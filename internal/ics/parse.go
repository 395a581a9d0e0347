// Package ics fetches and parses the organization's iCal feed. The parser
// is a narrow field extractor, not an RFC 5545 grammar: it pulls a bounded
// set of properties out of each VEVENT and tolerates minor vendor
// deviations. BYDAY, EXDATE and VALARM constructs are ignored.
package ics

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lacite-app/eventfeed/internal/event"
)

const (
	beginMarker = "BEGIN:VEVENT"
	endMarker   = "END:VEVENT"
)

// Parse turns a raw ICS blob into unsorted, undeduplicated event records.
// Segments without a closing END:VEVENT are skipped as malformed, and a
// record missing DTSTART is dropped; a single bad VEVENT never aborts the
// whole feed.
func Parse(text string) ([]event.CalendarEvent, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty ics payload")
	}

	unfolded := unfold(text)
	segments := strings.Split(unfolded, beginMarker)
	if len(segments) < 2 {
		return nil, errors.New("ics payload contains no events")
	}

	events := make([]event.CalendarEvent, 0, len(segments)-1)
	for i, segment := range segments[1:] {
		endIdx := strings.Index(segment, endMarker)
		if endIdx < 0 {
			slog.Debug("skipping vevent without end marker", "segment", i+1)
			continue
		}

		parsed, ok := parseSegment(segment[:endIdx], i+1)
		if !ok {
			continue
		}
		events = append(events, parsed)
	}

	return events, nil
}

func parseSegment(body string, index int) (event.CalendarEvent, bool) {
	start, ok := parseDateToken(propertyValue(body, "DTSTART"))
	if !ok {
		slog.Debug("dropping vevent without parseable DTSTART", "segment", index)
		return event.CalendarEvent{}, false
	}

	summary := strings.TrimSpace(unescapeText(propertyValue(body, "SUMMARY")))
	if summary == "" {
		summary = event.DefaultSummary
	}

	id := strings.TrimSpace(propertyValue(body, "UID"))
	if id == "" {
		id = summary
	}

	end, endOK := parseDateToken(propertyValue(body, "DTEND"))
	if !endOK {
		end = synthesizeEnd(start)
	}

	rule := strings.TrimSpace(propertyValue(body, "RRULE"))

	return event.CalendarEvent{
		ID:             id,
		Summary:        summary,
		Description:    unescapeText(propertyValue(body, "DESCRIPTION")),
		Location:       strings.TrimSpace(unescapeText(propertyValue(body, "LOCATION"))),
		Start:          start,
		End:            end,
		Recurrence:     rule != "",
		RecurrenceRule: rule,
	}, true
}

// propertyValue scans line by line for "NAME:" or "NAME;params:" forms,
// case-insensitive on the property name. The first match wins.
func propertyValue(body, name string) string {
	upperName := strings.ToUpper(name)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		upperLine := strings.ToUpper(line)
		if !strings.HasPrefix(upperLine, upperName) {
			continue
		}
		rest := line[len(upperName):]
		if rest == "" {
			continue
		}
		switch rest[0] {
		case ':':
			return rest[1:]
		case ';':
			// Parameterized form, e.g. DTSTART;VALUE=DATE:20231224.
			if idx := strings.Index(rest, ":"); idx >= 0 {
				return rest[idx+1:]
			}
		}
	}
	return ""
}

// parseDateToken handles the two shapes the feed emits: 8-digit YYYYMMDD
// for all-day events and YYYYMMDDTHHMMSS[Z] for timed ones. A trailing Z is
// UTC; a bare time is interpreted in local time.
func parseDateToken(value string) (event.EventDateTime, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return event.EventDateTime{}, false
	}

	if !strings.Contains(trimmed, "T") {
		parsed, err := time.Parse("20060102", trimmed)
		if err != nil {
			return event.EventDateTime{}, false
		}
		return event.EventDateTime{Date: parsed.Format("2006-01-02")}, true
	}

	if strings.HasSuffix(trimmed, "Z") {
		for _, layout := range []string{"20060102T150405Z", "20060102T1504Z"} {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return event.EventDateTime{DateTime: parsed.Format(time.RFC3339)}, true
			}
		}
		return event.EventDateTime{}, false
	}

	for _, layout := range []string{"20060102T150405", "20060102T1504"} {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return event.EventDateTime{DateTime: parsed.Format(time.RFC3339)}, true
		}
	}
	return event.EventDateTime{}, false
}

// synthesizeEnd fills a missing DTEND: one hour after a timed start, the
// same day for an all-day start.
func synthesizeEnd(start event.EventDateTime) event.EventDateTime {
	if start.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, start.DateTime); err == nil {
			return event.EventDateTime{DateTime: parsed.Add(time.Hour).Format(time.RFC3339)}
		}
	}
	return event.EventDateTime{Date: start.Date}
}

var textUnescaper = strings.NewReplacer(
	`\\`, `\`,
	`\n`, "\n",
	`\N`, "\n",
	`\,`, ",",
	`\;`, ";",
)

func unescapeText(value string) string {
	return textUnescaper.Replace(value)
}

// unfold joins RFC 5545 folded lines: a line starting with a space or tab
// continues the previous one.
func unfold(text string) string {
	out := strings.ReplaceAll(text, "\r\n ", "")
	out = strings.ReplaceAll(out, "\r\n\t", "")
	out = strings.ReplaceAll(out, "\n ", "")
	return strings.ReplaceAll(out, "\n\t", "")
}
