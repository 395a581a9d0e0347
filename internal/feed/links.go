package feed

import (
	"net/url"
	"time"

	"github.com/lacite-app/eventfeed/internal/event"
)

const (
	renderBaseURL = "https://calendar.google.com/calendar/render"
	embedBaseURL  = "https://calendar.google.com/calendar/embed"
)

// AddToCalendarURL builds the "add this event" deep link for external
// calendar apps. Timed events are formatted in UTC; all-day events use the
// date form with an exclusive end date.
func AddToCalendarURL(ev event.CalendarEvent) string {
	values := url.Values{}
	values.Set("action", "TEMPLATE")
	values.Set("text", ev.Summary)
	values.Set("dates", templateDates(ev))

	if description := templateDescription(ev); description != "" {
		values.Set("details", description)
	}
	if address := templateLocation(ev); address != "" {
		values.Set("location", address)
	}

	return renderBaseURL + "?" + values.Encode()
}

// EmbedURL returns the embeddable calendar view. It is language
// independent.
func (s *Service) EmbedURL() string {
	return embedBaseURL + "?src=" + url.QueryEscape(s.calendarID)
}

func templateDates(ev event.CalendarEvent) string {
	if ev.Start.DateTime != "" {
		start := templateInstant(ev.Start.DateTime)
		end := start
		if ev.End.DateTime != "" {
			end = templateInstant(ev.End.DateTime)
		}
		return start + "/" + end
	}

	start, err := time.Parse("2006-01-02", ev.Start.Date)
	if err != nil {
		return ""
	}
	end := start
	if ev.End.Date != "" {
		if parsed, endErr := time.Parse("2006-01-02", ev.End.Date); endErr == nil {
			end = parsed
		}
	}
	// End date is exclusive in the template format.
	return start.Format("20060102") + "/" + end.AddDate(0, 0, 1).Format("20060102")
}

func templateInstant(value string) string {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return ""
	}
	return parsed.UTC().Format("20060102T150405Z")
}

func templateDescription(ev event.CalendarEvent) string {
	if ev.FormattedDescription != "" {
		return ev.FormattedDescription
	}
	return ev.Description
}

func templateLocation(ev event.CalendarEvent) string {
	if ev.FormattedLocation != nil && ev.FormattedLocation.Address != "" {
		return ev.FormattedLocation.Address
	}
	return ev.Location
}
