package ics

import (
	"bytes"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/lacite-app/eventfeed/internal/event"
)

// Export serializes a normalized event back into an ICS blob suitable for
// the share sheet and external calendar apps.
func Export(ev event.CalendarEvent) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//Eglise La Cite//Event Feed//EN")
	cal.SetVersion("2.0")

	entry := cal.AddEvent(ev.ID)
	entry.SetDtStampTime(time.Now().UTC())

	if ev.Start.DateTime != "" {
		start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
		if err != nil {
			return nil, fmt.Errorf("parse event start: %w", err)
		}
		entry.SetStartAt(start)

		end := start.Add(time.Hour)
		if ev.End.DateTime != "" {
			if parsed, endErr := time.Parse(time.RFC3339, ev.End.DateTime); endErr == nil {
				end = parsed
			}
		}
		entry.SetEndAt(end)
	} else {
		start, err := time.Parse("2006-01-02", ev.Start.Date)
		if err != nil {
			return nil, fmt.Errorf("parse event start date: %w", err)
		}
		entry.SetAllDayStartAt(start)

		end := start
		if ev.End.Date != "" {
			if parsed, endErr := time.Parse("2006-01-02", ev.End.Date); endErr == nil {
				end = parsed
			}
		}
		// DTEND is exclusive for all-day events.
		entry.SetAllDayEndAt(end.AddDate(0, 0, 1))
	}

	entry.SetSummary(ev.Summary)
	if description := exportDescription(ev); description != "" {
		entry.SetDescription(description)
	}
	if address := exportLocation(ev); address != "" {
		entry.SetLocation(address)
	}
	if ev.DetailsURL != "" {
		entry.SetURL(ev.DetailsURL)
	}

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func exportDescription(ev event.CalendarEvent) string {
	if ev.FormattedDescription != "" {
		return ev.FormattedDescription
	}
	return ev.Description
}

func exportLocation(ev event.CalendarEvent) string {
	if ev.FormattedLocation != nil && ev.FormattedLocation.Address != "" {
		return ev.FormattedLocation.Address
	}
	return ev.Location
}
