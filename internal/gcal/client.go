// Package gcal wraps the Google Calendar events endpoint. It is the
// primary event source; the iCal feed is the fallback.
package gcal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/lacite-app/eventfeed/internal/event"
)

const maxResults = 250

type Client struct {
	service    *calendar.Service
	calendarID string
}

// New builds a read-only client authenticated with an API key. The
// calendar itself is public, so no OAuth flow is involved.
func New(ctx context.Context, calendarID, apiKey string) (*Client, error) {
	if strings.TrimSpace(calendarID) == "" {
		return nil, fmt.Errorf("calendar id is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	service, err := calendar.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &Client{service: service, calendarID: calendarID}, nil
}

// Events lists events, bounded to the given month when year and month are
// both positive. Recurring series are requested as single expanded
// instances ordered by start time, matching the feed's output contract.
func (c *Client) Events(ctx context.Context, year, month int) ([]event.CalendarEvent, error) {
	call := c.service.Events.List(c.calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults).
		Context(ctx)

	if year > 0 && month > 0 {
		first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		call = call.
			TimeMin(first.Format(time.RFC3339)).
			TimeMax(first.AddDate(0, 1, 0).Format(time.RFC3339))
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}

	events := make([]event.CalendarEvent, 0, len(res.Items))
	for _, item := range res.Items {
		converted, ok := convert(item)
		if !ok {
			slog.Debug("skipping api event without usable start", "id", item.Id)
			continue
		}
		events = append(events, converted)
	}
	return events, nil
}

func convert(item *calendar.Event) (event.CalendarEvent, bool) {
	start, ok := convertDateTime(item.Start)
	if !ok {
		return event.CalendarEvent{}, false
	}

	end, endOK := convertDateTime(item.End)
	if !endOK {
		end = synthesizeEnd(start)
	}

	summary := strings.TrimSpace(item.Summary)
	if summary == "" {
		summary = event.DefaultSummary
	}

	return event.CalendarEvent{
		ID:             item.Id,
		Summary:        summary,
		Description:    item.Description,
		Location:       strings.TrimSpace(item.Location),
		Start:          start,
		End:            end,
		Recurrence:     len(item.Recurrence) > 0 || item.RecurringEventId != "",
		RecurrenceRule: recurrenceRule(item.Recurrence),
		Attachments:    convertAttachments(item.Attachments),
	}, true
}

func convertDateTime(value *calendar.EventDateTime) (event.EventDateTime, bool) {
	if value == nil {
		return event.EventDateTime{}, false
	}
	if value.DateTime != "" {
		return event.EventDateTime{DateTime: value.DateTime}, true
	}
	if value.Date != "" {
		return event.EventDateTime{Date: value.Date}, true
	}
	return event.EventDateTime{}, false
}

func synthesizeEnd(start event.EventDateTime) event.EventDateTime {
	if start.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, start.DateTime); err == nil {
			return event.EventDateTime{DateTime: parsed.Add(time.Hour).Format(time.RFC3339)}
		}
	}
	return event.EventDateTime{Date: start.Date}
}

func recurrenceRule(lines []string) string {
	for _, line := range lines {
		if strings.HasPrefix(strings.ToUpper(line), "RRULE:") {
			return strings.TrimSpace(line[len("RRULE:"):])
		}
	}
	return ""
}

func convertAttachments(items []*calendar.EventAttachment) []event.Attachment {
	if len(items) == 0 {
		return nil
	}

	attachments := make([]event.Attachment, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item == nil || strings.TrimSpace(item.FileUrl) == "" {
			continue
		}
		if _, exists := seen[item.FileUrl]; exists {
			continue
		}
		seen[item.FileUrl] = struct{}{}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = item.FileUrl
		}
		attachments = append(attachments, event.Attachment{Title: title, URL: item.FileUrl})
	}
	return attachments
}
