package event

import (
	"strings"
	"time"
)

// Language is the two-letter content locale the feed is rendered for.
type Language string

const (
	LangEnglish Language = "en"
	LangFrench  Language = "fr"
)

// ParseLanguage normalizes a raw language code, falling back when the code
// is not one of the supported locales.
func ParseLanguage(raw string, fallback Language) Language {
	switch Language(strings.ToLower(strings.TrimSpace(raw))) {
	case LangEnglish:
		return LangEnglish
	case LangFrench:
		return LangFrench
	default:
		return fallback
	}
}

// DefaultSummary is substituted when an upstream record carries no title.
const DefaultSummary = "Untitled event"

// EventDateTime mirrors the Google Calendar wire shape: exactly one of Date
// (all-day, "2006-01-02") or DateTime (RFC 3339) is set once parsing
// succeeds.
type EventDateTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
}

func (d EventDateTime) IsZero() bool {
	return strings.TrimSpace(d.Date) == "" && strings.TrimSpace(d.DateTime) == ""
}

// Instant returns the effective start instant: the parsed DateTime when
// present, otherwise midnight UTC of Date. Unparseable values yield the
// zero time, which sorts first.
func (d EventDateTime) Instant() time.Time {
	if d.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, d.DateTime); err == nil {
			return parsed
		}
	}
	if d.Date != "" {
		if parsed, err := time.Parse("2006-01-02", d.Date); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

type Attachment struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type FormattedLocation struct {
	Address string `json:"address"`
	MapURL  string `json:"mapUrl,omitempty"`
}

// CalendarEvent is the normalized event record the feed produces. Derived
// fields (FormattedDescription, FormattedLocation, Attachments, DetailsURL)
// are regenerated on every fetch, never hand-edited.
type CalendarEvent struct {
	ID                   string             `json:"id"`
	Summary              string             `json:"summary"`
	Description          string             `json:"description,omitempty"`
	FormattedDescription string             `json:"formattedDescription,omitempty"`
	Start                EventDateTime      `json:"start"`
	End                  EventDateTime      `json:"end"`
	Location             string             `json:"location,omitempty"`
	FormattedLocation    *FormattedLocation `json:"formattedLocation,omitempty"`
	Recurrence           bool               `json:"recurrence"`
	Attachments          []Attachment       `json:"attachments,omitempty"`
	DetailsURL           string             `json:"detailsUrl,omitempty"`

	// RecurrenceRule carries the raw RRULE text for expansion; it is not
	// part of the produced wire shape.
	RecurrenceRule string `json:"-"`
}

// StartInstant is the effective start used for ordering and month filtering.
func (e CalendarEvent) StartInstant() time.Time {
	return e.Start.Instant()
}

// FilterOptions describes a single filtering pass over a fetched result
// set. It carries no lifecycle beyond that pass.
type FilterOptions struct {
	Category    string
	SortBy      string // "date" (default) or "title"
	SortOrder   string // "asc" (default) or "desc"
	SearchQuery string
}
