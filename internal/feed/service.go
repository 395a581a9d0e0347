// Package feed coordinates the event pipeline: API-first fetch with iCal
// fallback, enrichment, recurrence expansion, language-consistent URLs,
// and an in-memory cache supporting cheap language-change revalidation.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lacite-app/eventfeed/internal/enrich"
	"github.com/lacite-app/eventfeed/internal/event"
	"github.com/lacite-app/eventfeed/internal/ics"
	"github.com/lacite-app/eventfeed/internal/langurl"
	"github.com/lacite-app/eventfeed/internal/location"
)

// APIClient is the primary event source.
type APIClient interface {
	Events(ctx context.Context, year, month int) ([]event.CalendarEvent, error)
}

// ICSFetcher is the fallback source, returning a raw ICS blob.
type ICSFetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Service is the event feed orchestrator. The mutex guards the cache, the
// active language, and the request generation; fetch attempts themselves
// run outside the lock, strictly sequentially (API first, then iCal).
type Service struct {
	api        APIClient
	ics        ICSFetcher
	calendarID string

	mu         sync.Mutex
	lang       event.Language
	cache      []event.CalendarEvent
	generation uint64

	now func() time.Time
}

func New(api APIClient, icsFetcher ICSFetcher, calendarID string, lang event.Language) *Service {
	return &Service{
		api:        api,
		ics:        icsFetcher,
		calendarID: calendarID,
		lang:       lang,
		now:        time.Now,
	}
}

// Events returns normalized events, optionally bounded to a (year, month).
// Hard failures are logged and collapsed into an empty slice: callers must
// treat an empty result as "no data available", not "zero events
// confirmed".
func (s *Service) Events(ctx context.Context, year, month int) []event.CalendarEvent {
	events, err := s.fetchEvents(ctx, year, month)
	if err != nil {
		slog.Error("event fetch failed", "err", err, "year", year, "month", month)
		return []event.CalendarEvent{}
	}
	return events
}

func (s *Service) fetchEvents(ctx context.Context, year, month int) ([]event.CalendarEvent, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	lang := s.lang
	s.mu.Unlock()

	raw, err := s.fetchRaw(ctx, year, month)
	if err != nil {
		return nil, err
	}

	normalized := s.normalizeAll(raw, lang, year, month)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.cache = normalized
	} else {
		// A later fetch started while this one was in flight; its result
		// owns the cache.
		slog.Debug("discarding stale fetch result", "generation", gen, "current", s.generation)
	}
	return normalized, nil
}

// fetchRaw tries the REST endpoint first and falls back to the iCal feed
// on failure or an empty result. The two attempts are never concurrent.
func (s *Service) fetchRaw(ctx context.Context, year, month int) ([]event.CalendarEvent, error) {
	if s.api != nil {
		events, err := s.api.Events(ctx, year, month)
		switch {
		case err != nil:
			slog.Warn("calendar api fetch failed, falling back to ical", "err", err)
		case len(events) == 0:
			slog.Info("calendar api returned no events, falling back to ical")
		default:
			return events, nil
		}
	}

	if s.ics == nil {
		return nil, errors.New("no event source configured")
	}

	body, err := s.ics.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("ical fallback: %w", err)
	}

	events, err := ics.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse ical feed: %w", err)
	}
	return events, nil
}

func (s *Service) normalizeAll(raw []event.CalendarEvent, lang event.Language, year, month int) []event.CalendarEvent {
	today := s.now()

	events := make([]event.CalendarEvent, 0, len(raw))
	for _, ev := range raw {
		ev = enrichOne(ev, lang)
		events = append(events, ev)
		if ev.RecurrenceRule != "" {
			events = append(events, event.ExpandRecurrence(ev, ev.RecurrenceRule, today)...)
		}
	}

	if year > 0 && month > 0 {
		events = filterMonth(events, year, month)
	}

	// Validation pass: every details URL must match the active language,
	// regardless of which source produced the record.
	for i := range events {
		if events[i].DetailsURL != "" {
			events[i].DetailsURL = langurl.Rewrite(events[i].DetailsURL, lang)
		}
	}

	events = event.DedupeByID(events)
	event.SortByStart(events)
	return events
}

func enrichOne(ev event.CalendarEvent, lang event.Language) event.CalendarEvent {
	if ev.Description != "" {
		derived := enrich.Describe(ev.Description, lang)
		ev.FormattedDescription = derived.FormattedDescription
		ev.Attachments = mergeAttachments(ev.Attachments, derived.Attachments)
		if ev.DetailsURL == "" {
			ev.DetailsURL = derived.DetailsURL
		}
	}
	if ev.Location != "" {
		normalized := location.Normalize(ev.Location)
		ev.FormattedLocation = &normalized
	}
	return ev
}

func mergeAttachments(existing, derived []event.Attachment) []event.Attachment {
	if len(derived) == 0 {
		return existing
	}
	if len(existing) == 0 {
		return derived
	}

	seen := make(map[string]struct{}, len(existing))
	merged := append([]event.Attachment(nil), existing...)
	for _, attachment := range existing {
		seen[attachment.URL] = struct{}{}
	}
	for _, attachment := range derived {
		if _, exists := seen[attachment.URL]; exists {
			continue
		}
		seen[attachment.URL] = struct{}{}
		merged = append(merged, attachment)
	}
	return merged
}

func filterMonth(events []event.CalendarEvent, year, month int) []event.CalendarEvent {
	filtered := make([]event.CalendarEvent, 0, len(events))
	for _, ev := range events {
		instant := ev.StartInstant()
		if instant.Year() == year && int(instant.Month()) == month {
			filtered = append(filtered, ev)
		}
	}
	return filtered
}

// SetLanguage re-derives the details URL of each cached event in place
// without re-fetching: existing URLs get their domain re-rewritten, and
// events that never had one are re-extracted from their description. No
// other field changes.
func (s *Service) SetLanguage(lang event.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lang == s.lang {
		return
	}
	s.lang = lang

	for i := range s.cache {
		ev := &s.cache[i]
		if ev.DetailsURL != "" {
			ev.DetailsURL = langurl.Rewrite(ev.DetailsURL, lang)
			continue
		}
		if ev.Description != "" {
			derived := enrich.Describe(ev.Description, lang)
			if derived.DetailsURL != "" {
				ev.DetailsURL = derived.DetailsURL
			}
		}
	}
	slog.Debug("revalidated cached event urls", "lang", lang, "count", len(s.cache))
}

// Language reports the currently active language.
func (s *Service) Language() event.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// Cached returns a copy of the most recently fetched result set.
func (s *Service) Cached() []event.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.CalendarEvent(nil), s.cache...)
}
