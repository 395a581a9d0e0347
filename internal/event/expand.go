package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

const (
	// maxRecurrenceClones bounds naive expansion of a recurring series.
	maxRecurrenceClones = 10

	recurringSuffix = " (Recurring)"
)

// ExpandRecurrence produces up to maxRecurrenceClones future-dated clones of
// a recurring base event. Only simple weekly and monthly rules are honored;
// any other frequency, or an unparseable rule, yields no clones. Candidates
// whose date falls strictly before today are skipped. This is deliberately
// not a full RFC 5545 expansion: UNTIL, COUNT, BYDAY and exception dates
// are ignored.
func ExpandRecurrence(base CalendarEvent, rule string, today time.Time) []CalendarEvent {
	freq, ok := ruleFrequency(rule)
	if !ok {
		return nil
	}

	if base.Start.DateTime != "" {
		return expandTimed(base, freq, today)
	}
	if base.Start.Date != "" {
		return expandAllDay(base, freq, today)
	}
	return nil
}

// ruleFrequency parses the RRULE text and reports whether it names a
// frequency the expander supports.
func ruleFrequency(rule string) (rrule.Frequency, bool) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:"))
	if trimmed == "" {
		return 0, false
	}

	opt, err := rrule.StrToROption(trimmed)
	if err != nil {
		return 0, false
	}
	if opt.Freq != rrule.WEEKLY && opt.Freq != rrule.MONTHLY {
		return 0, false
	}
	return opt.Freq, true
}

func expandTimed(base CalendarEvent, freq rrule.Frequency, today time.Time) []CalendarEvent {
	start, err := time.Parse(time.RFC3339, base.Start.DateTime)
	if err != nil {
		return nil
	}

	duration := time.Hour
	if base.End.DateTime != "" {
		if end, endErr := time.Parse(time.RFC3339, base.End.DateTime); endErr == nil && end.After(start) {
			duration = end.Sub(start)
		}
	}

	clones := make([]CalendarEvent, 0, maxRecurrenceClones)
	for j := 1; j <= maxRecurrenceClones; j++ {
		candidate := shift(start, freq, j)
		if dateBefore(candidate, today) {
			continue
		}

		clone := cloneOf(base, j)
		clone.Start = EventDateTime{DateTime: candidate.Format(time.RFC3339)}
		clone.End = EventDateTime{DateTime: candidate.Add(duration).Format(time.RFC3339)}
		clones = append(clones, clone)
	}
	return clones
}

func expandAllDay(base CalendarEvent, freq rrule.Frequency, today time.Time) []CalendarEvent {
	start, err := time.Parse("2006-01-02", base.Start.Date)
	if err != nil {
		return nil
	}

	spanDays := 0
	if base.End.Date != "" {
		if end, endErr := time.Parse("2006-01-02", base.End.Date); endErr == nil && end.After(start) {
			spanDays = int(end.Sub(start).Hours() / 24)
		}
	}

	clones := make([]CalendarEvent, 0, maxRecurrenceClones)
	for j := 1; j <= maxRecurrenceClones; j++ {
		candidate := shift(start, freq, j)
		if dateBefore(candidate, today) {
			continue
		}

		clone := cloneOf(base, j)
		clone.Start = EventDateTime{Date: candidate.Format("2006-01-02")}
		clone.End = EventDateTime{Date: candidate.AddDate(0, 0, spanDays).Format("2006-01-02")}
		clones = append(clones, clone)
	}
	return clones
}

func shift(start time.Time, freq rrule.Frequency, steps int) time.Time {
	if freq == rrule.WEEKLY {
		return start.AddDate(0, 0, 7*steps)
	}
	return start.AddDate(0, steps, 0)
}

func cloneOf(base CalendarEvent, index int) CalendarEvent {
	clone := base
	clone.ID = fmt.Sprintf("%s_recur_%d", base.ID, index)
	clone.Recurrence = true
	clone.RecurrenceRule = ""
	clone.Attachments = append([]Attachment(nil), base.Attachments...)
	if base.Recurrence && !strings.HasSuffix(clone.Summary, recurringSuffix) {
		clone.Summary += recurringSuffix
	}
	return clone
}

// dateBefore compares calendar dates only, ignoring clock time and zone
// offsets within the day.
func dateBefore(candidate, today time.Time) bool {
	cy, cm, cd := candidate.Date()
	ty, tm, td := today.Date()
	if cy != ty {
		return cy < ty
	}
	if cm != tm {
		return cm < tm
	}
	return cd < td
}
